// Package types holds the protocol's shared data model: offers, fills,
// PoDLE commitments, IoAuth pledges, transaction carriers, and the
// verification result — the types every role and every component in this
// module passes around.
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/rawblock/nostrdizer/internal/errs"
	"github.com/tyler-smith/go-bip39"
)

var (
	errInvalidOfferBounds = fmt.Errorf("%w: min_size must be < max_size", errs.ErrBadInput)
	errInvalidOfferFee    = fmt.Errorf("%w: relative cj_fee must be in [0,1)", errs.ErrBadInput)
)

// Identity is a keypair used both to sign transport envelopes and to derive
// the NIP-04-style shared secret to a peer. Created at startup, persisted or
// ephemeral; owned exclusively by one role instance.
type Identity struct {
	PrivKey *btcec.PrivateKey
}

// NewIdentity generates a fresh random Identity.
func NewIdentity() (Identity, error) {
	sk, err := btcec.NewPrivateKey()
	if err != nil {
		return Identity{}, err
	}
	return Identity{PrivKey: sk}, nil
}

// IdentityFromHex loads an Identity from a hex-encoded 32-byte secret key.
func IdentityFromHex(s string) (Identity, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Identity{}, err
	}
	sk, pub := btcec.PrivKeyFromBytes(b)
	_ = pub
	return Identity{PrivKey: sk}, nil
}

// PubKeyHex returns the identity's public key as a hex string, the form used
// on the wire for maker_pub / taker_encryption_pub and p-tag addressing.
func (id Identity) PubKeyHex() string {
	return hex.EncodeToString(id.PrivKey.PubKey().SerializeCompressed())
}

// NewMnemonicIdentity generates a fresh 24-word BIP39 mnemonic and derives an
// Identity from it, so an operator can back up a relay identity as a seed
// phrase instead of a raw hex secret.
func NewMnemonicIdentity() (Identity, string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return Identity{}, "", fmt.Errorf("%w: generate entropy: %v", errs.ErrCrypto, err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return Identity{}, "", fmt.Errorf("%w: generate mnemonic: %v", errs.ErrCrypto, err)
	}
	id, err := IdentityFromMnemonic(mnemonic, "")
	return id, mnemonic, err
}

// IdentityFromMnemonic derives an Identity from a BIP39 mnemonic and optional
// passphrase. The 64-byte BIP39 seed is hashed down to a 32-byte scalar: this
// identity is a single transport/signing keypair, not a BIP32 wallet chain,
// so there is no derivation path to walk.
func IdentityFromMnemonic(mnemonic, passphrase string) (Identity, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return Identity{}, fmt.Errorf("%w: invalid mnemonic", errs.ErrBadInput)
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	sum := sha256.Sum256(seed)
	sk, _ := btcec.PrivKeyFromBytes(sum[:])
	return Identity{PrivKey: sk}, nil
}

// OfferKind tags the polymorphic Offer variant.
type OfferKind int

const (
	OfferKindAbsolute OfferKind = iota
	OfferKindRelative
)

// Offer is the polymorphic tagged variant RelativeOffer | AbsoluteOffer from
// spec §3. Kind selects which of CJFeeAbs / CJFeeRel is meaningful.
type Offer struct {
	Kind             OfferKind
	OfferID          uint32
	MinSize          int64
	MaxSize          int64
	TxFeeContrib     int64
	CJFeeAbs         int64   // satoshis, meaningful when Kind == OfferKindAbsolute
	CJFeeRel         float64 // fraction in [0,1), meaningful when Kind == OfferKindRelative
	MakerPub         string
}

// Validate enforces the §3 Offer invariant: min_size < max_size.
func (o Offer) Validate() error {
	if o.MinSize >= o.MaxSize {
		return errInvalidOfferBounds
	}
	if o.Kind == OfferKindRelative && (o.CJFeeRel < 0 || o.CJFeeRel >= 1) {
		return errInvalidOfferFee
	}
	return nil
}

// NormalizedOffer is (maker_pub, offer_id, tx_fee, absolute_cj_fee) used
// internally by the Taker after converting relative fees to absolute fees
// for a specific send amount.
type NormalizedOffer struct {
	MakerPub   string
	OfferID    uint32
	TxFee      int64
	AbsCJFee   int64
	MinSize    int64
	MaxSize    int64
}

// NormalizeOffer converts an Offer to a NormalizedOffer for send amount A.
// Per the "Offer normalization" testable property: cjfee_abs = floor(rel*A).
func NormalizeOffer(o Offer, amount int64) NormalizedOffer {
	abs := o.CJFeeAbs
	if o.Kind == OfferKindRelative {
		abs = int64(o.CJFeeRel * float64(amount))
	}
	return NormalizedOffer{
		MakerPub: o.MakerPub,
		OfferID:  o.OfferID,
		TxFee:    o.TxFeeContrib,
		AbsCJFee: abs,
		MinSize:  o.MinSize,
		MaxSize:  o.MaxSize,
	}
}

// Fill is the Taker's directed request to a specific Maker offer.
type Fill struct {
	OfferID             uint32
	Amount              int64
	TakerEncryptionPub  string
	Commitment          [32]byte // SHA-256 digest, the PoDLE H(P2)
}

// AuthCommitment is the PoDLE proof described in spec §4.3. Index is carried
// alongside the four proof fields on the wire; the Maker's verification scan
// tries NUMS basepoints 0 through Index.
type AuthCommitment struct {
	Index  int
	P      *btcec.PublicKey
	P2     *btcec.PublicKey
	Commit [32]byte
	Sig    *big.Int
	E      [32]byte
}

// WitnessUTXO is the mandatory P2WPKH witness carrier resolved for the
// IoAuth input shape (see SPEC_FULL.md §3 Open Question resolution): every
// Maker UTXO must carry its witness_utxo so foreign-UTXO PSBT signing works
// regardless of wallet backend.
type WitnessUTXO struct {
	Value    int64
	PkScript []byte
}

// UTXORef pairs an outpoint with its mandatory witness carrier.
type UTXORef struct {
	Outpoint wire.OutPoint
	Witness  WitnessUTXO
}

// IoAuth is the Maker's inputs + addresses pledge for a round.
type IoAuth struct {
	UTXOs           []UTXORef
	CoinjoinAddress string
	ChangeAddress   string

	// MakerAuthPub / BitcoinSig are serialized but never populated by this
	// module.
	MakerAuthPub string `json:"maker_auth_pub,omitempty"`
	BitcoinSig   string `json:"bitcoin_sig,omitempty"`
}

// UnsignedTransaction carries a not-yet-signed PSBT, base64 encoded on the wire.
type UnsignedTransaction struct {
	PSBTBase64 string
}

// SignedTransaction carries a (possibly partially) signed PSBT.
type SignedTransaction struct {
	PSBTBase64 string
}

// VerifyCJInfo is the structured result of the §4.5 economic verifier.
type VerifyCJInfo struct {
	MiningFee int64
	MakerFee  int64
	Verified  bool
}

// FeePolicy bounds what a role will accept as economically sane, feeding the
// §4.5 verifier's accept/reject decision. MinSize/MaxSize are only
// meaningful for RoleMaker (the Maker's own offer bounds); RoleTaker ignores
// them since the Taker already chose amount A.
type FeePolicy struct {
	AbsFeeMin       int64
	RelFeeMin       float64
	AbsFeeMax       int64
	RelFeeMax       float64
	AbsMiningFeeMax int64
	MinSize         int64
	MaxSize         int64
}

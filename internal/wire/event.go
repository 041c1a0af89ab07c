package wire

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/rawblock/nostrdizer/internal/errs"
	"github.com/rawblock/nostrdizer/internal/types"
)

// RawEvent is the signed, relay-transported unit: every Envelope is carried
// as the Content of one RawEvent. Offer events are replaceable (latest wins
// per author+kind); everything else is ephemeral (at-most-once, not
// retained by the relay).
type RawEvent struct {
	ID        string   `json:"id"`
	PubKey    string   `json:"pubkey"`
	CreatedAt int64    `json:"created_at"`
	Kind      int      `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string   `json:"content"`
	Sig       string   `json:"sig"`
}

// PTag returns the addressed recipient pubkey from the event's "p" tag, if any.
func (e RawEvent) PTag() (string, bool) {
	for _, t := range e.Tags {
		if len(t) >= 2 && t[0] == "p" {
			return t[1], true
		}
	}
	return "", false
}

// serializedID computes the NIP-01-style event id: sha256 of the canonical
// [0, pubkey, created_at, kind, tags, content] array.
func serializedID(pubkey string, createdAt int64, kind int, tags [][]string, content string) (string, error) {
	arr := []any{0, pubkey, createdAt, kind, tags, content}
	b, err := json.Marshal(arr)
	if err != nil {
		return "", fmt.Errorf("%w: serialize event id: %v", errs.ErrDecode, err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// NewEvent builds and signs a RawEvent with plaintext content (used for
// replaceable Offer/PubKey events, which are not recipient-encrypted).
func NewEvent(id types.Identity, kind int, tags [][]string, content string, createdAt int64) (RawEvent, error) {
	pub := id.PubKeyHex()
	eid, err := serializedID(pub, createdAt, kind, tags, content)
	if err != nil {
		return RawEvent{}, err
	}
	sig := ecdsa.Sign(id.PrivKey, mustHexDecode(eid))
	return RawEvent{
		ID:        eid,
		PubKey:    pub,
		CreatedAt: createdAt,
		Kind:      kind,
		Tags:      tags,
		Content:   content,
		Sig:       hex.EncodeToString(sig.Serialize()),
	}, nil
}

// NewDirectedEvent builds a signed, NIP-04-encrypted RawEvent addressed to
// recipientPub via a "p" tag — the shape every Fill/Auth/IoAuth/UnsignedCJ/
// SignedCJ message takes on the wire.
func NewDirectedEvent(id types.Identity, kind int, recipientPub string, plaintext []byte, createdAt int64) (RawEvent, error) {
	recipientKey, err := btcec.ParsePubKey(mustHexDecode(recipientPub))
	if err != nil {
		return RawEvent{}, fmt.Errorf("%w: parse recipient pubkey: %v", errs.ErrCrypto, err)
	}
	ciphertext, err := Encrypt(id.PrivKey, recipientKey, plaintext)
	if err != nil {
		return RawEvent{}, err
	}
	tags := [][]string{{"p", recipientPub}}
	return NewEvent(id, kind, tags, ciphertext, createdAt)
}

// VerifyAndDecrypt checks an inbound directed event's signature and decrypts
// its content, returning the plaintext Envelope bytes. This is the "already
// decrypted and authenticated" primitive promised by SPEC_FULL.md's
// suspension model.
func VerifyAndDecrypt(myPriv types.Identity, e RawEvent) ([]byte, error) {
	senderKey, err := btcec.ParsePubKey(mustHexDecode(e.PubKey))
	if err != nil {
		return nil, fmt.Errorf("%w: parse sender pubkey: %v", errs.ErrCrypto, err)
	}
	eid, err := serializedID(e.PubKey, e.CreatedAt, e.Kind, e.Tags, e.Content)
	if err != nil {
		return nil, err
	}
	if eid != e.ID {
		return nil, fmt.Errorf("%w: event id mismatch", errs.ErrCrypto)
	}
	sigBytes, err := hex.DecodeString(e.Sig)
	if err != nil {
		return nil, fmt.Errorf("%w: decode sig: %v", errs.ErrCrypto, err)
	}
	sig, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse sig: %v", errs.ErrCrypto, err)
	}
	if !sig.Verify(mustHexDecode(eid), senderKey) {
		return nil, fmt.Errorf("%w: invalid event signature", errs.ErrCrypto)
	}
	return Decrypt(myPriv.PrivKey, senderKey, e.Content)
}

func mustHexDecode(s string) []byte {
	b, _ := hex.DecodeString(s)
	return b
}

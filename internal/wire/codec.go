// Package wire implements the protocol's message schema and transport
// envelope: the tagged event payloads, their numeric kinds, JSON encoding,
// and the NIP-04-compatible point-to-point encryption used for every
// directed (non-offer) message.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/rawblock/nostrdizer/internal/errs"
	"github.com/rawblock/nostrdizer/internal/types"
)

// Event kinds, part of the wire contract (spec §4.1).
const (
	KindAbsoluteOffer = 10123 // replaceable
	KindRelativeOffer = 10124 // replaceable
	KindFill          = 125
	KindMakerPubkey   = 126
	KindAuth          = 127
	KindIoAuth        = 128
	KindUnsignedCJ    = 129
	KindSignedCJ      = 130
)

// DustThreshold is the minimum output value (sats) the builder will emit;
// anything at or below it is suppressed and absorbed into mining fee.
const DustThreshold = 546

// MaxFeeRatio is the hard ceiling on (input_total-output_total)/A the Taker
// verifier enforces before even looking at maker-fee/mining-fee policy.
const MaxFeeRatio = 0.15

// EventType names which payload variant an Event carries.
type EventType string

const (
	EventOffer      EventType = "Offer"
	EventFill       EventType = "Fill"
	EventPubKey     EventType = "PubKey"
	EventAuth       EventType = "Auth"
	EventMakerInputs EventType = "MakerInputs"
	EventUnsignedCJ EventType = "UnsignedCJ"
	EventSignedCJ   EventType = "SignedCJ"
)

// Envelope is the externally-tagged {event_type, event} record every
// protocol message is wrapped in before JSON encoding.
type Envelope struct {
	EventType EventType       `json:"event_type"`
	Event     json.RawMessage `json:"event"`
}

// OfferPayload is the wire shape for EventOffer. Kind discriminates
// RelOffer/AbsOffer the way the source's sw0reloffer/sw0absoffer variants did.
type OfferPayload struct {
	Kind         string  `json:"kind"` // "RelOffer" | "AbsOffer"
	OfferID      uint32  `json:"offer_id"`
	MinSize      int64   `json:"min_size"`
	MaxSize      int64   `json:"max_size"`
	TxFeeContrib int64   `json:"tx_fee_contribution"`
	CJFeeAbs     int64   `json:"cj_fee_abs,omitempty"`
	CJFeeRel     float64 `json:"cj_fee_rel,omitempty"`
}

// FillPayload is the wire shape for EventFill.
type FillPayload struct {
	OfferID            uint32 `json:"offer_id"`
	Amount             int64  `json:"amount"`
	TakerEncryptionPub string `json:"taker_encryption_pub"`
	Commitment         string `json:"commitment"` // hex sha256
}

// AuthPayload is the wire shape for EventAuth (the AuthCommitment / PoDLE proof).
type AuthPayload struct {
	Index  int    `json:"index"`
	P      string `json:"p"`  // hex compressed point
	P2     string `json:"p2"` // hex compressed point
	Commit string `json:"commit"`
	Sig    string `json:"sig"` // hex, big-endian 32 bytes
	E      string `json:"e"`
}

// IoAuthPayload is the wire shape for EventMakerInputs.
type IoAuthPayload struct {
	UTXOs           []UTXOPayload `json:"utxos"`
	CoinjoinAddress string        `json:"coinjoin_address"`
	ChangeAddress   string        `json:"change_address"`
	MakerAuthPub    string        `json:"maker_auth_pub,omitempty"`
	BitcoinSig      string        `json:"bitcoin_sig,omitempty"`
}

// UTXOPayload is one IoAuth input: an outpoint plus its mandatory witness_utxo.
type UTXOPayload struct {
	Txid         string `json:"txid"`
	Vout         uint32 `json:"vout"`
	WitnessValue int64  `json:"witness_value"`
	WitnessPkScript string `json:"witness_pkscript"` // hex
}

// UnsignedCJPayload / SignedCJPayload carry a base64 PSBT.
type UnsignedCJPayload struct {
	PSBT string `json:"psbt"`
}

type SignedCJPayload struct {
	PSBT string `json:"psbt"`
}

// PubKeyPayload announces a maker's encryption pubkey alongside an offer,
// matching the source's separate "maker pubkey" event kind.
type PubKeyPayload struct {
	PubKey string `json:"pubkey"`
}

// Encode wraps a payload value into an Envelope and marshals it to JSON.
func Encode(eventType EventType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %v", errs.ErrDecode, err)
	}
	env := Envelope{EventType: eventType, Event: raw}
	out, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%w: encode envelope: %v", errs.ErrDecode, err)
	}
	return out, nil
}

// Decode parses a raw JSON envelope, returning its EventType and raw payload
// for the caller to further unmarshal with DecodePayload.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: decode envelope: %v", errs.ErrDecode, err)
	}
	return env, nil
}

// DecodePayload unmarshals an Envelope's raw event into dst.
func DecodePayload(env Envelope, dst any) error {
	if err := json.Unmarshal(env.Event, dst); err != nil {
		return fmt.Errorf("%w: decode %s payload: %v", errs.ErrDecode, env.EventType, err)
	}
	return nil
}

// OfferToPayload converts the internal Offer type to its wire shape.
func OfferToPayload(o types.Offer) OfferPayload {
	p := OfferPayload{
		OfferID:      o.OfferID,
		MinSize:      o.MinSize,
		MaxSize:      o.MaxSize,
		TxFeeContrib: o.TxFeeContrib,
	}
	if o.Kind == types.OfferKindRelative {
		p.Kind = "RelOffer"
		p.CJFeeRel = o.CJFeeRel
	} else {
		p.Kind = "AbsOffer"
		p.CJFeeAbs = o.CJFeeAbs
	}
	return p
}

// PayloadToOffer converts a wire OfferPayload back to the internal type,
// attaching the publishing maker's pubkey (carried out-of-band on the event).
func PayloadToOffer(p OfferPayload, makerPub string) (types.Offer, error) {
	o := types.Offer{
		OfferID:      p.OfferID,
		MinSize:      p.MinSize,
		MaxSize:      p.MaxSize,
		TxFeeContrib: p.TxFeeContrib,
		MakerPub:     makerPub,
	}
	switch p.Kind {
	case "RelOffer":
		o.Kind = types.OfferKindRelative
		o.CJFeeRel = p.CJFeeRel
	case "AbsOffer":
		o.Kind = types.OfferKindAbsolute
		o.CJFeeAbs = p.CJFeeAbs
	default:
		return types.Offer{}, fmt.Errorf("%w: unknown offer kind %q", errs.ErrDecode, p.Kind)
	}
	return o, nil
}

// AuthCommitmentToPayload converts an internal AuthCommitment to its wire shape.
func AuthCommitmentToPayload(ac types.AuthCommitment) AuthPayload {
	return AuthPayload{
		Index:  ac.Index,
		P:      hexEncodePoint(ac.P),
		P2:     hexEncodePoint(ac.P2),
		Commit: hexEncodeBytes(ac.Commit[:]),
		Sig:    hexEncodeBigInt(ac.Sig),
		E:      hexEncodeBytes(ac.E[:]),
	}
}

// EventKindForOffer returns the numeric wire kind for an offer's variant.
func EventKindForOffer(o types.Offer) int {
	if o.Kind == types.OfferKindRelative {
		return KindRelativeOffer
	}
	return KindAbsoluteOffer
}

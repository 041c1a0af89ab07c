package taker

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"
	"github.com/rawblock/nostrdizer/internal/errs"
	"github.com/rawblock/nostrdizer/internal/types"
	"github.com/rawblock/nostrdizer/internal/wire"
)

// decodeOfferEvent parses a replaceable Offer event's plaintext content
// (offers are never NIP-04 encrypted: they must be discoverable by every
// Taker) into the internal Offer type, attaching the publishing pubkey.
func decodeOfferEvent(e wire.RawEvent) (types.Offer, bool) {
	env, err := wire.Decode([]byte(e.Content))
	if err != nil || env.EventType != wire.EventOffer {
		return types.Offer{}, false
	}
	var p wire.OfferPayload
	if err := wire.DecodePayload(env, &p); err != nil {
		return types.Offer{}, false
	}
	o, err := wire.PayloadToOffer(p, e.PubKey)
	if err != nil {
		return types.Offer{}, false
	}
	return o, true
}

// fromIoAuthPayload converts a received IoAuthPayload to the internal
// IoAuth type, the inverse of the maker package's toIoAuthPayload.
func fromIoAuthPayload(p wire.IoAuthPayload) (types.IoAuth, error) {
	io := types.IoAuth{
		CoinjoinAddress: p.CoinjoinAddress,
		ChangeAddress:   p.ChangeAddress,
		MakerAuthPub:    p.MakerAuthPub,
		BitcoinSig:      p.BitcoinSig,
	}
	for _, u := range p.UTXOs {
		hash, err := chainhash.NewHashFromStr(u.Txid)
		if err != nil {
			return types.IoAuth{}, fmt.Errorf("%w: ioauth utxo txid: %v", errs.ErrDecode, err)
		}
		script, err := hex.DecodeString(u.WitnessPkScript)
		if err != nil {
			return types.IoAuth{}, fmt.Errorf("%w: ioauth witness script: %v", errs.ErrDecode, err)
		}
		io.UTXOs = append(io.UTXOs, types.UTXORef{
			Outpoint: btcwire.OutPoint{Hash: *hash, Index: u.Vout},
			Witness:  types.WitnessUTXO{Value: u.WitnessValue, PkScript: script},
		})
	}
	return io, nil
}

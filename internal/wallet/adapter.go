// Package wallet defines the abstract interface the protocol core uses for
// UTXO enumeration, address derivation, PSBT signing, and broadcast (spec
// §6 wallet adapter contract). Concrete adapters (e.g. internal/walletrpc)
// implement it against a real backend; tests use an in-memory fake.
package wallet

import (
	"context"

	"github.com/btcsuite/btcd/btcutil/psbt"
)

// AddressPurpose distinguishes the two kinds of fresh address a role
// requests, matching the spec's "coinjoin" | "change" contract.
type AddressPurpose string

const (
	PurposeCoinjoin AddressPurpose = "coinjoin"
	PurposeChange   AddressPurpose = "change"
)

// UTXO is one entry from list_unspent.
type UTXO struct {
	Txid         string
	Vout         uint32
	Value        int64
	ScriptPubKey []byte
	Address      string
	Confirmations int64
}

// Adapter is the wallet/blockchain backend contract from spec §6.
type Adapter interface {
	// ListUnspent returns every UTXO the wallet currently controls.
	ListUnspent(ctx context.Context) ([]UTXO, error)

	// NewAddress derives a fresh address for the given purpose.
	NewAddress(ctx context.Context, purpose AddressPurpose) (string, error)

	// GetBalance sums confirmed UTXOs with at least minConfirmations.
	GetBalance(ctx context.Context, minConfirmations int64) (int64, error)

	// GetTxOut returns the value (sats) of a specific outpoint, used to
	// validate foreign UTXOs offered by a counterparty.
	GetTxOut(ctx context.Context, txid string, vout uint32) (int64, error)

	// SignPSBT adds this wallet's signatures for any inputs it owns.
	SignPSBT(ctx context.Context, p *psbt.Packet) (*psbt.Packet, error)

	// FinalizePSBT fills final_script_witness for every signed input.
	FinalizePSBT(ctx context.Context, p *psbt.Packet) (*psbt.Packet, error)

	// Broadcast relays a finalized raw transaction and returns its txid.
	Broadcast(ctx context.Context, rawTx []byte) (string, error)

	// EstimateSmartFee returns the sat/kvB rate for next-block confirmation.
	// A zero rate with a non-nil error means estimation failed.
	EstimateSmartFee(ctx context.Context, confTarget int) (satPerKvB int64, err error)
}

package wallet

import (
	"bytes"
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/rawblock/nostrdizer/internal/errs"
)

// Memory is an in-process Adapter fake used by tests: it owns a fixed set
// of UTXOs and a keyed map of scripts it can sign for, and "broadcasts" by
// recording the raw tx instead of hitting a node.
type Memory struct {
	UTXOs          []UTXO
	CoinjoinAddrs  []string
	ChangeAddrs    []string
	FeeRateSatKvB  int64
	FeeEstErr      error
	Broadcasted    [][]byte
	BroadcastTxid  string
	MyScripts      map[string]bool // string(raw pkScript bytes) -> owned by this wallet

	addrCursor int
}

// NewMemory builds a Memory adapter preloaded with utxos.
func NewMemory(utxos []UTXO) *Memory {
	m := &Memory{UTXOs: utxos, MyScripts: make(map[string]bool)}
	for _, u := range utxos {
		m.MyScripts[string(u.ScriptPubKey)] = true
	}
	return m
}

func (m *Memory) ListUnspent(ctx context.Context) ([]UTXO, error) {
	return m.UTXOs, nil
}

func (m *Memory) NewAddress(ctx context.Context, purpose AddressPurpose) (string, error) {
	var pool []string
	if purpose == PurposeCoinjoin {
		pool = m.CoinjoinAddrs
	} else {
		pool = m.ChangeAddrs
	}
	if len(pool) == 0 {
		return "", fmt.Errorf("%w: no %s addresses configured", errs.ErrBadInput, purpose)
	}
	addr := pool[m.addrCursor%len(pool)]
	m.addrCursor++
	return addr, nil
}

func (m *Memory) GetBalance(ctx context.Context, minConfirmations int64) (int64, error) {
	var total int64
	for _, u := range m.UTXOs {
		if u.Confirmations >= minConfirmations {
			total += u.Value
		}
	}
	return total, nil
}

func (m *Memory) GetTxOut(ctx context.Context, txid string, vout uint32) (int64, error) {
	for _, u := range m.UTXOs {
		if u.Txid == txid && u.Vout == vout {
			return u.Value, nil
		}
	}
	return 0, fmt.Errorf("%w: utxo %s:%d not found", errs.ErrBadInput, txid, vout)
}

// SignPSBT is a test fake: it fills a placeholder PartialSig for every input
// whose witness script this wallet recognizes as its own, without doing real
// ECDSA signing. Production use goes through internal/walletrpc instead.
func (m *Memory) SignPSBT(ctx context.Context, p *psbt.Packet) (*psbt.Packet, error) {
	for i, in := range p.Inputs {
		if in.WitnessUtxo == nil {
			continue
		}
		if m.MyScripts[string(in.WitnessUtxo.PkScript)] {
			p.Inputs[i].PartialSigs = append(p.Inputs[i].PartialSigs, &psbt.PartialSig{
				PubKey:    []byte("test-pubkey"),
				Signature: []byte("test-signature"),
			})
		}
	}
	return p, nil
}

func (m *Memory) FinalizePSBT(ctx context.Context, p *psbt.Packet) (*psbt.Packet, error) {
	for i := range p.Inputs {
		if len(p.Inputs[i].PartialSigs) > 0 {
			p.Inputs[i].FinalScriptWitness = []byte("test-final-witness")
		}
	}
	return p, nil
}

func (m *Memory) Broadcast(ctx context.Context, rawTx []byte) (string, error) {
	m.Broadcasted = append(m.Broadcasted, bytes.Clone(rawTx))
	if m.BroadcastTxid == "" {
		return "test-txid", nil
	}
	return m.BroadcastTxid, nil
}

func (m *Memory) EstimateSmartFee(ctx context.Context, confTarget int) (int64, error) {
	if m.FeeEstErr != nil {
		return 0, m.FeeEstErr
	}
	if m.FeeRateSatKvB == 0 {
		return 0, fmt.Errorf("%w: no estimate available", errs.ErrFeeEstimationFailed)
	}
	return m.FeeRateSatKvB, nil
}

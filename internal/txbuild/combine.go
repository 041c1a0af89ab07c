package txbuild

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/rawblock/nostrdizer/internal/errs"
)

// Combine merges a set of partially-signed PSBTs for the same underlying
// transaction by folding pairwise: start from the first, merge each
// subsequent packet's per-input signature material into the accumulator.
// Duplicate inputs with identical witness data are idempotent; conflicting
// witnesses are an error. Replaces the source's unwrap-first-and-fold panic
// with ErrEmptyPSBTSet on empty input.
func Combine(packets []*psbt.Packet) (*psbt.Packet, error) {
	if len(packets) == 0 {
		return nil, errs.ErrEmptyPSBTSet
	}

	acc := packets[0]
	for _, next := range packets[1:] {
		merged, err := mergeTwo(acc, next)
		if err != nil {
			return nil, err
		}
		acc = merged
	}
	return acc, nil
}

func mergeTwo(a, b *psbt.Packet) (*psbt.Packet, error) {
	if a.UnsignedTx.TxHash() != b.UnsignedTx.TxHash() {
		return nil, fmt.Errorf("%w: underlying transactions differ", errs.ErrConflictingWitness)
	}
	if len(a.Inputs) != len(b.Inputs) {
		return nil, fmt.Errorf("%w: input count mismatch", errs.ErrConflictingWitness)
	}

	for i := range a.Inputs {
		ai, bi := &a.Inputs[i], &b.Inputs[i]

		if ai.WitnessUtxo == nil && bi.WitnessUtxo != nil {
			ai.WitnessUtxo = bi.WitnessUtxo
		}

		if len(bi.FinalScriptWitness) > 0 {
			if len(ai.FinalScriptWitness) > 0 && !bytes.Equal(ai.FinalScriptWitness, bi.FinalScriptWitness) {
				return nil, fmt.Errorf("%w: input %d", errs.ErrConflictingWitness, i)
			}
			ai.FinalScriptWitness = bi.FinalScriptWitness
		}
		if len(bi.FinalScriptSig) > 0 {
			if len(ai.FinalScriptSig) > 0 && !bytes.Equal(ai.FinalScriptSig, bi.FinalScriptSig) {
				return nil, fmt.Errorf("%w: input %d", errs.ErrConflictingWitness, i)
			}
			ai.FinalScriptSig = bi.FinalScriptSig
		}

		ai.PartialSigs = mergePartialSigs(ai.PartialSigs, bi.PartialSigs)
	}

	return a, nil
}

func mergePartialSigs(a, b []*psbt.PartialSig) []*psbt.PartialSig {
	seen := make(map[string][]byte, len(a))
	order := make([]string, 0, len(a))
	for _, sig := range a {
		key := string(sig.PubKey)
		if _, ok := seen[key]; !ok {
			order = append(order, key)
		}
		seen[key] = sig.Signature
	}
	for _, sig := range b {
		key := string(sig.PubKey)
		if _, ok := seen[key]; !ok {
			order = append(order, key)
		}
		seen[key] = sig.Signature
	}

	out := make([]*psbt.PartialSig, 0, len(order))
	for _, k := range order {
		out = append(out, &psbt.PartialSig{PubKey: []byte(k), Signature: seen[k]})
	}
	return out
}

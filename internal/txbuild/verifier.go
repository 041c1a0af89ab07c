package txbuild

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/rawblock/nostrdizer/internal/errs"
	"github.com/rawblock/nostrdizer/internal/types"
	wireproto "github.com/rawblock/nostrdizer/internal/wire"
)

// Role selects which side of the §4.5 economic invariant to evaluate.
type Role int

const (
	RoleMaker Role = iota
	RoleTaker
)

// MineScript reports whether a scriptPubKey belongs to the verifying party,
// used to split input_total/output_total into "mine" vs total.
type MineScript func(pkScript []byte) bool

// Verify implements the §4.5 per-role economic check against a candidate
// PSBT and nominal send amount A. All arithmetic is signed so intermediate
// negatives (e.g. a hostile mining_fee) surface instead of wrapping.
func Verify(p *psbt.Packet, amount int64, role Role, mine MineScript, policy types.FeePolicy) (types.VerifyCJInfo, error) {
	if len(p.Inputs) != len(p.UnsignedTx.TxIn) {
		return types.VerifyCJInfo{}, fmt.Errorf("%w: psbt input/tx mismatch", errs.ErrBadInput)
	}

	var inputTotal, myInputTotal, outputTotal, myOutputTotal int64

	for i, in := range p.Inputs {
		if in.WitnessUtxo == nil {
			return types.VerifyCJInfo{}, fmt.Errorf("%w: input %d missing witness_utxo", errs.ErrBadInput, i)
		}
		inputTotal += in.WitnessUtxo.Value
		if mine(in.WitnessUtxo.PkScript) {
			myInputTotal += in.WitnessUtxo.Value
		}
	}

	for _, out := range p.UnsignedTx.TxOut {
		outputTotal += out.Value
		if mine(out.PkScript) {
			myOutputTotal += out.Value
		}
	}

	miningFee := inputTotal - outputTotal

	info := types.VerifyCJInfo{MiningFee: miningFee}

	switch role {
	case RoleMaker:
		makerFee := myOutputTotal - myInputTotal
		info.MakerFee = makerFee

		verified := makerFee >= policy.AbsFeeMin &&
			float64(makerFee)/float64(amount) >= policy.RelFeeMin &&
			amount >= policy.MinSize && amount <= policy.MaxSize
		info.Verified = verified
		if !verified {
			return info, fmt.Errorf("%w", errs.ErrVerifyFailed)
		}
		return info, nil

	case RoleTaker:
		makerFee := myInputTotal - myOutputTotal - miningFee
		info.MakerFee = makerFee

		maxAllowed := int64(float64(amount) * wireproto.MaxFeeRatio)
		if inputTotal-outputTotal > maxAllowed {
			return info, fmt.Errorf("%w: mining+maker delta %d exceeds %d", errs.ErrFeesTooHigh, inputTotal-outputTotal, maxAllowed)
		}

		verified := makerFee < policy.AbsFeeMax &&
			float64(makerFee)/float64(amount) < policy.RelFeeMax &&
			miningFee < policy.AbsMiningFeeMax
		info.Verified = verified
		if !verified {
			return info, fmt.Errorf("%w", errs.ErrVerifyFailed)
		}
		return info, nil
	}

	return types.VerifyCJInfo{}, fmt.Errorf("%w: unknown role", errs.ErrBadInput)
}

// CheckDustFree reports whether every output of tx exceeds the dust
// threshold, the "Dust suppression" testable property.
func CheckDustFree(p *psbt.Packet) bool {
	for _, out := range p.UnsignedTx.TxOut {
		if out.Value <= wireproto.DustThreshold {
			return false
		}
	}
	return true
}

// ScriptsEqual is a small helper for tests comparing pkScripts.
func ScriptsEqual(a, b []byte) bool { return bytes.Equal(a, b) }

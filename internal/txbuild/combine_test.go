package txbuild

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
	"github.com/rawblock/nostrdizer/internal/errs"
	"github.com/stretchr/testify/require"
)

func twoInputPacket(t *testing.T) *psbt.Packet {
	t.Helper()
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 1}})
	tx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: scriptFor("out")})
	p, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)
	return p
}

func TestCombine_EmptySet(t *testing.T) {
	_, err := Combine(nil)
	require.ErrorIs(t, err, errs.ErrEmptyPSBTSet)
}

func TestCombine_MergesDistinctInputWitnesses(t *testing.T) {
	a := twoInputPacket(t)
	a.Inputs[0].FinalScriptWitness = []byte{0x01, 0x02}

	b := twoInputPacket(t)
	b.Inputs[1].FinalScriptWitness = []byte{0x03, 0x04}

	merged, err := Combine([]*psbt.Packet{a, b})
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, merged.Inputs[0].FinalScriptWitness)
	require.Equal(t, []byte{0x03, 0x04}, merged.Inputs[1].FinalScriptWitness)
}

func TestCombine_ConflictingWitnessFails(t *testing.T) {
	a := twoInputPacket(t)
	a.Inputs[0].FinalScriptWitness = []byte{0x01}

	b := twoInputPacket(t)
	b.Inputs[0].FinalScriptWitness = []byte{0x02}

	_, err := Combine([]*psbt.Packet{a, b})
	require.ErrorIs(t, err, errs.ErrConflictingWitness)
}

func TestCombine_MergesPartialSigsFromDifferentSigners(t *testing.T) {
	a := twoInputPacket(t)
	a.Inputs[0].PartialSigs = []*psbt.PartialSig{{PubKey: []byte("pubA"), Signature: []byte("sigA")}}

	b := twoInputPacket(t)
	b.Inputs[0].PartialSigs = []*psbt.PartialSig{{PubKey: []byte("pubB"), Signature: []byte("sigB")}}

	merged, err := Combine([]*psbt.Packet{a, b})
	require.NoError(t, err)
	require.Len(t, merged.Inputs[0].PartialSigs, 2)
}

func TestCombine_DifferentUnderlyingTxFails(t *testing.T) {
	a := twoInputPacket(t)

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 9999, PkScript: scriptFor("different")})
	b, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)

	_, err = Combine([]*psbt.Packet{a, b})
	require.ErrorIs(t, err, errs.ErrConflictingWitness)
}

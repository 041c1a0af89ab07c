package wallet

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func TestMemory_ListUnspent(t *testing.T) {
	utxos := []UTXO{{Txid: "a", Vout: 0, Value: 1000, ScriptPubKey: []byte{0x01}}}
	m := NewMemory(utxos)
	got, err := m.ListUnspent(context.Background())
	require.NoError(t, err)
	require.Equal(t, utxos, got)
}

func TestMemory_NewAddress_CyclesPool(t *testing.T) {
	m := NewMemory(nil)
	m.CoinjoinAddrs = []string{"addr1", "addr2"}

	a, err := m.NewAddress(context.Background(), PurposeCoinjoin)
	require.NoError(t, err)
	require.Equal(t, "addr1", a)

	b, err := m.NewAddress(context.Background(), PurposeCoinjoin)
	require.NoError(t, err)
	require.Equal(t, "addr2", b)

	c, err := m.NewAddress(context.Background(), PurposeCoinjoin)
	require.NoError(t, err)
	require.Equal(t, "addr1", c)
}

func TestMemory_NewAddress_NoneConfigured(t *testing.T) {
	m := NewMemory(nil)
	_, err := m.NewAddress(context.Background(), PurposeChange)
	require.Error(t, err)
}

func TestMemory_GetBalance_FiltersByConfirmations(t *testing.T) {
	m := NewMemory([]UTXO{
		{Value: 1000, Confirmations: 0},
		{Value: 2000, Confirmations: 6},
		{Value: 4000, Confirmations: 10},
	})

	total, err := m.GetBalance(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(6000), total)
}

func TestMemory_GetTxOut(t *testing.T) {
	m := NewMemory([]UTXO{{Txid: "a", Vout: 1, Value: 5000}})

	v, err := m.GetTxOut(context.Background(), "a", 1)
	require.NoError(t, err)
	require.Equal(t, int64(5000), v)

	_, err = m.GetTxOut(context.Background(), "a", 2)
	require.Error(t, err)
}

func TestMemory_SignPSBT_SignsOnlyOwnedInputs(t *testing.T) {
	myScript := []byte{0x00, 0x14, 0xaa}
	theirScript := []byte{0x00, 0x14, 0xbb}

	m := NewMemory([]UTXO{{ScriptPubKey: myScript}})

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 1}})
	p, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)
	p.Inputs[0].WitnessUtxo = &wire.TxOut{Value: 1000, PkScript: myScript}
	p.Inputs[1].WitnessUtxo = &wire.TxOut{Value: 1000, PkScript: theirScript}

	signed, err := m.SignPSBT(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, signed.Inputs[0].PartialSigs, 1)
	require.Empty(t, signed.Inputs[1].PartialSigs)
}

func TestMemory_FinalizePSBT_FillsWitnessOnlyForSignedInputs(t *testing.T) {
	m := NewMemory(nil)

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 1}})
	p, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)
	p.Inputs[0].PartialSigs = []*psbt.PartialSig{{PubKey: []byte("k"), Signature: []byte("s")}}

	finalized, err := m.FinalizePSBT(context.Background(), p)
	require.NoError(t, err)
	require.NotEmpty(t, finalized.Inputs[0].FinalScriptWitness)
	require.Empty(t, finalized.Inputs[1].FinalScriptWitness)
}

func TestMemory_Broadcast_RecordsRawTxAndReturnsTxid(t *testing.T) {
	m := NewMemory(nil)
	txid, err := m.Broadcast(context.Background(), []byte{0x01, 0x02})
	require.NoError(t, err)
	require.Equal(t, "test-txid", txid)
	require.Len(t, m.Broadcasted, 1)

	m.BroadcastTxid = "custom-txid"
	txid2, err := m.Broadcast(context.Background(), []byte{0x03})
	require.NoError(t, err)
	require.Equal(t, "custom-txid", txid2)
}

func TestMemory_EstimateSmartFee(t *testing.T) {
	m := NewMemory(nil)
	_, err := m.EstimateSmartFee(context.Background(), 6)
	require.Error(t, err) // no rate configured

	m.FeeRateSatKvB = 1500
	rate, err := m.EstimateSmartFee(context.Background(), 6)
	require.NoError(t, err)
	require.Equal(t, int64(1500), rate)
}

package txbuild

import (
	"context"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
	"github.com/rawblock/nostrdizer/internal/wallet"
	"github.com/stretchr/testify/require"
)

// fakeFinalizeAdapter implements wallet.Adapter with only FinalizePSBT
// behavior under test control; every other method is unused by
// FinalizeAndBroadcast before the point under test.
type fakeFinalizeAdapter struct {
	finalizeErr    error
	finalizeResult func(*psbt.Packet) *psbt.Packet
}

func (f *fakeFinalizeAdapter) ListUnspent(ctx context.Context) ([]wallet.UTXO, error) { return nil, nil }
func (f *fakeFinalizeAdapter) NewAddress(ctx context.Context, purpose wallet.AddressPurpose) (string, error) {
	return "", nil
}
func (f *fakeFinalizeAdapter) GetBalance(ctx context.Context, minConfirmations int64) (int64, error) {
	return 0, nil
}
func (f *fakeFinalizeAdapter) GetTxOut(ctx context.Context, txid string, vout uint32) (int64, error) {
	return 0, nil
}
func (f *fakeFinalizeAdapter) SignPSBT(ctx context.Context, p *psbt.Packet) (*psbt.Packet, error) {
	return p, nil
}
func (f *fakeFinalizeAdapter) FinalizePSBT(ctx context.Context, p *psbt.Packet) (*psbt.Packet, error) {
	if f.finalizeErr != nil {
		return nil, f.finalizeErr
	}
	return f.finalizeResult(p), nil
}
func (f *fakeFinalizeAdapter) Broadcast(ctx context.Context, rawTx []byte) (string, error) {
	return "unexpected-broadcast", nil
}
func (f *fakeFinalizeAdapter) EstimateSmartFee(ctx context.Context, confTarget int) (int64, error) {
	return 0, nil
}

func TestFinalizeAndBroadcast_FinalizeErrorBubbles(t *testing.T) {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
	p, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)

	adapter := &fakeFinalizeAdapter{finalizeErr: errors.New("node rejected psbt")}

	_, err = FinalizeAndBroadcast(context.Background(), adapter, p)
	require.ErrorContains(t, err, "finalize psbt")
}

func TestFinalizeAndBroadcast_NotFullyFinalized(t *testing.T) {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 1}})
	p, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)

	adapter := &fakeFinalizeAdapter{
		finalizeResult: func(in *psbt.Packet) *psbt.Packet {
			// Only input 0 gets a final witness; input 1 stays unsigned,
			// so psbt.IsFinalized must see the packet as incomplete.
			in.Inputs[0].FinalScriptWitness = []byte{0x01}
			return in
		},
	}

	_, err = FinalizeAndBroadcast(context.Background(), adapter, p)
	require.ErrorContains(t, err, "not fully finalized")
}

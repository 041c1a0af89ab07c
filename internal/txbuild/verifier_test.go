package txbuild

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
	"github.com/rawblock/nostrdizer/internal/types"
	"github.com/stretchr/testify/require"
)

func scriptFor(label string) []byte { return []byte("script:" + label) }

func mineOf(labels ...string) MineScript {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[string(scriptFor(l))] = true
	}
	return func(pkScript []byte) bool { return set[string(pkScript)] }
}

func buildTestPacket(t *testing.T, inputs []struct {
	label string
	value int64
}, outputs []struct {
	label string
	value int64
}) *psbt.Packet {
	t.Helper()
	tx := wire.NewMsgTx(2)
	for i := range inputs {
		tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: uint32(i)}})
	}
	for _, o := range outputs {
		tx.AddTxOut(&wire.TxOut{Value: o.value, PkScript: scriptFor(o.label)})
	}
	p, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)
	for i, in := range inputs {
		p.Inputs[i].WitnessUtxo = &wire.TxOut{Value: in.value, PkScript: scriptFor(in.label)}
	}
	return p
}

func TestVerify_Maker_Success(t *testing.T) {
	p := buildTestPacket(t,
		[]struct {
			label string
			value int64
		}{
			{"makerIn", 150500},
			{"otherIn", 200000},
		},
		[]struct {
			label string
			value int64
		}{
			{"makerCJ", 100000},
			{"makerChange", 50700},
			{"otherOut", 199800},
		},
	)

	info, err := Verify(p, 100000, RoleMaker, mineOf("makerIn", "makerCJ", "makerChange"), types.FeePolicy{
		AbsFeeMin: 100,
		RelFeeMin: 0.001,
		MinSize:   1000,
		MaxSize:   1000000,
	})
	require.NoError(t, err)
	require.Equal(t, int64(200), info.MakerFee)
	require.True(t, info.Verified)
}

func TestVerify_Maker_FeeBelowMinimum(t *testing.T) {
	p := buildTestPacket(t,
		[]struct {
			label string
			value int64
		}{
			{"makerIn", 150500},
		},
		[]struct {
			label string
			value int64
		}{
			{"makerCJ", 100000},
			{"makerChange", 50700},
		},
	)

	_, err := Verify(p, 100000, RoleMaker, mineOf("makerIn", "makerCJ", "makerChange"), types.FeePolicy{
		AbsFeeMin: 300, // makerFee is 200, below this
		RelFeeMin: 0.001,
		MinSize:   1000,
		MaxSize:   1000000,
	})
	require.ErrorContains(t, err, "verification failed")
}

func TestVerify_Taker_Success(t *testing.T) {
	p := buildTestPacket(t,
		[]struct {
			label string
			value int64
		}{
			{"takerIn", 250000},
			{"makerIn", 50000},
		},
		[]struct {
			label string
			value int64
		}{
			{"takerCJ", 100000},
			{"takerChange", 149550},
			{"makerOut", 50150},
		},
	)

	info, err := Verify(p, 100000, RoleTaker, mineOf("takerIn", "takerCJ", "takerChange"), types.FeePolicy{
		AbsFeeMax:       1000,
		RelFeeMax:       0.01,
		AbsMiningFeeMax: 1000,
	})
	require.NoError(t, err)
	require.Equal(t, int64(150), info.MakerFee)
	require.True(t, info.Verified)
}

func TestVerify_Taker_FeesTooHigh(t *testing.T) {
	p := buildTestPacket(t,
		[]struct {
			label string
			value int64
		}{
			{"takerIn", 250000},
		},
		[]struct {
			label string
			value int64
		}{
			{"takerCJ", 100000},
			{"takerChange", 100000}, // mining+maker delta of 50000, far above 15% of 100000
		},
	)

	_, err := Verify(p, 100000, RoleTaker, mineOf("takerIn", "takerCJ", "takerChange"), types.FeePolicy{
		AbsFeeMax:       1000000,
		RelFeeMax:       1,
		AbsMiningFeeMax: 1000000,
	})
	require.ErrorContains(t, err, "fees too high")
}

func TestVerify_MissingWitnessUTXO(t *testing.T) {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: scriptFor("x")})
	p, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)

	_, err = Verify(p, 1000, RoleTaker, mineOf(), types.FeePolicy{})
	require.ErrorContains(t, err, "missing witness_utxo")
}

func TestCheckDustFree(t *testing.T) {
	dustFree := buildTestPacket(t, nil, []struct {
		label string
		value int64
	}{{"a", 1000}, {"b", 2000}})
	require.True(t, CheckDustFree(dustFree))

	dusty := buildTestPacket(t, nil, []struct {
		label string
		value int64
	}{{"a", 500}, {"b", 2000}})
	require.False(t, CheckDustFree(dusty))
}

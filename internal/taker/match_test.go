package taker

import (
	"testing"

	"github.com/rawblock/nostrdizer/internal/relay"
	"github.com/rawblock/nostrdizer/internal/types"
	"github.com/rawblock/nostrdizer/internal/wallet"
	"github.com/stretchr/testify/require"
)

func mustTakerIdentity(t *testing.T) types.Identity {
	t.Helper()
	id, err := types.NewIdentity()
	require.NoError(t, err)
	return id
}

func TestNew_DefaultsNumberOfMakersAndMinimum(t *testing.T) {
	id := mustTakerIdentity(t)
	bus := relay.NewBus()
	tk := New(id, relay.NewFakeClient(bus), wallet.NewMemory(nil), Params{Amount: 100000})

	require.GreaterOrEqual(t, tk.params.NumberOfMakers, 3)
	require.Less(t, tk.params.NumberOfMakers, 9)
	require.Equal(t, 1, tk.params.MinimumMakers)
}

func TestNew_RespectsExplicitParams(t *testing.T) {
	id := mustTakerIdentity(t)
	bus := relay.NewBus()
	tk := New(id, relay.NewFakeClient(bus), wallet.NewMemory(nil), Params{
		Amount:         100000,
		NumberOfMakers: 5,
		MinimumMakers:  3,
	})

	require.Equal(t, 5, tk.params.NumberOfMakers)
	require.Equal(t, 3, tk.params.MinimumMakers)
}

func TestMatchAndNormalize_FiltersBySize(t *testing.T) {
	id := mustTakerIdentity(t)
	bus := relay.NewBus()
	tk := New(id, relay.NewFakeClient(bus), wallet.NewMemory(nil), Params{Amount: 100000})

	offers := []types.Offer{
		{MakerPub: "too-small", MinSize: 1000, MaxSize: 50000, CJFeeAbs: 100},
		{MakerPub: "too-large-min", MinSize: 200000, MaxSize: 300000, CJFeeAbs: 100},
		{MakerPub: "fits", MinSize: 1000, MaxSize: 200000, CJFeeAbs: 100},
	}

	matched := tk.matchAndNormalize(offers)
	require.Len(t, matched, 1)
	require.Equal(t, "fits", matched[0].MakerPub)
}

func TestMatchAndNormalize_DedupesKeepingCheapestPerMaker(t *testing.T) {
	id := mustTakerIdentity(t)
	bus := relay.NewBus()
	tk := New(id, relay.NewFakeClient(bus), wallet.NewMemory(nil), Params{Amount: 100000})

	offers := []types.Offer{
		{MakerPub: "m1", OfferID: 1, MinSize: 1000, MaxSize: 200000, CJFeeAbs: 500},
		{MakerPub: "m1", OfferID: 2, MinSize: 1000, MaxSize: 200000, CJFeeAbs: 200},
	}

	matched := tk.matchAndNormalize(offers)
	require.Len(t, matched, 1)
	require.Equal(t, int64(200), matched[0].AbsCJFee)
	require.Equal(t, uint32(2), matched[0].OfferID)
}

func TestMatchAndNormalize_SortsByFeeThenPoolDepth(t *testing.T) {
	id := mustTakerIdentity(t)
	bus := relay.NewBus()
	tk := New(id, relay.NewFakeClient(bus), wallet.NewMemory(nil), Params{Amount: 100000})

	offers := []types.Offer{
		{MakerPub: "cheap-shallow", MinSize: 1000, MaxSize: 100001, CJFeeAbs: 100},
		{MakerPub: "cheap-deep", MinSize: 1000, MaxSize: 500000, CJFeeAbs: 100},
		{MakerPub: "expensive", MinSize: 1000, MaxSize: 900000, CJFeeAbs: 1000},
	}

	matched := tk.matchAndNormalize(offers)
	require.Len(t, matched, 3)
	require.Equal(t, "cheap-deep", matched[0].MakerPub)
	require.Equal(t, "cheap-shallow", matched[1].MakerPub)
	require.Equal(t, "expensive", matched[2].MakerPub)
}

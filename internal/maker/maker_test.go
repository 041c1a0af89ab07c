package maker

import (
	"context"
	"testing"
	"time"

	"github.com/rawblock/nostrdizer/internal/relay"
	"github.com/rawblock/nostrdizer/internal/store"
	"github.com/rawblock/nostrdizer/internal/types"
	"github.com/rawblock/nostrdizer/internal/wallet"
	"github.com/rawblock/nostrdizer/internal/wire"
	"github.com/stretchr/testify/require"
)

func mustMakerIdentity(t *testing.T) types.Identity {
	t.Helper()
	id, err := types.NewIdentity()
	require.NoError(t, err)
	return id
}

func TestNew_InitialState(t *testing.T) {
	id := mustMakerIdentity(t)
	bus := relay.NewBus()
	m := New(id, relay.NewFakeClient(bus), wallet.NewMemory(nil), store.NewMemory(), Config{})
	require.Equal(t, StateIdle, m.State())
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateIdle:           "Idle",
		StateOfferPublished: "OfferPublished",
		StateFilled:         "Filled",
		StateAuthenticated:  "Authenticated",
		StatePledged:        "Pledged",
		StateSigned:         "Signed",
		State(99):           "Unknown",
	}
	for state, want := range tests {
		require.Equal(t, want, state.String())
	}
}

func TestPublishOffers_PublishesBothKindsAndSubscribes(t *testing.T) {
	id := mustMakerIdentity(t)
	bus := relay.NewBus()
	m := New(id, relay.NewFakeClient(bus), wallet.NewMemory(nil), store.NewMemory(), Config{
		AbsFee: 500, RelFee: 0.001, MinSize: 1000, MaxSize: 1000000,
	})

	require.NoError(t, m.publishOffers(context.Background()))
	require.Equal(t, StateOfferPublished, m.State())
	require.Len(t, m.offerEventIDs, 2)
	require.NotEmpty(t, m.subID)

	// A fresh subscriber must see both replaceable offers in its backlog.
	observer := relay.NewFakeClient(bus)
	subID, err := observer.Subscribe(context.Background(), relay.Filter{
		Kinds: []int{wire.KindAbsoluteOffer, wire.KindRelativeOffer},
	})
	require.NoError(t, err)

	var kinds []int
	for {
		d, err := observer.NextEvent(context.Background())
		require.NoError(t, err)
		require.Equal(t, subID, d.SubID)
		if d.EOSE {
			break
		}
		kinds = append(kinds, d.Event.Kind)
	}
	require.ElementsMatch(t, []int{wire.KindAbsoluteOffer, wire.KindRelativeOffer}, kinds)
}

func TestPublishOffers_InvalidConfigFailsValidation(t *testing.T) {
	id := mustMakerIdentity(t)
	bus := relay.NewBus()
	m := New(id, relay.NewFakeClient(bus), wallet.NewMemory(nil), store.NewMemory(), Config{
		AbsFee: 500, MinSize: 2000, MaxSize: 1000, // min > max: invalid
	})

	err := m.publishOffers(context.Background())
	require.Error(t, err)
}

func TestResetRound_ClearsRoundLocalState(t *testing.T) {
	id := mustMakerIdentity(t)
	bus := relay.NewBus()
	m := New(id, relay.NewFakeClient(bus), wallet.NewMemory(nil), store.NewMemory(), Config{})

	m.fillCommitment = [32]byte{0x01}
	m.takerPub = "taker1"
	m.filledOfferID = 7
	m.fillAmount = 50000
	m.ioAuth = types.IoAuth{CoinjoinAddress: "addr"}
	m.state = StateSigned

	m.resetRound()

	require.Equal(t, [32]byte{}, m.fillCommitment)
	require.Empty(t, m.takerPub)
	require.Zero(t, m.filledOfferID)
	require.Zero(t, m.fillAmount)
	require.Equal(t, types.IoAuth{}, m.ioAuth)
	require.Equal(t, StateIdle, m.state)
}

func TestShutdown_UnsubscribesActiveSubscription(t *testing.T) {
	id := mustMakerIdentity(t)
	bus := relay.NewBus()
	client := relay.NewFakeClient(bus)
	m := New(id, client, wallet.NewMemory(nil), store.NewMemory(), Config{
		AbsFee: 500, MinSize: 1000, MaxSize: 1000000,
	})

	require.NoError(t, m.publishOffers(context.Background()))
	require.NoError(t, m.shutdown(context.Background()))

	// With its only subscription closed, the client has nothing to deliver.
	shortCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.NextEvent(shortCtx)
	require.Error(t, err)
}

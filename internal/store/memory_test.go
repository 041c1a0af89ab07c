package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory_SeenCommitment_InitiallyFalse(t *testing.T) {
	m := NewMemory()
	seen, err := m.SeenCommitment(context.Background(), [32]byte{0x01})
	require.NoError(t, err)
	require.False(t, seen)
}

func TestMemory_RecordFillCommitment_MarksSeen(t *testing.T) {
	m := NewMemory()
	commit := [32]byte{0x02}

	require.NoError(t, m.RecordFillCommitment(context.Background(), "taker1", commit))

	seen, err := m.SeenCommitment(context.Background(), commit)
	require.NoError(t, err)
	require.True(t, seen)
}

func TestMemory_RecordFillCommitment_DistinctCommitmentsIndependent(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.RecordFillCommitment(context.Background(), "taker1", [32]byte{0x01}))

	seen, err := m.SeenCommitment(context.Background(), [32]byte{0x02})
	require.NoError(t, err)
	require.False(t, seen)
}

func TestMemory_RecordRoundCompleted_AccumulatesRounds(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.RecordRoundCompleted(context.Background(), "maker1", 1, 500))
	require.NoError(t, m.RecordRoundCompleted(context.Background(), "maker2", 2, 700))

	rounds := m.Rounds()
	require.Len(t, rounds, 2)
	require.Equal(t, CompletedRound{MakerPub: "maker1", OfferID: 1, MakerFee: 500}, rounds[0])
	require.Equal(t, CompletedRound{MakerPub: "maker2", OfferID: 2, MakerFee: 700}, rounds[1])
}

func TestMemory_Rounds_ReturnsSnapshotNotLiveSlice(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.RecordRoundCompleted(context.Background(), "maker1", 1, 500))

	snapshot := m.Rounds()
	require.NoError(t, m.RecordRoundCompleted(context.Background(), "maker2", 2, 700))

	require.Len(t, snapshot, 1, "snapshot must not observe rounds recorded after it was taken")
}

func TestMemory_Close(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Close())
}

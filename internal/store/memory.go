package store

import (
	"context"
	"sync"
)

// Memory is the in-memory Store used when no DATABASE_URL is configured and
// in tests.
type Memory struct {
	mu          sync.Mutex
	commitments map[[32]byte][]string
	rounds      []CompletedRound
}

// CompletedRound is one recorded round outcome.
type CompletedRound struct {
	MakerPub string
	OfferID  uint32
	MakerFee int64
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{commitments: make(map[[32]byte][]string)}
}

func (m *Memory) RecordFillCommitment(ctx context.Context, takerPub string, commit [32]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitments[commit] = append(m.commitments[commit], takerPub)
	return nil
}

func (m *Memory) SeenCommitment(ctx context.Context, commit [32]byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.commitments[commit]
	return ok, nil
}

func (m *Memory) RecordRoundCompleted(ctx context.Context, makerPub string, offerID uint32, makerFee int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds = append(m.rounds, CompletedRound{MakerPub: makerPub, OfferID: offerID, MakerFee: makerFee})
	return nil
}

func (m *Memory) Close() error { return nil }

// Rounds returns a snapshot of every completed round recorded so far, for
// the control-plane API's round-history endpoint.
func (m *Memory) Rounds() []CompletedRound {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletedRound, len(m.rounds))
	copy(out, m.rounds)
	return out
}

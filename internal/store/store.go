// Package store persists completed rounds and observed PoDLE commitments
// across Maker restarts (published offers are not persisted), enabling the
// anti-Sybil replay detection signal from spec §8 scenario 5 to survive
// process restarts.
// Entirely optional: both state machines work with Memory when unconfigured.
package store

import "context"

// Store is the persistence contract the Maker/Taker state machines use.
type Store interface {
	// RecordFillCommitment records a PoDLE commitment digest observed from
	// a given taker pubkey, for later cross-round replay detection.
	RecordFillCommitment(ctx context.Context, takerPub string, commit [32]byte) error

	// SeenCommitment reports whether commit has been observed before (from
	// any taker), the anti-Sybil replay signal.
	SeenCommitment(ctx context.Context, commit [32]byte) (bool, error)

	// RecordRoundCompleted logs a completed round's economics for operator
	// visibility via the control-plane API.
	RecordRoundCompleted(ctx context.Context, makerPub string, offerID uint32, makerFee int64) error

	Close() error
}

// Package relay defines the publish/subscribe transport contract the core
// consumes (spec §4.2) and a concrete gorilla/websocket-backed client,
// grounded on the teacher's internal/api/websocket.go Hub pattern.
package relay

import (
	"context"

	"github.com/rawblock/nostrdizer/internal/wire"
)

// Filter selects which events a subscription receives.
type Filter struct {
	IDs     []string
	Authors []string
	Kinds   []int
	PTag    string
	Since   int64
	Until   int64
	Limit   int
}

// Matches reports whether e satisfies the filter.
func (f Filter) Matches(e wire.RawEvent) bool {
	if len(f.IDs) > 0 && !contains(f.IDs, e.ID) {
		return false
	}
	if len(f.Authors) > 0 && !contains(f.Authors, e.PubKey) {
		return false
	}
	if len(f.Kinds) > 0 && !containsInt(f.Kinds, e.Kind) {
		return false
	}
	if f.PTag != "" {
		p, ok := e.PTag()
		if !ok || p != f.PTag {
			return false
		}
	}
	if f.Since != 0 && e.CreatedAt < f.Since {
		return false
	}
	if f.Until != 0 && e.CreatedAt > f.Until {
		return false
	}
	return true
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// Delivery is one item handed back by NextEvent: either a raw event for a
// subscription, or an EOSE marker signaling the initial backlog for that
// subscription has drained.
type Delivery struct {
	SubID string
	Event wire.RawEvent
	EOSE  bool
}

// Client is the relay adapter contract from spec §4.2. The core never
// retries internally on publish failure; callers see the error and decide.
type Client interface {
	PublishReplaceable(ctx context.Context, e wire.RawEvent) error
	PublishEphemeral(ctx context.Context, e wire.RawEvent) error
	Delete(ctx context.Context, eventID string) error
	Subscribe(ctx context.Context, f Filter) (subID string, err error)
	// NextEvent blocks until a delivery for any active subscription is
	// available or ctx is cancelled. Ordering within a single subscription
	// is preserved.
	NextEvent(ctx context.Context) (Delivery, error)
	Unsubscribe(ctx context.Context, subID string) error
	Close() error
}

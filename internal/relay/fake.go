package relay

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rawblock/nostrdizer/internal/errs"
	"github.com/rawblock/nostrdizer/internal/wire"
)

// Bus is an in-process shared relay used by the unit tests in place of a
// real relay or network. Every Client
// obtained via NewFakeClient shares the same Bus, mirroring how independent
// Maker/Taker processes share one relay in production.
type Bus struct {
	mu          sync.Mutex
	replaceable map[string]wire.RawEvent // key: author|kind
	subs        map[string]Filter
	queues      map[string]chan Delivery
}

// NewBus creates an empty shared relay.
func NewBus() *Bus {
	return &Bus{
		replaceable: make(map[string]wire.RawEvent),
		subs:        make(map[string]Filter),
		queues:      make(map[string]chan Delivery),
	}
}

func replaceableKey(author string, kind int) string {
	return fmt.Sprintf("%s|%d", author, kind)
}

// FakeClient is a relay.Client bound to a shared Bus.
type FakeClient struct {
	bus  *Bus
	mine map[string]bool // subscription ids opened by this client
}

// NewFakeClient returns a Client instance sharing bus.
func NewFakeClient(bus *Bus) *FakeClient {
	return &FakeClient{bus: bus, mine: make(map[string]bool)}
}

func (c *FakeClient) deliver(e wire.RawEvent) {
	c.bus.mu.Lock()
	defer c.bus.mu.Unlock()
	for subID, f := range c.bus.subs {
		if f.Matches(e) {
			ch, ok := c.bus.queues[subID]
			if !ok {
				continue
			}
			select {
			case ch <- Delivery{SubID: subID, Event: e}:
			default:
			}
		}
	}
}

func (c *FakeClient) PublishReplaceable(ctx context.Context, e wire.RawEvent) error {
	c.bus.mu.Lock()
	c.bus.replaceable[replaceableKey(e.PubKey, e.Kind)] = e
	c.bus.mu.Unlock()
	c.deliver(e)
	return nil
}

func (c *FakeClient) PublishEphemeral(ctx context.Context, e wire.RawEvent) error {
	c.deliver(e)
	return nil
}

func (c *FakeClient) Delete(ctx context.Context, eventID string) error {
	c.bus.mu.Lock()
	defer c.bus.mu.Unlock()
	for k, e := range c.bus.replaceable {
		if e.ID == eventID {
			delete(c.bus.replaceable, k)
		}
	}
	return nil
}

func (c *FakeClient) Subscribe(ctx context.Context, f Filter) (string, error) {
	subID := uuid.NewString()
	c.bus.mu.Lock()
	c.bus.subs[subID] = f
	c.bus.queues[subID] = make(chan Delivery, 256)
	c.mine[subID] = true
	var backlog []wire.RawEvent
	for _, e := range c.bus.replaceable {
		if f.Matches(e) {
			backlog = append(backlog, e)
		}
	}
	ch := c.bus.queues[subID]
	c.bus.mu.Unlock()

	for _, e := range backlog {
		ch <- Delivery{SubID: subID, Event: e}
	}
	ch <- Delivery{SubID: subID, EOSE: true}
	return subID, nil
}

func (c *FakeClient) Unsubscribe(ctx context.Context, subID string) error {
	c.bus.mu.Lock()
	defer c.bus.mu.Unlock()
	delete(c.bus.subs, subID)
	delete(c.bus.queues, subID)
	delete(c.mine, subID)
	return nil
}

func (c *FakeClient) NextEvent(ctx context.Context) (Delivery, error) {
	c.bus.mu.Lock()
	var chans []chan Delivery
	for subID, ch := range c.bus.queues {
		if c.mine[subID] {
			chans = append(chans, ch)
		}
	}
	c.bus.mu.Unlock()

	// Poll each of this client's own queues; a real implementation would
	// use a single fan-in channel, but a client holds few subscriptions so
	// this keeps the fake simple.
	for _, ch := range chans {
		select {
		case d := <-ch:
			return d, nil
		default:
		}
	}

	select {
	case <-ctx.Done():
		return Delivery{}, fmt.Errorf("%w: %v", errs.ErrTransport, ctx.Err())
	default:
	}

	// Block on the first queue available, falling back to ctx.Done().
	if len(chans) == 0 {
		<-ctx.Done()
		return Delivery{}, fmt.Errorf("%w: no active subscription", errs.ErrTransport)
	}
	cases := make([]chan Delivery, len(chans))
	copy(cases, chans)
	return waitAny(ctx, cases)
}

func (c *FakeClient) Close() error { return nil }

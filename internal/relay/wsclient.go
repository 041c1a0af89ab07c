package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rawblock/nostrdizer/internal/errs"
	"github.com/rawblock/nostrdizer/internal/wire"
)

// wireMessage is the framing used over the websocket connection: a tagged
// control message carrying either a REQ (subscribe), CLOSE (unsubscribe),
// EVENT (publish or inbound delivery), EOSE, or DELETE.
type wireMessage struct {
	Type   string      `json:"type"` // "REQ" | "CLOSE" | "EVENT" | "EOSE" | "DELETE"
	SubID  string      `json:"sub_id,omitempty"`
	Filter *Filter     `json:"filter,omitempty"`
	Event  *wire.RawEvent `json:"event,omitempty"`
	Ephemeral bool     `json:"ephemeral,omitempty"`
	EventID string     `json:"event_id,omitempty"`
}

// WSClient is a Client implementation over a single gorilla/websocket
// connection to a relay. It mirrors the teacher's Hub discipline: a mutex
// serializing writes to the connection and a write deadline on every send
// so a stalled relay cannot hang the caller. Each publish is written
// directly; inbound frames are queued in an inbox drained by NextEvent.
type WSClient struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	inboxMu sync.Mutex
	inbox   []Delivery
	inboxCh chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial connects to a relay at url and starts the background reader.
func Dial(url string) (*WSClient, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial relay %s: %v", errs.ErrTransport, url, err)
	}
	c := &WSClient{
		conn:    conn,
		inboxCh: make(chan struct{}, 1),
		closed:  make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *WSClient) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Printf("[relay] read error, closing: %v", err)
			close(c.closed)
			return
		}

		var msg wireMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[relay] malformed frame: %v", err)
			continue
		}

		var d Delivery
		switch msg.Type {
		case "EVENT":
			if msg.Event == nil {
				continue
			}
			d = Delivery{SubID: msg.SubID, Event: *msg.Event}
		case "EOSE":
			d = Delivery{SubID: msg.SubID, EOSE: true}
		default:
			continue
		}

		c.inboxMu.Lock()
		c.inbox = append(c.inbox, d)
		c.inboxMu.Unlock()

		select {
		case c.inboxCh <- struct{}{}:
		default:
		}
	}
}

func (c *WSClient) send(msg wireMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return fmt.Errorf("%w: set write deadline: %v", errs.ErrTransport, err)
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: encode frame: %v", errs.ErrTransport, err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("%w: write frame: %v", errs.ErrTransport, err)
	}
	return nil
}

func (c *WSClient) PublishReplaceable(ctx context.Context, e wire.RawEvent) error {
	return c.send(wireMessage{Type: "EVENT", Event: &e})
}

func (c *WSClient) PublishEphemeral(ctx context.Context, e wire.RawEvent) error {
	return c.send(wireMessage{Type: "EVENT", Event: &e, Ephemeral: true})
}

func (c *WSClient) Delete(ctx context.Context, eventID string) error {
	return c.send(wireMessage{Type: "DELETE", EventID: eventID})
}

func (c *WSClient) Subscribe(ctx context.Context, f Filter) (string, error) {
	subID := uuid.NewString()
	if err := c.send(wireMessage{Type: "REQ", SubID: subID, Filter: &f}); err != nil {
		return "", err
	}
	return subID, nil
}

func (c *WSClient) Unsubscribe(ctx context.Context, subID string) error {
	return c.send(wireMessage{Type: "CLOSE", SubID: subID})
}

// NextEvent blocks until a delivery is queued, ctx is cancelled, or the
// connection closes.
func (c *WSClient) NextEvent(ctx context.Context) (Delivery, error) {
	for {
		c.inboxMu.Lock()
		if len(c.inbox) > 0 {
			d := c.inbox[0]
			c.inbox = c.inbox[1:]
			c.inboxMu.Unlock()
			return d, nil
		}
		c.inboxMu.Unlock()

		select {
		case <-ctx.Done():
			return Delivery{}, fmt.Errorf("%w: %v", errs.ErrTransport, ctx.Err())
		case <-c.closed:
			return Delivery{}, fmt.Errorf("%w: relay connection closed", errs.ErrTransport)
		case <-c.inboxCh:
		}
	}
}

func (c *WSClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

package session

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// sendBufferSize bounds the per-connection outbound queue. A full buffer
// means the peer is too slow; events to it are dropped rather than blocking
// the room (fire-and-forget, no acknowledgments).
const sendBufferSize = 64

// Client is the hub-side handle for one live connection. The transport layer
// owns the websocket; the hub only ever queues ordered outbound messages
// here, which a single writer goroutine drains.
type Client struct {
	ID string

	out       chan Message
	closeOnce sync.Once
}

// NewClient creates a client handle for a connection id.
func NewClient(id string) *Client {
	return &Client{
		ID:  id,
		out: make(chan Message, sendBufferSize),
	}
}

// Outbound is the ordered stream of messages for the transport writer to
// deliver.
func (c *Client) Outbound() <-chan Message {
	return c.out
}

// Close releases the outbound stream. Safe to call more than once; sends
// after Close are discarded.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.out)
	})
}

// send queues one event for delivery, dropping it if the client is saturated
// or already closed.
func (c *Client) send(event string, data any) {
	defer func() {
		// The transport may have closed the client between the membership
		// snapshot and this send; a closed channel is a dropped event, not a
		// crash.
		if recover() != nil {
			log.Debug().Str("socketId", c.ID).Str("event", event).Msg("send to closed client dropped")
		}
	}()

	select {
	case c.out <- Message{Event: event, Data: data}:
	default:
		log.Warn().Str("socketId", c.ID).Str("event", event).Msg("client send buffer full, event dropped")
	}
}

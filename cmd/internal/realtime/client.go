package realtime

import "sync"

// Client is one attached websocket transport.
//
// Send is drained by a single writer goroutine owned by the gateway, so
// pushes enqueued in registry order reach the transport in that same
// order. Send is never closed; writers stop via Done.
type Client struct {
	// ConnID uniquely identifies this transport attachment. Two
	// connections from the same user carry distinct ConnIDs.
	ConnID string

	// UserID is empty for anonymous attachments.
	UserID string

	Send chan Event

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient builds a client with a bounded send queue.
func NewClient(connID, userID string, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Client{
		ConnID: connID,
		UserID: userID,
		Send:   make(chan Event, sendBuffer),
		done:   make(chan struct{}),
	}
}

// Done is closed when the client is shut down.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close marks the client as gone. Idempotent. Send is deliberately left
// open so concurrent TrySend calls never panic.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// TrySend enqueues an event without blocking. A full queue or a closed
// client drops the event; slow consumers must never stall the core.
func (c *Client) TrySend(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- ev:
		return true
	default:
		return false
	}
}

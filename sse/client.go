package sse

import (
	"errors"
	"sync"
)

// Errors returned by Client.Send.
var (
	ErrClientClosed = errors.New("sse: client closed")
	ErrClientSlow   = errors.New("sse: client buffer full")
)

// Client is a connected SSE consumer.
type Client struct {
	id     string
	events chan []byte

	mu     sync.Mutex
	closed bool
}

// NewClient creates a client with an outbox of buffer events.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 16
	}
	return &Client{id: id, events: make(chan []byte, buffer)}
}

// ID returns the client id.
func (c *Client) ID() string { return c.id }

// Events returns the outbox.
func (c *Client) Events() <-chan []byte { return c.events }

// Send queues data without blocking. A full outbox drops the event.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.events <- data:
		return nil
	default:
		return ErrClientSlow
	}
}

// Close closes the outbox, which ends Serve. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	return nil
}

package sink

import (
	"context"
	"fmt"
	"sync"

	"chat-relay/domain/event"
)

var ErrClosed = fmt.Errorf("connection sink closed")

// Conn is the outbound side of one live connection. Events are queued on a
// buffered channel drained by the connection's write pump. A full buffer makes
// Consume wait for a free slot, bounded by the caller's context, so a slow
// peer delays a broadcaster but never wedges it.
//
// Close may be called by the owning session or by the registry when the
// connection is superseded; either way the write pump wakes up and shuts the
// transport down.
type Conn struct {
	Events chan event.DomainEvent

	closeOnce sync.Once
	done      chan struct{}
}

func NewConn(bufferSize int) *Conn {
	return &Conn{
		Events: make(chan event.DomainEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// Consume queues an event for delivery. When the buffer is full it waits for
// the write pump to drain a slot; the wait ends with the context deadline or
// the sink closing, whichever comes first. Burst tolerance therefore comes
// from the buffer, back-pressure from the caller's context.
func (c *Conn) Consume(ctx context.Context, e event.DomainEvent) error {
	// Checked first: a closed sink must never accept another event, even
	// when its buffer still has room.
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.Events <- e:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close is idempotent and safe from any goroutine.
func (c *Conn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed once the sink is closed.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

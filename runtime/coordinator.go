// Package runtime wires the connection registry, the message store, and the
// live connections together. It owns the ordering contract of the relay:
// a message is durably committed before any connection observes it.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"
	"chat-relay/repositories"
)

type Coordinator struct {
	log         *slog.Logger
	registry    contract.IRegistry
	repository  repositories.IMessageRepository
	monitor     *observability.Monitor
	sinkTimeout time.Duration
}

func NewCoordinator(log *slog.Logger, registry contract.IRegistry,
	repository repositories.IMessageRepository, monitor *observability.Monitor,
	sinkTimeout time.Duration) *Coordinator {
	return &Coordinator{
		log:         log,
		registry:    registry,
		repository:  repository,
		monitor:     monitor,
		sinkTimeout: sinkTimeout,
	}
}

// Join installs the connection as the live channel for its role. If a
// previous connection held the slot it has been closed by the registry.
func (c *Coordinator) Join(role domain.Role, sink contract.EventSink) {
	if superseded := c.registry.Register(role, sink); superseded != nil {
		c.log.Warn("Superseded a previous connection", "role", role.Label())
	}
	c.monitor.ConnectionOpened()
}

// Leave releases the connection's registry slot. Safe for superseded
// connections: a stale handle never evicts its replacement.
func (c *Coordinator) Leave(role domain.Role, sink contract.EventSink) {
	c.registry.Unregister(role, sink)
	c.monitor.ConnectionClosed()
}

// Replay sends the full committed history, oldest first, to one newly
// connected session only. A history longer than the connection buffer is
// fine: each send waits for the write pump to drain, up to the sink timeout.
// Only a store read failure or a connection that stalls a full timeout on a
// single record fails the session.
func (c *Coordinator) Replay(ctx context.Context, sink contract.EventSink) error {
	messages, err := c.repository.GetMessages()
	if err != nil {
		return err
	}
	for _, message := range messages {
		sendCtx, cancel := context.WithTimeout(ctx, c.sinkTimeout)
		err := sink.Consume(sendCtx, event.MessageBroadcast{Message: message})
		cancel()
		if err != nil {
			return err
		}
	}
	return nil
}

// Post commits one inbound message and fans it out to every live connection,
// the sender included (the echo carries the server-assigned identifier and
// timestamp). The commit comes first: if the store refuses the message,
// nothing is broadcast and the error surfaces to the session.
func (c *Coordinator) Post(ctx context.Context, role domain.Role, body string) (domain.Message, error) {
	message, err := c.repository.StoreMessage(role, body)
	if err != nil {
		return domain.Message{}, err
	}
	c.monitor.IncrMessagesStored()

	c.fanout(ctx, event.MessageBroadcast{Message: message})
	return message, nil
}

// Clear wipes the store, then notifies every live connection. The fan-out is
// synchronous: Clear returns only after every notification attempt finished,
// so the caller's acknowledgment implies best-effort delivery was tried.
func (c *Coordinator) Clear(ctx context.Context) error {
	if err := c.repository.ClearAll(); err != nil {
		return err
	}
	c.monitor.IncrHistoryClears()

	c.fanout(ctx, event.HistoryCleared{At: time.Now().UTC()})
	return nil
}

// fanout delivers one event to every entry of a registry snapshot. A target
// whose buffer stays full for the whole sink timeout drops the event; the
// failure is logged and never affects delivery to the others.
func (c *Coordinator) fanout(ctx context.Context, e event.DomainEvent) {
	for _, entry := range c.registry.Snapshot() {
		sendCtx, cancel := context.WithTimeout(ctx, c.sinkTimeout)
		err := entry.Sink.Consume(sendCtx, e)
		cancel()

		if err != nil {
			c.monitor.IncrBroadcastFailures()
			c.log.Warn("Dropped event for connection",
				"role", entry.Role.Label(),
				"kind", e.Kind(),
				"error", err)
			continue
		}
		c.monitor.IncrBroadcastsSent()
	}
}

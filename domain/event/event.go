package event

import (
	"chat-relay/domain"
	"time"
)

// DomainEvent is anything delivered to a live connection.
type DomainEvent interface {
	Kind() string
}

// MessageBroadcast carries a committed message. It is only ever built from a
// record the store has already durably accepted.
type MessageBroadcast struct {
	Message domain.Message
}

func (MessageBroadcast) Kind() string { return "message" }

// HistoryCleared notifies a connection that the full history was wiped.
type HistoryCleared struct {
	At time.Time
}

func (HistoryCleared) Kind() string { return "cleared" }

// DeliveryFailure tells a sender that its own message was not committed and
// therefore not broadcast. Sent to that connection only.
type DeliveryFailure struct {
	Reason string
}

func (DeliveryFailure) Kind() string { return "error" }

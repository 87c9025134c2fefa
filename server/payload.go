package server

import (
	"time"

	"chat-relay/domain/event"
)

// messagePayload is the wire shape of one chat message, both for replay and
// for live broadcasts.
type messagePayload struct {
	ID   uint64 `json:"id"`
	Role string `json:"role"`
	Body string `json:"body"`
	Time string `json:"time"`
}

// eventPayload is the wire shape of control frames (history cleared, delivery
// failure). The event field discriminates.
type eventPayload struct {
	Event  string `json:"event"`
	Detail string `json:"detail,omitempty"`
}

func toPayload(e event.DomainEvent) any {
	switch ev := e.(type) {
	case event.MessageBroadcast:
		return messagePayload{
			ID:   ev.Message.ID,
			Role: string(ev.Message.Role),
			Body: ev.Message.Body,
			Time: ev.Message.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	case event.HistoryCleared:
		return eventPayload{Event: ev.Kind()}
	case event.DeliveryFailure:
		return eventPayload{Event: ev.Kind(), Detail: ev.Reason}
	default:
		return eventPayload{Event: e.Kind()}
	}
}

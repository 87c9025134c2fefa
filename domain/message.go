package domain

import "time"

// Message represents an immutable chat record. The identifier is assigned by
// the store and increases monotonically; insertion order is the single source
// of truth for replay order.
type Message struct {
	ID        uint64
	Role      Role
	Body      string
	CreatedAt time.Time
}

//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the outbound side of one live connection. Consume must not
// block a broadcaster on a slow peer; Close must be safe to call more than
// once and from a goroutine other than the owner's.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
	Close()
}

// RegistryEntry is one (role, connection) association from a snapshot.
type RegistryEntry struct {
	Role domain.Role
	Sink EventSink
}

type IRegistry interface {
	Register(role domain.Role, sink EventSink) EventSink
	Unregister(role domain.Role, sink EventSink) bool
	Snapshot() []RegistryEntry
}

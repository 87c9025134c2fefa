package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/domain/event"
	cerrors "chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/sink"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
	closed bool
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *recordingSink) recorded() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.DomainEvent(nil), s.events...)
}

func newTestCoordinator(t *testing.T) (*Coordinator, *Registry, *repositories.MessageRepository) {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	repository, err := repositories.NewMessageRepository(db, slog.Default(), "testroom")
	req.NoError(err)
	t.Cleanup(func() { _ = repository.Close() })

	registry := NewRegistry()
	coordinator := NewCoordinator(slog.Default(), registry, repository,
		observability.NewMonitor(), time.Second)
	return coordinator, registry, repository
}

func TestCoordinator_Post_Echoes_To_Sender(t *testing.T) {
	req := require.New(t)
	coordinator, _, repository := newTestCoordinator(t)
	admin := &recordingSink{}

	// Given a connected admin
	coordinator.Join(domain.Admin, admin)

	// When the admin posts a message
	message, err := coordinator.Post(context.Background(), domain.Admin, "hello")
	req.NoError(err)
	req.Equal("hello", message.Body)

	// Then the store holds one committed record
	stored, err := repository.GetMessages()
	req.NoError(err)
	req.Len(stored, 1)
	req.Equal(domain.Admin, stored[0].Role)
	req.Equal("hello", stored[0].Body)

	// And the sender received its own echo with the server-assigned record
	events := admin.recorded()
	req.Len(events, 1)
	broadcast, ok := events[0].(event.MessageBroadcast)
	req.True(ok)
	req.Equal(stored[0], broadcast.Message)
}

func TestCoordinator_Replay_Delivers_History_In_Order(t *testing.T) {
	req := require.New(t)
	coordinator, _, _ := newTestCoordinator(t)
	admin := &recordingSink{}

	// Given history written before the guest arrives
	coordinator.Join(domain.Admin, admin)
	_, err := coordinator.Post(context.Background(), domain.Admin, "hello")
	req.NoError(err)

	// When a guest replays
	guest := &recordingSink{}
	coordinator.Join(domain.Guest, guest)
	req.NoError(coordinator.Replay(context.Background(), guest))

	// Then the guest received exactly the prior record, and the admin saw
	// nothing from the replay
	events := guest.recorded()
	req.Len(events, 1)
	broadcast, ok := events[0].(event.MessageBroadcast)
	req.True(ok)
	req.Equal(domain.Admin, broadcast.Message.Role)
	req.Equal("hello", broadcast.Message.Body)

	req.Len(admin.recorded(), 1) // only its own earlier echo
}

func TestCoordinator_Post_Reaches_Both_Connections(t *testing.T) {
	req := require.New(t)
	coordinator, _, repository := newTestCoordinator(t)
	admin := &recordingSink{}
	guest := &recordingSink{}

	// Given both parties connected
	coordinator.Join(domain.Admin, admin)
	coordinator.Join(domain.Guest, guest)
	_, err := coordinator.Post(context.Background(), domain.Admin, "hello")
	req.NoError(err)

	// When the guest answers
	_, err = coordinator.Post(context.Background(), domain.Guest, "hi")
	req.NoError(err)

	// Then both connections received the guest's broadcast
	for _, sink := range []*recordingSink{admin, guest} {
		events := sink.recorded()
		last, ok := events[len(events)-1].(event.MessageBroadcast)
		req.True(ok)
		req.Equal(domain.Guest, last.Message.Role)
		req.Equal("hi", last.Message.Body)
	}

	// And the store grew to two records
	stored, err := repository.GetMessages()
	req.NoError(err)
	req.Len(stored, 2)
}

func TestCoordinator_Clear_Wipes_And_Notifies_Everyone(t *testing.T) {
	req := require.New(t)
	coordinator, _, repository := newTestCoordinator(t)
	admin := &recordingSink{}
	guest := &recordingSink{}

	// Given both connected with existing history
	coordinator.Join(domain.Admin, admin)
	coordinator.Join(domain.Guest, guest)
	_, err := coordinator.Post(context.Background(), domain.Admin, "hello")
	req.NoError(err)

	// When the history is cleared
	req.NoError(coordinator.Clear(context.Background()))

	// Then the store is empty
	stored, err := repository.GetMessages()
	req.NoError(err)
	req.Empty(stored)

	// And both connections were told
	for _, sink := range []*recordingSink{admin, guest} {
		events := sink.recorded()
		_, ok := events[len(events)-1].(event.HistoryCleared)
		req.True(ok)
	}

	// And a reconnect replays zero history
	late := &recordingSink{}
	req.NoError(coordinator.Replay(context.Background(), late))
	req.Empty(late.recorded())
}

func TestCoordinator_Failed_Commit_Broadcasts_Nothing(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repository := mocks.NewMockIMessageRepository(ctrl)
	repository.EXPECT().
		StoreMessage(domain.Admin, "doomed").
		Return(domain.Message{}, fmt.Errorf("%w: disk on fire", cerrors.ErrStoreUnavailable))

	registry := NewRegistry()
	coordinator := NewCoordinator(slog.Default(), registry, repository,
		observability.NewMonitor(), time.Second)

	admin := &recordingSink{}
	guest := &recordingSink{}
	coordinator.Join(domain.Admin, admin)
	coordinator.Join(domain.Guest, guest)

	// When the store refuses the commit
	_, err := coordinator.Post(context.Background(), domain.Admin, "doomed")
	req.ErrorIs(err, cerrors.ErrStoreUnavailable)

	// Then no connection observed anything: never broadcast-before-persist.
	req.Empty(admin.recorded())
	req.Empty(guest.recorded())
}

func TestCoordinator_Replay_Longer_Than_Connection_Buffer(t *testing.T) {
	req := require.New(t)
	coordinator, _, repository := newTestCoordinator(t)

	// Given far more history than one connection buffers
	const total = 200
	for i := 0; i < total; i++ {
		_, err := repository.StoreMessage(domain.Admin, fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	// And a small buffered connection with a write pump draining it
	conn := sink.NewConn(4)
	var received []event.DomainEvent
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			select {
			case e := <-conn.Events:
				received = append(received, e)
				if len(received) == total {
					return
				}
			case <-conn.Done():
				return
			}
		}
	}()

	// When the history is replayed
	req.NoError(coordinator.Replay(context.Background(), conn))

	// Then every record arrived, in store order
	select {
	case <-drained:
	case <-time.After(5 * time.Second):
		t.Fatal("write pump never received the full history")
	}
	req.Len(received, total)
	for i, e := range received {
		broadcast, ok := e.(event.MessageBroadcast)
		req.True(ok)
		req.Equal(fmt.Sprintf("message %d", i), broadcast.Message.Body)
	}
}

func TestCoordinator_Stalled_Connection_Times_Out_Not_Hangs(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Given a guest that accepts nothing until its send context expires
	stalled := mocks.NewMockEventSink(ctrl)
	stalled.EXPECT().Close().AnyTimes()
	stalled.EXPECT().
		Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ event.DomainEvent) error {
			<-ctx.Done()
			return ctx.Err()
		}).
		AnyTimes()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })
	repository, err := repositories.NewMessageRepository(db, slog.Default(), "testroom")
	req.NoError(err)
	t.Cleanup(func() { _ = repository.Close() })

	registry := NewRegistry()
	coordinator := NewCoordinator(slog.Default(), registry, repository,
		observability.NewMonitor(), 50*time.Millisecond)

	healthy := &recordingSink{}
	coordinator.Join(domain.Admin, healthy)
	coordinator.Join(domain.Guest, stalled)

	// When the admin posts
	start := time.Now()
	_, err = coordinator.Post(context.Background(), domain.Admin, "hello")
	req.NoError(err)

	// Then the stalled target was abandoned at the sink timeout and the
	// healthy one still got the broadcast
	req.Less(time.Since(start), time.Second)
	req.Len(healthy.recorded(), 1)
}

func TestCoordinator_Fanout_Failure_Is_Isolated(t *testing.T) {
	req := require.New(t)
	coordinator, _, _ := newTestCoordinator(t)

	// Given a guest whose sink is already dead
	dead := &recordingSink{}
	healthy := &recordingSink{}
	coordinator.Join(domain.Guest, dead)
	coordinator.Join(domain.Admin, healthy)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	failing := mocks.NewMockEventSink(ctrl)
	failing.EXPECT().Close().AnyTimes()
	failing.EXPECT().
		Consume(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("peer gone")).
		AnyTimes()

	// Replace the guest's sink with one that always fails to accept events
	coordinator.Join(domain.Guest, failing)

	// When the admin posts
	message, err := coordinator.Post(context.Background(), domain.Admin, "still works")
	req.NoError(err)
	req.Equal("still works", message.Body)

	// Then the healthy connection still got the broadcast
	events := healthy.recorded()
	req.Len(events, 1)
	broadcast, ok := events[0].(event.MessageBroadcast)
	req.True(ok)
	req.Equal("still works", broadcast.Message.Body)
}

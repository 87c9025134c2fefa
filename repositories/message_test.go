package repositories

import (
	"fmt"
	"log/slog"
	"testing"

	"chat-relay/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestRepository(t *testing.T) *MessageRepository {
	t.Helper()
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	repository, err := NewMessageRepository(db, slog.Default(), "testroom")
	req.NoError(err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository
}

func Test_Store_Preserves_Call_Order(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	// Given a single role appending several messages
	bodies := []string{"first", "second", "third", "fourth"}
	for _, body := range bodies {
		_, err := repository.StoreMessage(domain.Admin, body)
		req.NoError(err)
	}

	// Then the full scan returns them in exact call order
	fetched, err := repository.GetMessages()
	req.NoError(err)
	req.Len(fetched, len(bodies))
	for i, message := range fetched {
		req.Equal(bodies[i], message.Body)
		req.Equal(domain.Admin, message.Role)
	}
}

func Test_Identifiers_Are_Monotonic(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	var lastID uint64
	for i := 0; i < 10; i++ {
		message, err := repository.StoreMessage(domain.Guest, fmt.Sprintf("message %d", i))
		req.NoError(err)
		req.Greater(message.ID, lastID)
		lastID = message.ID
	}
}

func Test_Interleaved_Roles_Keep_Insertion_Order(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	_, err := repository.StoreMessage(domain.Admin, "hello")
	req.NoError(err)
	_, err = repository.StoreMessage(domain.Guest, "hi")
	req.NoError(err)
	_, err = repository.StoreMessage(domain.Admin, "how are you")
	req.NoError(err)

	fetched, err := repository.GetMessages()
	req.NoError(err)
	req.Len(fetched, 3)
	req.Equal(domain.Admin, fetched[0].Role)
	req.Equal(domain.Guest, fetched[1].Role)
	req.Equal(domain.Admin, fetched[2].Role)
}

func Test_ClearAll_Empties_The_Log(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	// Given a populated history
	_, err := repository.StoreMessage(domain.Admin, "soon gone")
	req.NoError(err)
	_, err = repository.StoreMessage(domain.Guest, "also gone")
	req.NoError(err)

	// When the history is cleared
	req.NoError(repository.ClearAll())

	// Then the scan is empty
	fetched, err := repository.GetMessages()
	req.NoError(err)
	req.Empty(fetched)

	// And a subsequent append succeeds, with an identifier above the wiped ones
	message, err := repository.StoreMessage(domain.Admin, "fresh start")
	req.NoError(err)
	req.Greater(message.ID, uint64(2))

	fetched, err = repository.GetMessages()
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("fresh start", fetched[0].Body)
}

func Test_GetMessages_On_Empty_Store(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t)

	fetched, err := repository.GetMessages()
	req.NoError(err)
	req.Empty(fetched)
}

//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"chat-relay/domain"
	cerrors "chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	StoreMessage(role domain.Role, body string) (domain.Message, error)
	GetMessages() ([]domain.Message, error)
	ClearAll() error
}

// MessageRepository persists the room's append-only message log in BadgerDB.
// Keys are formatted as "msg:{room_id}:{id_padded}" with 20-digit zero
// padding so that lexicographic key order equals insertion order; identifiers
// come from a durable badger.Sequence and stay monotonic across restarts and
// across clears.
type MessageRepository struct {
	db   *badger.DB
	seq  *badger.Sequence
	log  *slog.Logger
	room string
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, room string) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(fmt.Sprintf("seq:%s", room)), 64)
	if err != nil {
		return nil, fmt.Errorf("message sequence opening failed: %w", err)
	}
	return &MessageRepository{db: db, seq: seq, log: log, room: room}, nil
}

// Close releases the unused part of the identifier lease. Call on shutdown.
func (r *MessageRepository) Close() error {
	return r.seq.Release()
}

type diskMessage struct {
	ID        uint64    `json:"id"`
	Role      string    `json:"role"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// StoreMessage assigns the next identifier and the current timestamp, then
// commits the record synchronously. No caller observes the message before
// the commit has been applied; a failed commit yields no record at all.
func (r *MessageRepository) StoreMessage(role domain.Role, body string) (domain.Message, error) {
	next, err := r.seq.Next()
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", cerrors.ErrStoreUnavailable, err)
	}

	message := domain.Message{
		ID:        next + 1, // identifiers start at 1
		Role:      role,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return domain.Message{}, err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(r.messageKey(message.ID), bytes)
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", cerrors.ErrStoreUnavailable, err)
	}
	return message, nil
}

// GetMessages retrieves the full room history, oldest first, using a prefix
// scan. Thanks to the padded identifier in the key, records come back in
// insertion order. Safe to call concurrently with StoreMessage: the badger
// view either observes a committed record or does not.
func (r *MessageRepository) GetMessages() ([]domain.Message, error) {
	var records []diskMessage
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := r.keyPrefix()
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var record diskMessage
				if err := json.Unmarshal(value, &record); err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrStoreUnavailable, err)
	}

	return lo.Map(records, func(item diskMessage, _ int) domain.Message {
		return toMessage(item)
	}), nil
}

// ClearAll removes every record of the room. Not reversible. The identifier
// sequence is deliberately not reset, so ordering stays unambiguous even for
// messages appended right after a clear.
func (r *MessageRepository) ClearAll() error {
	if err := r.db.DropPrefix(r.keyPrefix()); err != nil {
		return fmt.Errorf("%w: %v", cerrors.ErrStoreUnavailable, err)
	}
	r.log.Info("Message history cleared", "room", r.room)
	return nil
}

func (r *MessageRepository) keyPrefix() []byte {
	return []byte(fmt.Sprintf("msg:%s:", r.room))
}

func (r *MessageRepository) messageKey(id uint64) []byte {
	return []byte(fmt.Sprintf("msg:%s:%020d", r.room, id))
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:        message.ID,
		Role:      string(message.Role),
		Body:      message.Body,
		CreatedAt: message.CreatedAt,
	}
}

func toMessage(record diskMessage) domain.Message {
	return domain.Message{
		ID:        record.ID,
		Role:      domain.Role(record.Role),
		Body:      record.Body,
		CreatedAt: record.CreatedAt,
	}
}

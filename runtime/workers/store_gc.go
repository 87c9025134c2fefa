package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// StoreGCWorker periodically reclaims Badger value-log space. Badger never
// runs this pass on its own; a long-lived store without it grows unbounded.
type StoreGCWorker struct {
	log      *slog.Logger
	db       *badger.DB
	interval time.Duration
}

func NewStoreGCWorker(log *slog.Logger, db *badger.DB, interval time.Duration) *StoreGCWorker {
	return &StoreGCWorker{log: log, db: db, interval: interval}
}

func (w *StoreGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// One pass per tick. ErrNoRewrite only means there was nothing
			// worth reclaiming this round.
			err := w.db.RunValueLogGC(0.5)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				w.log.Warn("Value log GC failed", "error", err)
			}
		}
	}
}

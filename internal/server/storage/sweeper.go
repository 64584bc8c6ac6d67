package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"zenvault/internal/server/database"
	"zenvault/internal/server/metrics"
)

// trashStore is the slice of the repository the sweeper needs.
type trashStore interface {
	ListTrashedBefore(ctx context.Context, cutoff time.Time) ([]*database.FileRecord, error)
	DeleteTrashed(ctx context.Context, id string) error
}

// TrashSweeper periodically purges records that have sat in the trash
// longer than the configured retention, along with their blobs. With a
// zero retention the sweeper is never started; purge stays explicit.
type TrashSweeper struct {
	store     trashStore
	blobs     Store
	retention time.Duration
	interval  time.Duration
	done      chan struct{}
}

// NewTrashSweeper creates a trash retention sweeper.
func NewTrashSweeper(store trashStore, blobs Store, retention, interval time.Duration) *TrashSweeper {
	return &TrashSweeper{
		store:     store,
		blobs:     blobs,
		retention: retention,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start begins the sweep loop in a background goroutine.
func (ts *TrashSweeper) Start(ctx context.Context) {
	slog.Info("trash sweeper started", "retention", ts.retention, "interval", ts.interval)

	go func() {
		ticker := time.NewTicker(ts.interval)
		defer ticker.Stop()

		// Run once immediately on start
		ts.runSweep(ctx)

		for {
			select {
			case <-ticker.C:
				ts.runSweep(ctx)
			case <-ctx.Done():
				slog.Info("trash sweeper stopping")
				close(ts.done)
				return
			}
		}
	}()
}

// Wait blocks until the sweeper has fully stopped.
func (ts *TrashSweeper) Wait() {
	<-ts.done
}

func (ts *TrashSweeper) runSweep(ctx context.Context) {
	cutoff := time.Now().Add(-ts.retention)

	expired, err := ts.store.ListTrashedBefore(ctx, cutoff)
	if err != nil {
		slog.Error("failed to list expired trash", "error", err)
		return
	}

	if len(expired) == 0 {
		return
	}

	var swept, failed int
	for _, rec := range expired {
		if err := ts.store.DeleteTrashed(ctx, rec.ID); err != nil {
			// A concurrent restore makes the record active again;
			// that is not a failure, the file simply left the trash.
			if errors.Is(err, database.ErrFileActive) || errors.Is(err, database.ErrFileNotFound) {
				continue
			}
			slog.Error("failed to purge expired record", "id", rec.ID, "error", err)
			failed++
			continue
		}

		if err := ts.blobs.Delete(rec.ID); err != nil {
			slog.Error("failed to delete blob", "id", rec.ID, "error", err)
		}

		swept++
		metrics.TrashSwept.Inc()
	}

	slog.Info("trash sweep complete",
		"swept", swept,
		"failed", failed,
		"expired", len(expired),
	)
}

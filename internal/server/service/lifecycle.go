package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"zenvault/internal/server/database"
	"zenvault/internal/server/metrics"
	"zenvault/internal/server/storage"
)

// Lifecycle moves file records between the active and trashed states
// and performs permanent deletion. Transitions on a single record are
// serialized by the store's conditional single-statement updates.
type Lifecycle struct {
	store RecordStore
	blobs storage.Store
}

// NewLifecycle creates a lifecycle manager.
func NewLifecycle(store RecordStore, blobs storage.Store) *Lifecycle {
	return &Lifecycle{store: store, blobs: blobs}
}

// Trash soft-deletes a record. Trashing an already-trashed record is a
// no-op success.
func (l *Lifecycle) Trash(ctx context.Context, ownerID, id string) (*database.FileRecord, error) {
	return l.setTrashed(ctx, ownerID, id, true, "trash")
}

// Restore returns a trashed record to the active state. Restoring an
// already-active record is a no-op success.
//
// Restore does not re-check the quota: a restored file may push the
// owner past the ceiling when trashed files are excluded from usage.
// The ceiling only gates new admissions.
func (l *Lifecycle) Restore(ctx context.Context, ownerID, id string) (*database.FileRecord, error) {
	return l.setTrashed(ctx, ownerID, id, false, "restore")
}

func (l *Lifecycle) setTrashed(ctx context.Context, ownerID, id string, trashed bool, transition string) (*database.FileRecord, error) {
	if _, err := getOwned(ctx, l.store, ownerID, id); err != nil {
		return nil, err
	}

	rec, err := l.store.SetTrashed(ctx, id, trashed)
	if err != nil {
		if errors.Is(err, database.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	metrics.LifecycleTransitions.WithLabelValues(transition).Inc()
	slog.Info("lifecycle transition", "transition", transition, "id", id, "owner", ownerID)
	return rec, nil
}

// Purge permanently deletes a trashed record and its blob. Purging an
// active record fails with ErrConflict; deletion is a deliberate
// two-step operation.
func (l *Lifecycle) Purge(ctx context.Context, ownerID, id string) error {
	if _, err := getOwned(ctx, l.store, ownerID, id); err != nil {
		return err
	}

	if err := l.store.DeleteTrashed(ctx, id); err != nil {
		switch {
		case errors.Is(err, database.ErrFileNotFound):
			return ErrNotFound
		case errors.Is(err, database.ErrFileActive):
			return fmt.Errorf("%w: file must be trashed before purge", ErrConflict)
		default:
			return err
		}
	}

	// The record is gone; blob removal is best-effort. An orphaned blob
	// wastes disk but never resurfaces through the API.
	if err := l.blobs.Delete(id); err != nil {
		slog.Error("failed to delete blob", "id", id, "error", err)
	}

	metrics.LifecycleTransitions.WithLabelValues("purge").Inc()
	slog.Info("lifecycle transition", "transition", "purge", "id", id, "owner", ownerID)
	return nil
}

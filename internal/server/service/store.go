package service

import (
	"context"
	"errors"
	"time"

	"zenvault/internal/server/database"
)

// RecordStore is the persistence interface the services operate
// against. database.Repository is the Postgres implementation; tests
// use an in-memory one.
//
// CreateIfUnderQuota must be atomic per owner: the usage sum and the
// insert happen under mutual exclusion so concurrent admissions cannot
// jointly overshoot the ceiling.
type RecordStore interface {
	CreateIfUnderQuota(ctx context.Context, rec *database.FileRecord, ceiling int64, countTrashed bool) error
	GetByID(ctx context.Context, id string) (*database.FileRecord, error)
	ListByOwner(ctx context.Context, ownerID string, trashed bool) ([]*database.FileRecord, error)
	Update(ctx context.Context, id string, patch database.FilePatch) (*database.FileRecord, error)
	SetTrashed(ctx context.Context, id string, trashed bool) (*database.FileRecord, error)
	DeleteTrashed(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	SumOwnerSize(ctx context.Context, ownerID string, includeTrashed bool) (int64, error)
	ListTrashedBefore(ctx context.Context, cutoff time.Time) ([]*database.FileRecord, error)
}

var _ RecordStore = (*database.Repository)(nil)

// getOwned fetches a record and verifies ownership. A record owned by
// someone else is reported as ErrNotFound so ids cannot be probed
// across accounts.
func getOwned(ctx context.Context, store RecordStore, ownerID, id string) (*database.FileRecord, error) {
	rec, err := store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rec.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return rec, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"zenvault/internal/server/database"
	"zenvault/internal/server/storage"
)

// Files serves metadata reads and the mutable attributes of a record:
// name and folder.
type Files struct {
	store RecordStore
	blobs storage.Store
}

// NewFiles creates the file metadata service.
func NewFiles(store RecordStore, blobs storage.Store) *Files {
	return &Files{store: store, blobs: blobs}
}

// Get returns a single owned record.
func (f *Files) Get(ctx context.Context, ownerID, id string) (*database.FileRecord, error) {
	return getOwned(ctx, f.store, ownerID, id)
}

// List returns the owner's records, active or trashed.
func (f *Files) List(ctx context.Context, ownerID string, trashed bool) ([]*database.FileRecord, error) {
	return f.store.ListByOwner(ctx, ownerID, trashed)
}

// Update renames and/or moves a record.
func (f *Files) Update(ctx context.Context, ownerID, id string, patch database.FilePatch) (*database.FileRecord, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: empty patch", ErrInvalidArgument)
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidArgument)
		}
		name := sanitizeFilename(*patch.Name)
		patch.Name = &name
	}

	if _, err := getOwned(ctx, f.store, ownerID, id); err != nil {
		return nil, err
	}

	rec, err := f.store.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, database.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// DownloadPath resolves the on-disk blob path for an owned, active
// record. Trashed files are not downloadable; restore first.
func (f *Files) DownloadPath(ctx context.Context, ownerID, id string) (path, name string, err error) {
	rec, err := getOwned(ctx, f.store, ownerID, id)
	if err != nil {
		return "", "", err
	}
	if rec.IsTrashed {
		return "", "", ErrNotFound
	}

	path, err = f.blobs.GetPath(id)
	if err != nil {
		return "", "", fmt.Errorf("blob missing for record %s: %w", id, err)
	}
	return path, rec.Name, nil
}

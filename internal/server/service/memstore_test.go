package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"zenvault/internal/server/database"
)

// memStore is an in-memory RecordStore for tests. The single mutex
// gives CreateIfUnderQuota the same atomicity contract as the Postgres
// repository's advisory-lock transaction.
type memStore struct {
	mu    sync.Mutex
	files map[string]*database.FileRecord
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string]*database.FileRecord)}
}

func cloneRecord(rec *database.FileRecord) *database.FileRecord {
	c := *rec
	if rec.FolderID != nil {
		f := *rec.FolderID
		c.FolderID = &f
	}
	if rec.TrashedAt != nil {
		t := *rec.TrashedAt
		c.TrashedAt = &t
	}
	return &c
}

// seed inserts a record directly, bypassing admission.
func (m *memStore) seed(rec *database.FileRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[rec.ID] = cloneRecord(rec)
}

func (m *memStore) sumLocked(ownerID string, includeTrashed bool) int64 {
	var total int64
	for _, rec := range m.files {
		if rec.OwnerID != ownerID {
			continue
		}
		if rec.IsTrashed && !includeTrashed {
			continue
		}
		total += rec.SizeBytes
	}
	return total
}

func (m *memStore) CreateIfUnderQuota(ctx context.Context, rec *database.FileRecord, ceiling int64, countTrashed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.files[rec.ID]; exists {
		return database.ErrDuplicateID
	}
	if m.sumLocked(rec.OwnerID, countTrashed)+rec.SizeBytes > ceiling {
		return database.ErrQuotaExceeded
	}
	m.files[rec.ID] = cloneRecord(rec)
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*database.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.files[id]
	if !ok {
		return nil, database.ErrFileNotFound
	}
	return cloneRecord(rec), nil
}

func (m *memStore) ListByOwner(ctx context.Context, ownerID string, trashed bool) ([]*database.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var recs []*database.FileRecord
	for _, rec := range m.files {
		if rec.OwnerID == ownerID && rec.IsTrashed == trashed {
			recs = append(recs, cloneRecord(rec))
		}
	}
	return recs, nil
}

func (m *memStore) Update(ctx context.Context, id string, patch database.FilePatch) (*database.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.files[id]
	if !ok {
		return nil, database.ErrFileNotFound
	}
	if patch.Name != nil {
		rec.Name = *patch.Name
	}
	switch {
	case patch.MoveToRoot:
		rec.FolderID = nil
	case patch.FolderID != nil:
		f := *patch.FolderID
		rec.FolderID = &f
	}
	rec.UpdatedAt = time.Now().UTC()
	return cloneRecord(rec), nil
}

func (m *memStore) SetTrashed(ctx context.Context, id string, trashed bool) (*database.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.files[id]
	if !ok {
		return nil, database.ErrFileNotFound
	}
	if rec.IsTrashed == trashed {
		return cloneRecord(rec), nil
	}

	now := time.Now().UTC()
	rec.IsTrashed = trashed
	if trashed {
		rec.TrashedAt = &now
	} else {
		rec.TrashedAt = nil
	}
	rec.UpdatedAt = now
	return cloneRecord(rec), nil
}

func (m *memStore) DeleteTrashed(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.files[id]
	if !ok {
		return database.ErrFileNotFound
	}
	if !rec.IsTrashed {
		return database.ErrFileActive
	}
	delete(m.files, id)
	return nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return database.ErrFileNotFound
	}
	delete(m.files, id)
	return nil
}

func (m *memStore) SumOwnerSize(ctx context.Context, ownerID string, includeTrashed bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sumLocked(ownerID, includeTrashed), nil
}

func (m *memStore) ListTrashedBefore(ctx context.Context, cutoff time.Time) ([]*database.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var recs []*database.FileRecord
	for _, rec := range m.files {
		if rec.IsTrashed && rec.TrashedAt != nil && rec.TrashedAt.Before(cutoff) {
			recs = append(recs, cloneRecord(rec))
		}
	}
	return recs, nil
}

var _ RecordStore = (*memStore)(nil)

// memBlobs is an in-memory blob store for tests.
type memBlobs struct {
	mu       sync.Mutex
	saved    map[string]int64
	failSave bool
}

func newMemBlobs() *memBlobs {
	return &memBlobs{saved: make(map[string]int64)}
}

func (b *memBlobs) Save(fileID string, data io.Reader) (int64, error) {
	if b.failSave {
		return 0, fmt.Errorf("blob store unavailable")
	}
	n, err := io.Copy(io.Discard, data)
	if err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saved[fileID] = n
	return n, nil
}

func (b *memBlobs) GetPath(fileID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.saved[fileID]; !ok {
		return "", fmt.Errorf("blob not found for file %s", fileID)
	}
	return "/blobs/" + fileID, nil
}

func (b *memBlobs) Delete(fileID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.saved, fileID)
	return nil
}

func (b *memBlobs) EnsureDir() error { return nil }

func (b *memBlobs) has(fileID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.saved[fileID]
	return ok
}

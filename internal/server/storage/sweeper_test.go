package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"zenvault/internal/server/database"
)

// fakeTrashStore returns a fixed set of expired records and tracks
// which ids were purged.
type fakeTrashStore struct {
	expired []*database.FileRecord
	deleted map[string]error // per-id result, nil means success
	purged  []string
}

func (f *fakeTrashStore) ListTrashedBefore(ctx context.Context, cutoff time.Time) ([]*database.FileRecord, error) {
	return f.expired, nil
}

func (f *fakeTrashStore) DeleteTrashed(ctx context.Context, id string) error {
	if err, ok := f.deleted[id]; ok && err != nil {
		return err
	}
	f.purged = append(f.purged, id)
	return nil
}

func trashedRecord(id string, trashedAt time.Time) *database.FileRecord {
	return &database.FileRecord{
		ID:        id,
		OwnerID:   "alice",
		Name:      id + ".bin",
		SizeBytes: 10,
		IsTrashed: true,
		TrashedAt: &trashedAt,
	}
}

func TestTrashSweeper_runSweep(t *testing.T) {
	t.Run("purges expired records and their blobs", func(t *testing.T) {
		dir := t.TempDir()
		blobs := NewFileSystemStore(dir)
		os.WriteFile(filepath.Join(dir, "old1"), []byte("x"), 0644)
		os.WriteFile(filepath.Join(dir, "old2"), []byte("y"), 0644)

		old := time.Now().Add(-48 * time.Hour)
		store := &fakeTrashStore{
			expired: []*database.FileRecord{
				trashedRecord("old1", old),
				trashedRecord("old2", old),
			},
		}

		ts := NewTrashSweeper(store, blobs, 24*time.Hour, time.Hour)
		ts.runSweep(context.Background())

		if len(store.purged) != 2 {
			t.Fatalf("expected 2 purged, got %d", len(store.purged))
		}
		for _, id := range []string{"old1", "old2"} {
			if _, err := os.Stat(filepath.Join(dir, id)); !os.IsNotExist(err) {
				t.Errorf("expected blob %s removed", id)
			}
		}
	})

	t.Run("skips records restored between list and purge", func(t *testing.T) {
		old := time.Now().Add(-48 * time.Hour)
		store := &fakeTrashStore{
			expired: []*database.FileRecord{trashedRecord("resurrected", old)},
			deleted: map[string]error{"resurrected": database.ErrFileActive},
		}

		ts := NewTrashSweeper(store, NewFileSystemStore(t.TempDir()), 24*time.Hour, time.Hour)
		ts.runSweep(context.Background())

		if len(store.purged) != 0 {
			t.Errorf("expected nothing purged, got %v", store.purged)
		}
	})
}

func TestTrashSweeper_StartStop(t *testing.T) {
	store := &fakeTrashStore{}
	ts := NewTrashSweeper(store, NewFileSystemStore(t.TempDir()), 24*time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	ts.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		ts.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}

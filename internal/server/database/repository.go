package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFileNotFound  = errors.New("file record not found")
	ErrDuplicateID   = errors.New("file record id already exists")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrFileActive    = errors.New("file record is not trashed")
)

const fileColumns = `id, owner_id, name, size_bytes, folder_id, is_trashed, trashed_at, created_at, updated_at`

// Repository provides CRUD operations for file records.
type Repository struct {
	db *DB
}

// NewRepository creates a new Repository.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*FileRecord, error) {
	rec := &FileRecord{}
	err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.Name,
		&rec.SizeBytes,
		&rec.FolderID,
		&rec.IsTrashed,
		&rec.TrashedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CreateIfUnderQuota inserts a new file record only if the owner's usage plus
// the record's size stays within ceiling. The quota sum and the insert run in
// a single transaction holding a per-owner advisory lock, so concurrent
// admissions for the same owner are serialized and cannot jointly overshoot
// the ceiling. countTrashed controls whether trashed records count toward
// usage.
func (r *Repository) CreateIfUnderQuota(ctx context.Context, rec *FileRecord, ceiling int64, countTrashed bool) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin admission transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serializes admissions per owner across all server processes.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", rec.OwnerID); err != nil {
		return fmt.Errorf("failed to acquire owner lock: %w", err)
	}

	query := `SELECT COALESCE(SUM(size_bytes), 0) FROM files WHERE owner_id = $1 AND is_trashed = FALSE`
	if countTrashed {
		query = `SELECT COALESCE(SUM(size_bytes), 0) FROM files WHERE owner_id = $1`
	}

	var used int64
	if err := tx.QueryRow(ctx, query, rec.OwnerID).Scan(&used); err != nil {
		return fmt.Errorf("failed to compute owner usage: %w", err)
	}

	if used+rec.SizeBytes > ceiling {
		return ErrQuotaExceeded
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO files (id, owner_id, name, size_bytes, folder_id, is_trashed, trashed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		rec.ID,
		rec.OwnerID,
		rec.Name,
		rec.SizeBytes,
		rec.FolderID,
		rec.IsTrashed,
		rec.TrashedAt,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateID
		}
		return fmt.Errorf("failed to insert file record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit admission: %w", err)
	}
	return nil
}

// GetByID retrieves a file record by its ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*FileRecord, error) {
	rec, err := scanFile(r.db.Pool.QueryRow(ctx,
		"SELECT "+fileColumns+" FROM files WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file record: %w", err)
	}
	return rec, nil
}

// ListByOwner returns the owner's records filtered by trashed state,
// newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string, trashed bool) ([]*FileRecord, error) {
	rows, err := r.db.Pool.Query(ctx,
		"SELECT "+fileColumns+` FROM files
		 WHERE owner_id = $1 AND is_trashed = $2
		 ORDER BY created_at DESC`, ownerID, trashed)
	if err != nil {
		return nil, fmt.Errorf("failed to query files by owner: %w", err)
	}
	defer rows.Close()

	var recs []*FileRecord
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Update applies a partial update (name, folder) and refreshes updated_at.
func (r *Repository) Update(ctx context.Context, id string, patch FilePatch) (*FileRecord, error) {
	set := "updated_at = NOW()"
	args := []any{id}
	if patch.Name != nil {
		args = append(args, *patch.Name)
		set += fmt.Sprintf(", name = $%d", len(args))
	}
	switch {
	case patch.MoveToRoot:
		set += ", folder_id = NULL"
	case patch.FolderID != nil:
		args = append(args, *patch.FolderID)
		set += fmt.Sprintf(", folder_id = $%d", len(args))
	}

	rec, err := scanFile(r.db.Pool.QueryRow(ctx,
		"UPDATE files SET "+set+" WHERE id = $1 RETURNING "+fileColumns, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to update file record: %w", err)
	}
	return rec, nil
}

// SetTrashed moves a record in or out of the trash. Repeating a transition
// the record is already in is a no-op that returns the current record
// without touching updated_at.
func (r *Repository) SetTrashed(ctx context.Context, id string, trashed bool) (*FileRecord, error) {
	rec, err := scanFile(r.db.Pool.QueryRow(ctx, `
		UPDATE files
		SET is_trashed = $2,
		    trashed_at = CASE WHEN $2 THEN NOW() ELSE NULL END,
		    updated_at = NOW()
		WHERE id = $1 AND is_trashed <> $2
		RETURNING `+fileColumns, id, trashed))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to set trashed state: %w", err)
	}
	// Either absent or already in the requested state.
	return r.GetByID(ctx, id)
}

// DeleteTrashed permanently removes a record, but only if it is trashed.
// Returns ErrFileActive when the record exists and is still active.
func (r *Repository) DeleteTrashed(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx,
		"DELETE FROM files WHERE id = $1 AND is_trashed = TRUE", id)
	if err != nil {
		return fmt.Errorf("failed to purge file record: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.Pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM files WHERE id = $1)", id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check file record: %w", err)
	}
	if exists {
		return ErrFileActive
	}
	return ErrFileNotFound
}

// Delete removes a file record unconditionally. Used to roll back an
// admission whose blob write failed.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, "DELETE FROM files WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFileNotFound
	}
	return nil
}

// SumOwnerSize returns the total bytes occupied by an owner's records.
func (r *Repository) SumOwnerSize(ctx context.Context, ownerID string, includeTrashed bool) (int64, error) {
	query := `SELECT COALESCE(SUM(size_bytes), 0) FROM files WHERE owner_id = $1 AND is_trashed = FALSE`
	if includeTrashed {
		query = `SELECT COALESCE(SUM(size_bytes), 0) FROM files WHERE owner_id = $1`
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, query, ownerID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum owner usage: %w", err)
	}
	return total, nil
}

// ListTrashedBefore returns records trashed earlier than cutoff.
// Used by the trash retention sweeper.
func (r *Repository) ListTrashedBefore(ctx context.Context, cutoff time.Time) ([]*FileRecord, error) {
	rows, err := r.db.Pool.Query(ctx,
		"SELECT "+fileColumns+` FROM files
		 WHERE is_trashed = TRUE AND trashed_at < $1`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired trash: %w", err)
	}
	defer rows.Close()

	var recs []*FileRecord
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trashed record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

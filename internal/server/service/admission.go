package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"zenvault/internal/server/database"
	"zenvault/internal/server/metrics"
	"zenvault/internal/server/storage"

	"github.com/google/uuid"
)

// AdmissionGate is the single entry point for uploads. It validates the
// request, checks the owner's quota, creates the metadata record and
// writes the bytes to the blob store. A rejected or failed upload never
// leaves a record behind.
type AdmissionGate struct {
	store       RecordStore
	quota       *Quota
	blobs       storage.Store
	maxFileSize int64
}

// NewAdmissionGate creates an upload admission gate.
func NewAdmissionGate(store RecordStore, quota *Quota, blobs storage.Store, maxFileSize int64) *AdmissionGate {
	return &AdmissionGate{
		store:       store,
		quota:       quota,
		blobs:       blobs,
		maxFileSize: maxFileSize,
	}
}

// AdmitUpload decides whether an upload may proceed and, if so, creates
// the FileRecord and stores the bytes.
//
// The early WouldExceed call is a fast-path rejection only; the
// authoritative check happens inside CreateIfUnderQuota, atomically
// with the insert, so concurrent uploads for one owner cannot jointly
// overshoot the ceiling.
func (g *AdmissionGate) AdmitUpload(ctx context.Context, ownerID, name string, sizeBytes int64, folderID *string, data io.Reader) (*database.FileRecord, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: empty owner id", ErrInvalidArgument)
	}
	if sizeBytes < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrInvalidArgument, sizeBytes)
	}
	if sizeBytes > g.maxFileSize {
		metrics.UploadsRejected.WithLabelValues("too_large").Inc()
		return nil, ErrFileTooLarge
	}

	exceeds, err := g.quota.WouldExceed(ctx, ownerID, sizeBytes)
	if err != nil {
		return nil, err
	}
	if exceeds {
		metrics.UploadsRejected.WithLabelValues("quota").Inc()
		return nil, ErrQuotaExceeded
	}

	now := time.Now().UTC()
	rec := &database.FileRecord{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      sanitizeFilename(name),
		SizeBytes: sizeBytes,
		FolderID:  folderID,
		IsTrashed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = g.store.CreateIfUnderQuota(ctx, rec, g.quota.Ceiling(), g.quota.CountsTrashed())
	if err != nil {
		switch {
		case errors.Is(err, database.ErrQuotaExceeded):
			metrics.UploadsRejected.WithLabelValues("quota").Inc()
			return nil, ErrQuotaExceeded
		case errors.Is(err, database.ErrDuplicateID):
			return nil, fmt.Errorf("%w: id collision on %s", ErrConflict, rec.ID)
		default:
			return nil, fmt.Errorf("failed to create file record: %w", err)
		}
	}

	written, err := g.blobs.Save(rec.ID, data)
	if err == nil && written != sizeBytes {
		err = fmt.Errorf("%w: declared %d bytes, received %d", ErrInvalidArgument, sizeBytes, written)
	}
	if err != nil {
		// Roll back the committed record so usage stays truthful.
		if delErr := g.store.Delete(ctx, rec.ID); delErr != nil {
			slog.Error("failed to roll back admission", "id", rec.ID, "error", delErr)
		}
		g.blobs.Delete(rec.ID)
		return nil, err
	}

	metrics.UploadsAdmitted.Inc()
	slog.Info("upload admitted",
		"id", rec.ID,
		"owner", ownerID,
		"name", rec.Name,
		"size_bytes", sizeBytes,
	)

	return rec, nil
}

// sanitizeFilename strips directory components and limits length.
func sanitizeFilename(name string) string {
	// Normalize Windows-style backslashes before calling filepath.Base,
	// which is platform-specific.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	if len(name) > 255 {
		ext := filepath.Ext(name)
		name = name[:255-len(ext)] + ext
	}

	if name == "" || name == "." || name == "/" {
		name = "untitled"
	}

	return name
}

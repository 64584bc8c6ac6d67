package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store defines the interface for blob storage backends.
// This allows swapping filesystem for S3 or other backends later.
type Store interface {
	Save(fileID string, data io.Reader) (int64, error)
	GetPath(fileID string) (string, error)
	Delete(fileID string) error
	EnsureDir() error
}

// FileSystemStore keeps file bytes on the local filesystem, one blob
// per record id.
type FileSystemStore struct {
	basePath string
}

// NewFileSystemStore creates a new filesystem storage backend.
func NewFileSystemStore(basePath string) *FileSystemStore {
	return &FileSystemStore{basePath: basePath}
}

// EnsureDir creates the storage directory if it doesn't exist.
func (fs *FileSystemStore) EnsureDir() error {
	if err := os.MkdirAll(fs.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", fs.basePath, err)
	}
	return nil
}

// Save writes data from a reader to the blob for fileID.
// Returns the number of bytes written.
func (fs *FileSystemStore) Save(fileID string, data io.Reader) (int64, error) {
	filePath := fs.blobPath(fileID)

	file, err := os.Create(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create blob %s: %w", filePath, err)
	}
	defer file.Close()

	n, err := io.Copy(file, data)
	if err != nil {
		// Clean up partial blob on error
		os.Remove(filePath)
		return 0, fmt.Errorf("failed to write blob: %w", err)
	}

	return n, nil
}

// GetPath returns the absolute path to a stored blob.
// Returns an error if the blob does not exist.
func (fs *FileSystemStore) GetPath(fileID string) (string, error) {
	filePath := fs.blobPath(fileID)

	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("blob not found for file %s", fileID)
		}
		return "", fmt.Errorf("failed to stat blob: %w", err)
	}

	return filePath, nil
}

// Delete removes the blob for a file. Deleting an absent blob is not
// an error.
func (fs *FileSystemStore) Delete(fileID string) error {
	filePath := fs.blobPath(fileID)
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", filePath, err)
	}
	return nil
}

func (fs *FileSystemStore) blobPath(fileID string) string {
	// Record ids are generated server-side, never user input, so they
	// are safe to join directly.
	return filepath.Join(fs.basePath, fileID)
}

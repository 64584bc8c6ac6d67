package database

import "time"

// FileRecord represents the metadata row for a stored file.
// OwnerID and SizeBytes are immutable after creation; the actual
// bytes live in the blob store, keyed by ID.
type FileRecord struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Name      string     `json:"name"`
	SizeBytes int64      `json:"size_bytes"`
	FolderID  *string    `json:"folder_id"` // nil means the root folder
	IsTrashed bool       `json:"is_trashed"`
	TrashedAt *time.Time `json:"trashed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FilePatch describes a partial update to a FileRecord. Nil fields are
// left untouched. MoveToRoot clears folder_id and takes precedence
// over FolderID.
type FilePatch struct {
	Name       *string
	FolderID   *string
	MoveToRoot bool
}

// Empty reports whether the patch would change nothing.
func (p FilePatch) Empty() bool {
	return p.Name == nil && p.FolderID == nil && !p.MoveToRoot
}

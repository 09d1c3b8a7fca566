package domain

import "time"

const (
	// DefaultFolderID is the reserved "uncategorized" folder. It always exists
	// and is never deleted.
	DefaultFolderID = "default"
	// DefaultFolderName is the display name given to the reserved folder.
	DefaultFolderName = "General"
)

// Folder groups links. Folders are ordered by PositionIndex.
type Folder struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	PositionIndex int       `json:"position_index"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewDefaultFolder returns the reserved folder every link store starts with.
func NewDefaultFolder(now time.Time) Folder {
	return Folder{
		ID:            DefaultFolderID,
		Name:          DefaultFolderName,
		PositionIndex: 0,
		CreatedAt:     now,
	}
}

// IsDefault reports whether f is the reserved folder.
func (f Folder) IsDefault() bool {
	return f.ID == DefaultFolderID
}

package domain

import "time"

// Link is a bookmarked URL. Every link belongs to exactly one folder.
type Link struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	ID       string `json:"id"`
	FolderID string `json:"folder_id"`

	// URL is always absolute; a missing scheme is defaulted to https.
	URL string `json:"url"`

	// ─────────────────────────────
	// User-provided
	// ─────────────────────────────

	Title      string `json:"title"`
	Note       string `json:"note,omitempty"`
	IsFavorite bool   `json:"is_favorite"`

	// ─────────────────────────────
	// Preview metadata (optional)
	// ─────────────────────────────

	Thumbnail   string `json:"thumbnail,omitempty"`
	Description string `json:"description,omitempty"`
	SiteName    string `json:"site_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// LinkInput carries the caller-supplied fields of a new link.
// ID and CreatedAt are always assigned by the store.
type LinkInput struct {
	FolderID    string
	URL         string
	Title       string
	Note        string
	IsFavorite  bool
	Thumbnail   string
	Description string
	SiteName    string
}

// LinkPatch is a partial update; nil fields are left untouched.
type LinkPatch struct {
	FolderID    *string
	URL         *string
	Title       *string
	Note        *string
	IsFavorite  *bool
	Thumbnail   *string
	Description *string
	SiteName    *string
}

// Apply merges the non-nil fields of p into l and returns the result.
func (p LinkPatch) Apply(l Link) Link {
	if p.FolderID != nil {
		l.FolderID = *p.FolderID
	}
	if p.URL != nil {
		l.URL = *p.URL
	}
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Note != nil {
		l.Note = *p.Note
	}
	if p.IsFavorite != nil {
		l.IsFavorite = *p.IsFavorite
	}
	if p.Thumbnail != nil {
		l.Thumbnail = *p.Thumbnail
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.SiteName != nil {
		l.SiteName = *p.SiteName
	}
	return l
}

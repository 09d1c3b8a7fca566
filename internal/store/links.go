package store

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/yodda/internal/domain"
)

// LinkState is the persisted shape of the link store.
type LinkState struct {
	Folders []domain.Folder `json:"folders"`
	Links   []domain.Link   `json:"links"`
}

// LinkQuery filters SearchLinks. Zero values disable a filter.
type LinkQuery struct {
	FolderID      string
	FavoritesOnly bool
	Text          string
}

// LinkStore owns folders and links.
// Links are kept newest first; folders in caller-defined order.
type LinkStore struct {
	mu        sync.RWMutex
	state     LinkState
	listeners listeners[LinkState]
	now       func() time.Time
}

// NewLinkStore creates a store holding only the default folder.
func NewLinkStore() *LinkStore {
	s := &LinkStore{now: time.Now}
	s.state = s.defaultState()
	return s
}

func (s *LinkStore) defaultState() LinkState {
	return LinkState{
		Folders: []domain.Folder{domain.NewDefaultFolder(s.now())},
		Links:   []domain.Link{},
	}
}

// Snapshot returns a copy of the current state.
func (s *LinkStore) Snapshot() LinkState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *LinkStore) copyLocked() LinkState {
	return LinkState{
		Folders: slices.Clone(s.state.Folders),
		Links:   slices.Clone(s.state.Links),
	}
}

// Restore replaces the whole state without notifying subscribers.
// A state missing the default folder gets it back at position 0.
func (s *LinkStore) Restore(state LinkState) {
	if state.Links == nil {
		state.Links = []domain.Link{}
	}
	if !slices.ContainsFunc(state.Folders, domain.Folder.IsDefault) {
		state.Folders = append([]domain.Folder{domain.NewDefaultFolder(s.now())}, state.Folders...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = LinkState{
		Folders: slices.Clone(state.Folders),
		Links:   slices.Clone(state.Links),
	}
}

// Reset brings the store back to its default state.
func (s *LinkStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.defaultState()
	s.listeners.notify(s.copyLocked())
}

// Subscribe registers fn to receive a snapshot after every mutation.
// fn runs while the store is locked and must not call back into it.
func (s *LinkStore) Subscribe(fn func(LinkState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.add(fn)
}

// commitLocked installs the new collections and notifies subscribers.
func (s *LinkStore) commitLocked(folders []domain.Folder, links []domain.Link) {
	s.state = LinkState{Folders: folders, Links: links}
	s.listeners.notify(s.copyLocked())
}

// ─────────────────────────────────────────────────────────────────
// Folders
// ─────────────────────────────────────────────────────────────────

// AddFolder appends a folder positioned after the existing ones and returns its id.
func (s *LinkStore) AddFolder(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := domain.Folder{
		ID:            uuid.NewString(),
		Name:          name,
		PositionIndex: len(s.state.Folders),
		CreatedAt:     s.now(),
	}
	folders := append(slices.Clone(s.state.Folders), f)
	s.commitLocked(folders, s.state.Links)
	return f.ID
}

// UpdateFolder renames a folder. Unknown ids are ignored.
func (s *LinkStore) UpdateFolder(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.state.Folders, func(f domain.Folder) bool { return f.ID == id })
	if i < 0 {
		return
	}
	folders := slices.Clone(s.state.Folders)
	folders[i].Name = name
	s.commitLocked(folders, s.state.Links)
}

// DeleteFolder removes a folder and every link inside it.
// Refusing the default folder is up to the caller.
func (s *LinkStore) DeleteFolder(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folders := slices.DeleteFunc(slices.Clone(s.state.Folders), func(f domain.Folder) bool { return f.ID == id })
	links := slices.DeleteFunc(slices.Clone(s.state.Links), func(l domain.Link) bool { return l.FolderID == id })
	s.commitLocked(folders, links)
}

// ReorderFolders replaces the folder collection, keeping the given order.
func (s *LinkStore) ReorderFolders(folders []domain.Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(slices.Clone(folders), s.state.Links)
}

// Folder returns the folder with the given id.
func (s *LinkStore) Folder(id string) (domain.Folder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.state.Folders, func(f domain.Folder) bool { return f.ID == id })
	if i < 0 {
		return domain.Folder{}, false
	}
	return s.state.Folders[i], true
}

// FolderByName returns the first folder whose name matches, ignoring case.
func (s *LinkStore) FolderByName(name string) (domain.Folder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.state.Folders {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return domain.Folder{}, false
}

// LinkCount returns how many links live in a folder.
func (s *LinkStore) LinkCount(folderID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, l := range s.state.Links {
		if l.FolderID == folderID {
			n++
		}
	}
	return n
}

// ─────────────────────────────────────────────────────────────────
// Links
// ─────────────────────────────────────────────────────────────────

// AddLink stores a new link in front of the others. The URL is normalized
// when possible and kept verbatim otherwise.
func (s *LinkStore) AddLink(in domain.LinkInput) domain.Link {
	l := domain.Link{
		ID:          uuid.NewString(),
		FolderID:    in.FolderID,
		URL:         normalize(in.URL),
		Title:       in.Title,
		Note:        in.Note,
		IsFavorite:  in.IsFavorite,
		Thumbnail:   in.Thumbnail,
		Description: in.Description,
		SiteName:    in.SiteName,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l.CreatedAt = s.now()
	links := make([]domain.Link, 0, len(s.state.Links)+1)
	links = append(links, l)
	links = append(links, s.state.Links...)
	s.commitLocked(s.state.Folders, links)
	return l
}

// UpdateLink merges patch into the link with the given id.
// It returns the updated link, or false when the id is unknown.
func (s *LinkStore) UpdateLink(id string, patch domain.LinkPatch) (domain.Link, bool) {
	if patch.URL != nil {
		u := normalize(*patch.URL)
		patch.URL = &u
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.state.Links, func(l domain.Link) bool { return l.ID == id })
	if i < 0 {
		return domain.Link{}, false
	}
	links := slices.Clone(s.state.Links)
	links[i] = patch.Apply(links[i])
	s.commitLocked(s.state.Folders, links)
	return links[i], true
}

// DeleteLink removes a link by id.
func (s *LinkStore) DeleteLink(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	links := slices.DeleteFunc(slices.Clone(s.state.Links), func(l domain.Link) bool { return l.ID == id })
	s.commitLocked(s.state.Folders, links)
}

// Link returns the link with the given id.
func (s *LinkStore) Link(id string) (domain.Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.state.Links, func(l domain.Link) bool { return l.ID == id })
	if i < 0 {
		return domain.Link{}, false
	}
	return s.state.Links[i], true
}

// HasURL reports whether a link with the given (normalized) URL exists.
func (s *LinkStore) HasURL(raw string) bool {
	u := normalize(raw)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.state.Links, func(l domain.Link) bool { return l.URL == u })
}

// SearchLinks filters the links by folder and favorite flag, then ranks them
// by q.Text when it is set. Without text the newest-first order is kept.
func (s *LinkStore) SearchLinks(q LinkQuery) []domain.Link {
	s.mu.RLock()
	links := slices.Clone(s.state.Links)
	s.mu.RUnlock()

	filtered := make([]domain.Link, 0, len(links))
	for _, l := range links {
		if q.FolderID != "" && l.FolderID != q.FolderID {
			continue
		}
		if q.FavoritesOnly && !l.IsFavorite {
			continue
		}
		filtered = append(filtered, l)
	}

	if strings.TrimSpace(q.Text) == "" {
		return filtered
	}

	ranked := domain.RankLinks(q.Text, filtered)
	out := make([]domain.Link, len(ranked))
	for i, c := range ranked {
		out[i] = c.Link
	}
	return out
}

func normalize(raw string) string {
	if u, err := domain.NormalizeURL(raw); err == nil {
		return u
	}
	return raw
}

// Package store holds the application state containers. Each container owns
// one collection, hands out copies through Snapshot and notifies subscribers
// after every mutation so a repository binding can persist it.
package store

import (
	"context"
	"errors"
)

// Storage keys, one JSON document per store.
const (
	KeyLinks    = "link-storage"
	KeySubs     = "sub-storage"
	KeyLanguage = "language-storage"
	KeyTheme    = "theme-storage"
	KeyProfile  = "user-profile-storage"
)

var (
	// ErrNotFound is returned by a Repository when no document exists for a key.
	ErrNotFound = errors.New("document not found")

	// ErrDefaultFolder is returned by callers refusing to delete the reserved folder.
	ErrDefaultFolder = errors.New("the default folder cannot be deleted")
)

// Repository persists raw state documents under fixed keys.
type Repository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// listeners is a list of snapshot subscribers. It is guarded by the owning
// store's mutex.
type listeners[T any] struct {
	fns []func(T)
}

func (l *listeners[T]) add(fn func(T)) {
	l.fns = append(l.fns, fn)
}

func (l *listeners[T]) notify(snapshot T) {
	for _, fn := range l.fns {
		fn(snapshot)
	}
}

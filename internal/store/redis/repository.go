package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/yodda/internal/store"
)

// Repository stores state documents as plain Redis strings without expiry.
type Repository struct {
	client *redis.Client
	prefix string
}

// NewRepository creates a Redis-backed repository. An empty prefix falls
// back to DefaultKeyPrefix.
func NewRepository(client *redis.Client, prefix string) *Repository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repository{
		client: client,
		prefix: prefix,
	}
}

// Load returns the raw document for key, or store.ErrNotFound.
func (r *Repository) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, DocumentKey(r.prefix, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

// Save overwrites the document for key.
func (r *Repository) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, DocumentKey(r.prefix, key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

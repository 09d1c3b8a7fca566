package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/yodda/internal/store"
)

func TestDocumentKey(t *testing.T) {
	if got := DocumentKey("yodda:", store.KeyLinks); got != "yodda:link-storage" {
		t.Errorf("DocumentKey() = %q", got)
	}
}

func TestNewRepositoryDefaultPrefix(t *testing.T) {
	r := NewRepository(nil, "")
	if r.prefix != DefaultKeyPrefix {
		t.Errorf("prefix = %q, want %q", r.prefix, DefaultKeyPrefix)
	}
}

func TestRepositoryUnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer func() { _ = client.Close() }()

	r := NewRepository(client, "test:")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := r.Load(ctx, store.KeyLinks)
	if err == nil {
		t.Fatal("Load() against an unreachable server should fail")
	}
	if errors.Is(err, store.ErrNotFound) {
		t.Error("connection errors must not look like a missing document")
	}
	if err := r.Save(ctx, store.KeyLinks, []byte("{}")); err == nil {
		t.Error("Save() against an unreachable server should fail")
	}
}

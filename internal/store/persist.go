package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/yodda/internal/logger"
)

// DefaultSaveTimeout bounds a single background save.
const DefaultSaveTimeout = 5 * time.Second

// Persistable is a state container a Binding can hydrate and observe.
type Persistable[T any] interface {
	Snapshot() T
	Restore(T)
	Subscribe(func(T))
}

// document is the stored envelope, one per key.
type document[T any] struct {
	State   T   `json:"state"`
	Version int `json:"version"`
}

// Binding connects one store to one repository key. Every mutation of the
// store queues its snapshot; a background worker writes the latest queued
// snapshot. Saves never block or fail the mutation that caused them.
type Binding[T any] struct {
	repo   Repository
	key    string
	logger logger.Logger

	mu      sync.Mutex
	pending *T
	wake    chan struct{}
	idle    *sync.Cond
	saving  bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Bind hydrates s from repo (keeping the default state when the document is
// missing or unreadable) and starts persisting every later mutation.
func Bind[T any](ctx context.Context, repo Repository, key string, s Persistable[T], log logger.Logger) *Binding[T] {
	b := &Binding[T]{
		repo:   repo,
		key:    key,
		logger: log,
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	b.idle = sync.NewCond(&b.mu)

	b.hydrate(ctx, s)
	s.Subscribe(b.enqueue)

	go b.run()
	return b
}

func (b *Binding[T]) hydrate(ctx context.Context, s Persistable[T]) {
	data, err := b.repo.Load(ctx, b.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			b.logger.Info("no stored state, starting fresh", logger.String("key", b.key))
		} else {
			b.logger.Warn("failed to load stored state, starting fresh",
				logger.String("key", b.key),
				logger.Error(err))
		}
		return
	}

	state, err := decode[T](data)
	if err != nil {
		b.logger.Warn("stored state is malformed, starting fresh",
			logger.String("key", b.key),
			logger.Error(err))
		return
	}

	s.Restore(state)
	b.logger.Debug("state restored", logger.String("key", b.key))
}

// enqueue runs under the store lock; it only records the snapshot.
func (b *Binding[T]) enqueue(snapshot T) {
	b.mu.Lock()
	b.pending = &snapshot
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Binding[T]) run() {
	defer close(b.doneCh)
	for {
		select {
		case <-b.wake:
			b.saveLatest()
		case <-b.stopCh:
			b.saveLatest()
			return
		}
	}
}

func (b *Binding[T]) saveLatest() {
	b.mu.Lock()
	snapshot := b.pending
	b.pending = nil
	b.saving = snapshot != nil
	b.mu.Unlock()

	if snapshot != nil {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultSaveTimeout)
		if err := b.save(ctx, *snapshot); err != nil {
			b.logger.Warn("failed to persist state",
				logger.String("key", b.key),
				logger.Error(err))
		}
		cancel()
	}

	b.mu.Lock()
	b.saving = false
	b.idle.Broadcast()
	b.mu.Unlock()
}

func (b *Binding[T]) save(ctx context.Context, state T) error {
	data, err := encode(state)
	if err != nil {
		return err
	}
	if err := b.repo.Save(ctx, b.key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", b.key, err)
	}
	return nil
}

// Flush blocks until every queued snapshot has been written.
func (b *Binding[T]) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.pending != nil || b.saving {
		select {
		case <-b.doneCh:
			return
		default:
		}
		b.idle.Wait()
	}
}

// Close writes any queued snapshot and stops the worker.
func (b *Binding[T]) Close() {
	select {
	case <-b.stopCh:
	default:
		close(b.stopCh)
	}
	<-b.doneCh
}

func encode[T any](state T) ([]byte, error) {
	data, err := json.Marshal(document[T]{State: state})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return data, nil
}

func decode[T any](data []byte) (T, error) {
	var doc document[T]
	if err := json.Unmarshal(data, &doc); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return doc.State, nil
}

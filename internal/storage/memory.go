package storage

import (
	"context"
	"sync/atomic"

	"github.com/yndnr/redif-go/pkg/cmap"
)

// MemoryEngine keeps every key in a sharded in-process map.
type MemoryEngine struct {
	items  *cmap.Map[[]byte]
	closed atomic.Bool
}

// NewMemoryEngine creates an empty MemoryEngine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{items: cmap.New[[]byte]()}
}

// Get returns a copy of the value stored under key.
func (e *MemoryEngine) Get(_ context.Context, key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	v, ok := e.items.Get(string(key))
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value.
func (e *MemoryEngine) Set(_ context.Context, key, value []byte) error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.items.Set(string(key), append([]byte{}, value...))
	return nil
}

// Delete removes key.
func (e *MemoryEngine) Delete(_ context.Context, key []byte) (bool, error) {
	if e.closed.Load() {
		return false, ErrClosed
	}
	return e.items.Delete(string(key)), nil
}

// Has reports whether key exists.
func (e *MemoryEngine) Has(_ context.Context, key []byte) (bool, error) {
	if e.closed.Load() {
		return false, ErrClosed
	}
	return e.items.Has(string(key)), nil
}

// Count returns the number of keys.
func (e *MemoryEngine) Count(_ context.Context) (int, error) {
	if e.closed.Load() {
		return 0, ErrClosed
	}
	return e.items.Count(), nil
}

// Close drops every key.
func (e *MemoryEngine) Close() error {
	if e.closed.CompareAndSwap(false, true) {
		e.items.Clear()
	}
	return nil
}

// Package flags stores durable shown-once markers: streak milestone
// celebrations and the Monday recap, keyed per user and day so a
// re-render within the same day never re-shows them.
package flags

import (
	"context"
	"sync"
)

// Store marks events as shown at most once per key.
type Store interface {
	// MarkShown records the key and reports whether this call was the
	// first to do so. A second call for the same key returns false.
	MarkShown(ctx context.Context, key string) (first bool, err error)
}

// Memory is an in-process Store for tests and single-node runs.
type Memory struct {
	mu    sync.Mutex
	shown map[string]struct{}
}

// NewMemory constructs an empty in-process store.
func NewMemory() *Memory {
	return &Memory{shown: make(map[string]struct{})}
}

// MarkShown records the key in process memory.
func (m *Memory) MarkShown(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shown[key]; ok {
		return false, nil
	}
	m.shown[key] = struct{}{}
	return true, nil
}

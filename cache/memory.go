// Package cache provides Cache backends for the style compiler: an unbounded
// in-memory map, a size-bounded LRU and a SQLite table that survives
// restarts. All of them treat Invalidate's argument as a key prefix.
package cache

import (
	"context"
	"strings"
	"sync"
)

// Memory is an unbounded map-backed cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemory returns an empty Memory cache.
func NewMemory() *Memory {
	return &Memory{entries: map[string]string{}}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	css, ok := m.entries[key]
	return css, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, css string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = css
	return nil
}

func (m *Memory) Invalidate(ctx context.Context, keyOrPrefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, keyOrPrefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

// Len reports the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

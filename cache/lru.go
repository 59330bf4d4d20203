package cache

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU keeps at most size compiled stylesheets, evicting the least recently
// used.
type LRU struct {
	entries *lru.Cache[string, string]
}

// NewLRU builds an LRU cache holding up to size entries.
func NewLRU(size int) (*LRU, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache: lru size must be positive, got %d", size)
	}
	entries, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &LRU{entries: entries}, nil
}

func (l *LRU) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	css, ok := l.entries.Get(key)
	return css, ok, nil
}

func (l *LRU) Set(ctx context.Context, key, css string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.entries.Add(key, css)
	return nil
}

func (l *LRU) Invalidate(ctx context.Context, keyOrPrefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, key := range l.entries.Keys() {
		if strings.HasPrefix(key, keyOrPrefix) {
			l.entries.Remove(key)
		}
	}
	return nil
}

// Len reports the number of stored entries.
func (l *LRU) Len() int {
	return l.entries.Len()
}

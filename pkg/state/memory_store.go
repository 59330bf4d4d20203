package state

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and examples. It keys records by
// Ref.Identifier() and stamps every save with a fresh ETag.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[string]memoryRecord[T]
	clone   func(T) T
	now     func() time.Time
}

type memoryRecord[T any] struct {
	snapshot T
	meta     Meta
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption[T any] func(*MemoryStore[T])

// WithSnapshotClone detaches snapshots on load and save.
func WithSnapshotClone[T any](clone func(T) T) MemoryStoreOption[T] {
	return func(s *MemoryStore[T]) {
		s.clone = clone
	}
}

// WithClock overrides the time source used for Meta.UpdatedAt.
func WithClock[T any](now func() time.Time) MemoryStoreOption[T] {
	return func(s *MemoryStore[T]) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore[T any](opts ...MemoryStoreOption[T]) *MemoryStore[T] {
	s := &MemoryStore[T]{
		records: map[string]memoryRecord[T]{},
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStore[T]) Load(ctx context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, Meta{}, false, err
	}
	key, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return zero, Meta{}, false, nil
	}
	return s.detach(record.snapshot), cloneMeta(record.meta), true, nil
}

// Save stores snapshot. A caller-supplied ETag is replaced: the store owns
// ETags so concurrent writers observe each other's saves.
func (s *MemoryStore[T]) Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	if err := ctx.Err(); err != nil {
		return Meta{}, err
	}
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	meta = cloneMeta(meta)
	meta.ETag = uuid.NewString()
	if meta.SnapshotID == "" {
		meta.SnapshotID = meta.ETag
	}
	meta.UpdatedAt = s.now().UTC()

	s.mu.Lock()
	s.records[key] = memoryRecord[T]{snapshot: s.detach(snapshot), meta: meta}
	s.mu.Unlock()
	return cloneMeta(meta), nil
}

// Len reports the number of stored snapshots.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Refs lists the stored references ordered by identifier.
func (s *MemoryStore[T]) Refs() []Ref {
	s.mu.RLock()
	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	refs := make([]Ref, 0, len(keys))
	for _, key := range keys {
		// Keys were produced by Identifier, so they always parse.
		if ref, err := ParseRef(key); err == nil {
			refs = append(refs, ref)
		}
	}
	return refs
}

func (s *MemoryStore[T]) detach(snapshot T) T {
	if s.clone == nil {
		return snapshot
	}
	return s.clone(snapshot)
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}

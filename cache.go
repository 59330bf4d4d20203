package styles

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Cache memoises compiled CSS by content-derived key. Implementations must
// publish each Set atomically (readers never observe a partial value) and
// resolve concurrent writers last-writer-wins. Invalidate removes every key
// starting with keyOrPrefix, which covers both a full key and a scope prefix.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, css string) error
	Invalidate(ctx context.Context, keyOrPrefix string) error
}

// KeyInput lists everything that influences compiled output.
type KeyInput struct {
	ScopeID         string
	Settings        Settings
	RegistryVersion string
	Breakpoints     string
	Mode            Mode
}

// CacheKey derives a deterministic key: the escaped scope id, a slash, then a hash of
// the scope id, canonical settings JSON, registry version, breakpoint
// fingerprint and output mode. Keys of one scope share the "scopeID/" prefix.
func CacheKey(in KeyInput) (string, error) {
	settings := in.Settings
	if settings == nil {
		settings = Settings{}
	}
	// encoding/json sorts map keys, which makes the payload canonical.
	payload, err := json.Marshal(settings)
	if err != nil {
		return "", err
	}
	digest := xxhash.New()
	for _, part := range [][]byte{
		[]byte(in.ScopeID),
		payload,
		[]byte(in.RegistryVersion),
		[]byte(in.Breakpoints),
		[]byte(in.Mode),
	} {
		_, _ = digest.Write(part)
		_, _ = digest.Write([]byte{0})
	}
	return ScopePrefix(in.ScopeID) + strconv.FormatUint(digest.Sum64(), 16), nil
}

// ScopePrefix returns the key prefix shared by every entry of scopeID. The id
// is path-escaped so a "/" inside it cannot extend another scope's prefix.
func ScopePrefix(scopeID string) string {
	return url.PathEscape(strings.TrimSpace(scopeID)) + "/"
}

// guardedCache wraps a backend so failures degrade to recomputation: errors
// are logged as CacheErrors and never reach the caller.
type guardedCache struct {
	backend Cache
	log     *zap.Logger
}

func newGuardedCache(backend Cache, log *zap.Logger) *guardedCache {
	if backend == nil {
		return nil
	}
	return &guardedCache{backend: backend, log: log.Named("cache")}
}

func (g *guardedCache) get(ctx context.Context, key string) (string, bool) {
	if g == nil || key == "" {
		return "", false
	}
	css, ok, err := g.backend.Get(ctx, key)
	if err != nil {
		g.log.Warn("Cache read failed, recomputing", zap.Error(&CacheError{Op: "get", Key: key, Err: err}))
		return "", false
	}
	return css, ok
}

func (g *guardedCache) set(ctx context.Context, key, css string) {
	if g == nil || key == "" {
		return
	}
	if err := g.backend.Set(ctx, key, css); err != nil {
		g.log.Warn("Cache write failed", zap.Error(&CacheError{Op: "set", Key: key, Err: err}))
	}
}

func (g *guardedCache) invalidate(ctx context.Context, keyOrPrefix string) error {
	if g == nil {
		return nil
	}
	if err := g.backend.Invalidate(ctx, keyOrPrefix); err != nil {
		return &CacheError{Op: "invalidate", Key: keyOrPrefix, Err: err}
	}
	return nil
}

package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	styles "github.com/goliatone/go-styles"
	"github.com/goliatone/go-styles/layering"
)

var ErrETagMismatch = errors.New("state: etag mismatch")

// Ref identifies one persisted settings snapshot: the layer it belongs to and
// the widget type (registry name) it configures.
type Ref struct {
	Domain string
	Layer  layering.Ref
}

// Meta is storage-owned metadata used for provenance and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one snapshot for a single reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

// Mutator edits a snapshot in place.
type Mutator[T any] func(*T) error

// Identifier returns the deterministic storage key "<level>/<id>/<domain>".
func (r Ref) Identifier() (string, error) {
	if strings.TrimSpace(r.Domain) == "" {
		return "", fmt.Errorf("state: domain is required")
	}
	if r.Layer.Level == layering.LevelUnknown {
		return "", fmt.Errorf("state: unsupported layer level for %q", r.Layer.ID)
	}
	if strings.TrimSpace(r.Layer.ID) == "" {
		return "", fmt.Errorf("state: %s layer id is required", r.Layer.Level)
	}
	return fmt.Sprintf("%s/%s", r.Layer.Identifier(), r.Domain), nil
}

// ParseRef reverses Ref.Identifier. Layer ids may contain slashes; the domain
// may not.
func ParseRef(identifier string) (Ref, error) {
	level, rest, ok := strings.Cut(identifier, "/")
	slash := strings.LastIndex(rest, "/")
	if !ok || slash < 0 {
		return Ref{}, fmt.Errorf("state: malformed identifier %q", identifier)
	}
	ref := Ref{
		Domain: rest[slash+1:],
		Layer:  layering.Ref{Level: layering.ParseLevel(level), ID: rest[:slash]},
	}
	if _, err := ref.Identifier(); err != nil {
		return Ref{}, fmt.Errorf("state: malformed identifier %q: %w", identifier, err)
	}
	return ref, nil
}

// Resolver loads settings snapshots and stacks them for compilation.
type Resolver struct {
	Store Store[styles.Settings]
	// Validate, when set, runs on every mutated snapshot before it is saved.
	Validate func(styles.Settings) error
}

// Stack loads the snapshot of every layer and returns them as a LayerStack.
// Layers without a stored snapshot are skipped; an empty stack is valid and
// compiles to field defaults.
func (r Resolver) Stack(ctx context.Context, domain string, layers ...layering.Ref) (*styles.LayerStack, error) {
	if r.Store == nil {
		return nil, fmt.Errorf("state: store is required")
	}
	if domain == "" {
		return nil, fmt.Errorf("state: domain is required")
	}

	out := make([]styles.Layer, 0, len(layers))
	for _, layer := range layers {
		snapshot, meta, ok, err := r.Store.Load(ctx, Ref{Domain: domain, Layer: layer})
		if err != nil {
			return nil, fmt.Errorf("state: load %q for %s: %w", domain, layer.Identifier(), err)
		}
		if !ok {
			continue
		}
		out = append(out, styles.NewLayer(layer, snapshot, styles.WithSnapshotID(meta.SnapshotID)))
	}

	stack, err := styles.NewLayerStack(out...)
	if err != nil {
		return nil, fmt.Errorf("state: stack: %w", err)
	}
	return stack, nil
}

// Mutate loads one snapshot, applies fn, validates, then saves. A non-empty
// meta.ETag must match the stored ETag.
func (r Resolver) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator[styles.Settings]) (styles.Settings, Meta, error) {
	if r.Store == nil {
		return nil, Meta{}, fmt.Errorf("state: store is required")
	}
	if _, err := ref.Identifier(); err != nil {
		return nil, Meta{}, err
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("state: mutator is required")
	}

	snapshot, loadedMeta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("state: load %q for %s: %w", ref.Domain, ref.Layer.Identifier(), err)
	}
	if !ok {
		snapshot = styles.Settings{}
		loadedMeta = Meta{}
	}
	snapshot = snapshot.Clone()
	if snapshot == nil {
		snapshot = styles.Settings{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return nil, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	if err := fn(&snapshot); err != nil {
		return nil, loadedMeta, err
	}
	if r.Validate != nil {
		if err := r.Validate(snapshot); err != nil {
			return nil, loadedMeta, err
		}
	}

	saveMeta := mergeMeta(loadedMeta, meta)
	saveMeta.SnapshotID = meta.SnapshotID
	savedMeta, err := r.Store.Save(ctx, ref, snapshot, saveMeta)
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("state: save %q for %s: %w", ref.Domain, ref.Layer.Identifier(), err)
	}
	return snapshot, savedMeta, nil
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}

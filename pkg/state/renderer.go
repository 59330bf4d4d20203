package state

import (
	"context"
	"fmt"

	styles "github.com/goliatone/go-styles"
	"github.com/goliatone/go-styles/layering"
)

// Rendered is the outcome of rendering one widget.
type Rendered struct {
	CSS string
	// ETag is the compiler cache key; it changes whenever any input that
	// influences the CSS changes.
	ETag        string
	NotModified bool
	Result      styles.Result
}

// Renderer compiles widgets from stored settings layers.
type Renderer struct {
	Resolver Resolver
	Compiler *styles.Compiler
}

// RenderRequest names the widget to render and the layers above it.
type RenderRequest struct {
	ScopeID string
	// Kit and Page are optional layer ids; the widget layer id is ScopeID.
	Kit  string
	Page string
	Mode styles.Mode
	// IfNoneMatch short-circuits compilation when it equals the current ETag.
	IfNoneMatch string
}

// Render loads the widget's layers and compiles them.
func (r Renderer) Render(ctx context.Context, req RenderRequest) (Rendered, error) {
	if r.Compiler == nil {
		return Rendered{}, fmt.Errorf("state: compiler is required")
	}
	if req.ScopeID == "" {
		return Rendered{}, styles.ErrScopeIDRequired
	}
	stack, err := r.Resolver.Stack(ctx, r.Compiler.Registry().Name(), layerRefs(req)...)
	if err != nil {
		return Rendered{}, err
	}
	compileReq := styles.Request{ScopeID: req.ScopeID, Layers: stack, Mode: req.Mode}

	etag, err := r.Compiler.Key(compileReq)
	if err != nil {
		return Rendered{}, err
	}
	if req.IfNoneMatch != "" && req.IfNoneMatch == etag {
		return Rendered{ETag: etag, NotModified: true}, nil
	}

	result, err := r.Compiler.Compile(ctx, compileReq)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{CSS: result.CSS, ETag: result.Key, Result: result}, nil
}

// SaveWidget mutates the widget layer of scopeID and drops its cached CSS.
func (r Renderer) SaveWidget(ctx context.Context, scopeID string, meta Meta, fn Mutator[styles.Settings]) (Meta, error) {
	if r.Compiler == nil {
		return Meta{}, fmt.Errorf("state: compiler is required")
	}
	ref := Ref{
		Domain: r.Compiler.Registry().Name(),
		Layer:  layering.Ref{Level: layering.LevelWidget, ID: scopeID},
	}
	_, saved, err := r.Resolver.Mutate(ctx, ref, meta, fn)
	if err != nil {
		return saved, err
	}
	if err := r.Compiler.InvalidateScope(ctx, scopeID); err != nil {
		return saved, err
	}
	return saved, nil
}

func layerRefs(req RenderRequest) []layering.Ref {
	refs := make([]layering.Ref, 0, 3)
	if req.Kit != "" {
		refs = append(refs, layering.Ref{Level: layering.LevelKit, ID: req.Kit})
	}
	if req.Page != "" {
		refs = append(refs, layering.Ref{Level: layering.LevelPage, ID: req.Page})
	}
	return append(refs, layering.Ref{Level: layering.LevelWidget, ID: req.ScopeID})
}

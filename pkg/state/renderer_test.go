package state

import (
	"context"
	"testing"

	styles "github.com/goliatone/go-styles"
	"github.com/goliatone/go-styles/layering"
)

func newRenderer(t *testing.T) (Renderer, *MemoryStore[styles.Settings]) {
	t.Helper()
	reg := styles.NewRegistry(styles.WithRegistryName("button"))
	reg.MustRegisterField(nil, styles.FieldDefinition{
		ID:      "background_color",
		Type:    styles.FieldColor,
		Default: "#3B82F6",
		Selectors: []styles.SelectorRule{
			{Selector: "{{WRAPPER}} .btn", Property: "background-color: {{VALUE}};"},
		},
	})
	compiler, err := styles.NewCompiler(reg, styles.WithCache(newMapCache()))
	if err != nil {
		t.Fatalf("new compiler: %v", err)
	}
	store := NewMemoryStore(WithSnapshotClone(styles.Settings.Clone))
	return Renderer{Resolver: Resolver{Store: store}, Compiler: compiler}, store
}

func TestRendererRenderUsesLayers(t *testing.T) {
	renderer, store := newRenderer(t)
	seed(t, store, Ref{Domain: "button", Layer: layering.Ref{Level: layering.LevelPage, ID: "home"}},
		styles.Settings{"background_color": "#111111"}, "")

	ctx := context.Background()
	out, err := renderer.Render(ctx, RenderRequest{ScopeID: "w1", Page: "home"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "#w1 .btn {\n  background-color: #111111;\n}\n"; out.CSS != want {
		t.Fatalf("css mismatch:\n got: %q\nwant: %q", out.CSS, want)
	}
	if out.ETag == "" || out.NotModified {
		t.Fatalf("unexpected render metadata: %+v", out)
	}

	// Without the page layer the default applies.
	plain, err := renderer.Render(ctx, RenderRequest{ScopeID: "w1"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if want := "#w1 .btn {\n  background-color: #3B82F6;\n}\n"; plain.CSS != want {
		t.Fatalf("css mismatch:\n got: %q\nwant: %q", plain.CSS, want)
	}
	if plain.ETag == out.ETag {
		t.Fatalf("etag must change with settings")
	}
}

func TestRendererIfNoneMatch(t *testing.T) {
	renderer, _ := newRenderer(t)
	ctx := context.Background()

	first, err := renderer.Render(ctx, RenderRequest{ScopeID: "w1"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	again, err := renderer.Render(ctx, RenderRequest{ScopeID: "w1", IfNoneMatch: first.ETag})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !again.NotModified || again.CSS != "" || again.ETag != first.ETag {
		t.Fatalf("expected not-modified response, got %+v", again)
	}

	compact, err := renderer.Render(ctx, RenderRequest{ScopeID: "w1", Mode: styles.ModeCompact, IfNoneMatch: first.ETag})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if compact.NotModified {
		t.Fatalf("mode change must produce a new etag")
	}
}

func TestRendererSaveWidgetInvalidatesScope(t *testing.T) {
	renderer, _ := newRenderer(t)
	ctx := context.Background()

	before, err := renderer.Render(ctx, RenderRequest{ScopeID: "w1"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := renderer.Render(ctx, RenderRequest{ScopeID: "w1"}); err != nil {
		t.Fatalf("render: %v", err)
	}

	if _, err := renderer.SaveWidget(ctx, "w1", Meta{}, func(s *styles.Settings) error {
		(*s)["background_color"] = "#ABCDEF"
		return nil
	}); err != nil {
		t.Fatalf("save widget: %v", err)
	}

	after, err := renderer.Render(ctx, RenderRequest{ScopeID: "w1"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if after.Result.CacheHit {
		t.Fatalf("expected fresh compilation after save")
	}
	if after.ETag == before.ETag {
		t.Fatalf("etag must change after save")
	}
	if want := "#w1 .btn {\n  background-color: #ABCDEF;\n}\n"; after.CSS != want {
		t.Fatalf("css mismatch:\n got: %q\nwant: %q", after.CSS, want)
	}
}

func TestRendererRequiresScope(t *testing.T) {
	renderer, _ := newRenderer(t)
	if _, err := renderer.Render(context.Background(), RenderRequest{}); err == nil {
		t.Fatalf("expected error for missing scope id")
	}
	if _, err := (Renderer{}).Render(context.Background(), RenderRequest{ScopeID: "w1"}); err == nil {
		t.Fatalf("expected error for missing compiler")
	}
}

type mapCache struct {
	entries map[string]string
}

func newMapCache() *mapCache { return &mapCache{entries: map[string]string{}} }

func (m *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	css, ok := m.entries[key]
	return css, ok, nil
}

func (m *mapCache) Set(_ context.Context, key, css string) error {
	m.entries[key] = css
	return nil
}

func (m *mapCache) Invalidate(_ context.Context, prefix string) error {
	for key := range m.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(m.entries, key)
		}
	}
	return nil
}

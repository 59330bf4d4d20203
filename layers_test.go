package styles

import (
	"errors"
	"testing"

	"github.com/goliatone/go-styles/layering"
	"github.com/google/go-cmp/cmp"
)

func TestLayerStackMergeAndProvenance(t *testing.T) {
	stack, err := NewLayerStack(
		KitLayer("brand", Settings{"style": map[string]any{"bg": "#0f0", "fg": "#111"}}, WithLayerLabel("Brand kit")),
		WidgetLayer("w1", Settings{"style": map[string]any{"bg": "#f00"}}, WithSnapshotID("snap-1")),
	)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}

	merged := stack.Merge()
	want := Settings{"style": map[string]any{"bg": "#f00", "fg": "#111"}}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}

	if source, ok := stack.Source("style", "fg"); !ok || source != "kit/brand" {
		t.Fatalf("expected kit source for fg, got %q", source)
	}
	provenance := stack.Provenance("style", "bg")
	wantProvenance := []Provenance{
		{Layer: "widget/w1", SnapshotID: "snap-1", Path: "style.bg", Value: "#f00", Found: true},
		{Layer: "kit/brand", Label: "Brand kit", Path: "style.bg", Value: "#0f0", Found: true},
	}
	if diff := cmp.Diff(wantProvenance, provenance); diff != "" {
		t.Fatalf("provenance mismatch (-want +got):\n%s", diff)
	}
}

func TestLayerStackValidation(t *testing.T) {
	if _, err := NewLayerStack(NewLayer(layering.Ref{ID: "x"}, nil)); !errors.Is(err, ErrLayerLevelRequired) {
		t.Fatalf("expected ErrLayerLevelRequired, got %v", err)
	}
	if _, err := NewLayerStack(PageLayer("home", nil), PageLayer("home", nil)); !errors.Is(err, ErrDuplicateLayer) {
		t.Fatalf("expected ErrDuplicateLayer, got %v", err)
	}
}

func TestLayerStackDetachesInput(t *testing.T) {
	settings := Settings{"bg": "#000"}
	stack, err := NewLayerStack(WidgetLayer("w1", settings))
	if err != nil {
		t.Fatalf("stack: %v", err)
	}
	settings["bg"] = "#fff"
	if stack.Merge()["bg"] != "#000" {
		t.Fatalf("expected stack to keep its own copy")
	}
}

func TestResolveLayersResponsiveSources(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegisterField(nil, FieldDefinition{
		ID:         "size",
		Type:       FieldScalar,
		Responsive: true,
		Selectors:  []SelectorRule{{Selector: "{{WRAPPER}}", Property: "font-size: {{VALUE}}px;"}},
	})
	stack, err := NewLayerStack(
		PageLayer("home", Settings{"size": map[string]any{"desktop": 18, "mobile": 14}}),
		WidgetLayer("w1", Settings{"size": map[string]any{"mobile": 12}}),
	)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}

	field, _ := ResolveLayers(reg, DefaultBreakpoints(), stack).Field("size")
	sources := map[string]string{}
	for _, entry := range field.Values {
		sources[entry.Breakpoint] = entry.Source
	}
	want := map[string]string{"desktop": "page/home", "tablet": "", "mobile": "widget/w1"}
	if diff := cmp.Diff(want, sources); diff != "" {
		t.Fatalf("sources mismatch (-want +got):\n%s", diff)
	}
}

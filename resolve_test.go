package styles

import (
	"testing"
)

func TestResolveSubmittedBeatsDefault(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegisterField([]string{"style"}, FieldDefinition{
		ID:        "bg",
		Type:      FieldColor,
		Default:   "#000",
		Selectors: []SelectorRule{{Selector: "{{WRAPPER}}", Property: "background: {{VALUE}};"}},
	})

	resolved := Resolve(reg, DefaultBreakpoints(), Settings{"style": map[string]any{"bg": "#fff"}})
	field, ok := resolved.Field("bg")
	if !ok {
		t.Fatalf("expected bg resolved")
	}
	value, ok := field.Value("desktop")
	if !ok || value.String() != "#fff" || field.Values[0].Source != SourceSettings {
		t.Fatalf("unexpected value %v (%+v)", value, field.Values)
	}

	fallback := Resolve(reg, DefaultBreakpoints(), Settings{"style": map[string]any{"bg": "  "}})
	field, _ = fallback.Field("bg")
	if field.Values[0].Source != SourceDefault {
		t.Fatalf("expected blank submission to fall back to default, got %+v", field.Values[0])
	}
}

func TestResolveResponsivePerBreakpoint(t *testing.T) {
	def := FieldDefinition{
		ID:         "size",
		Type:       FieldScalar,
		Responsive: true,
		Default:    map[string]any{"desktop": 16, "mobile": 12},
		Selectors:  []SelectorRule{{Selector: "{{WRAPPER}}", Property: "font-size: {{VALUE}}px;"}},
	}
	field := ResolveField(def, nil, DefaultBreakpoints(), Settings{"size": map[string]any{"tablet": 14}})

	if len(field.Values) != 3 {
		t.Fatalf("expected one entry per breakpoint, got %d", len(field.Values))
	}
	expect := map[string]struct {
		value  string
		source string
	}{
		"desktop": {"16", SourceDefault},
		"tablet":  {"14", SourceSettings},
		"mobile":  {"12", SourceDefault},
	}
	for _, entry := range field.Values {
		want := expect[entry.Breakpoint]
		if entry.Value == nil || entry.Value.String() != want.value || entry.Source != want.source {
			t.Fatalf("breakpoint %s: got %+v want %+v", entry.Breakpoint, entry, want)
		}
	}
}

func TestResolvePlainValueOnlyAppliesUnconditionally(t *testing.T) {
	def := FieldDefinition{
		ID:         "size",
		Type:       FieldScalar,
		Responsive: true,
		Selectors:  []SelectorRule{{Selector: "{{WRAPPER}}", Property: "width: {{VALUE}}px;"}},
	}
	field := ResolveField(def, nil, DefaultBreakpoints(), Settings{"size": 100})
	if _, ok := field.Value("desktop"); !ok {
		t.Fatalf("expected desktop value")
	}
	for _, bp := range []string{"tablet", "mobile"} {
		if _, ok := field.Value(bp); ok {
			t.Fatalf("expected %s to stay unset", bp)
		}
	}
}

func TestResolveSkipsAndErrors(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegisterField(nil, FieldDefinition{ID: "note", Type: FieldSelect})
	reg.MustRegisterField(nil, FieldDefinition{
		ID:        "bg",
		Type:      FieldColor,
		Selectors: []SelectorRule{{Selector: "{{WRAPPER}}", Property: "background: {{VALUE}};"}},
	})
	reg.MustRegisterField(nil, FieldDefinition{
		ID:        "fg",
		Type:      FieldColor,
		Selectors: []SelectorRule{{Selector: "{{WRAPPER}}", Property: "color: {{VALUE}};"}},
	})

	resolved := Resolve(reg, DefaultBreakpoints(), Settings{"fg": "tomato-ish"})

	note, _ := resolved.Field("note")
	bg, _ := resolved.Field("bg")
	fg, _ := resolved.Field("fg")
	if note.Skip != SkipDecorative || bg.Skip != SkipNoValue {
		t.Fatalf("unexpected skips: note=%q bg=%q", note.Skip, bg.Skip)
	}
	if fg.Skipped() || fg.Values[0].Skip != SkipInvalidValue {
		t.Fatalf("expected breakpoint-level invalid skip, got %+v", fg)
	}
	errs := resolved.Errors()
	if len(errs) != 1 || errs[0].FieldID != "fg" || errs[0].Breakpoint != "desktop" {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestResolvedSnapshot(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegisterField(nil, FieldDefinition{ID: "on", Type: FieldToggle, Default: true, Selectors: []SelectorRule{{Selector: "{{WRAPPER}}", Property: "display: block;"}}})
	reg.MustRegisterField(nil, FieldDefinition{ID: "missing", Type: FieldColor, Selectors: []SelectorRule{{Selector: "{{WRAPPER}}", Property: "color: {{VALUE}};"}}})

	snapshot := Resolve(reg, DefaultBreakpoints(), nil).Snapshot()
	if snapshot["on"] != true {
		t.Fatalf("expected on=true, got %v", snapshot["on"])
	}
	if value, ok := snapshot["missing"]; !ok || value != nil {
		t.Fatalf("expected missing=nil, got %v (%v)", value, ok)
	}
}

func TestSettingsCloneIsDeep(t *testing.T) {
	original := Settings{"style": map[string]any{"bg": "#000"}}
	cloned := original.Clone()
	cloned["style"].(map[string]any)["bg"] = "#fff"
	if original["style"].(map[string]any)["bg"] != "#000" {
		t.Fatalf("expected clone to be detached")
	}
}

func TestResolveEmptyObjectIsUnset(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegisterField(nil, paddingField())
	reg.MustRegisterField(nil, FieldDefinition{
		ID:         "gap",
		Type:       FieldScalar,
		Responsive: true,
		Default:    map[string]any{"desktop": 8},
		Selectors:  []SelectorRule{{Selector: "{{WRAPPER}}", Property: "gap: {{VALUE}}px;"}},
	})

	resolved := Resolve(reg, DefaultBreakpoints(), Settings{
		"padding": map[string]any{},
		"gap":     map[string]any{"desktop": map[string]any{}},
	})
	if errs := resolved.Errors(); len(errs) != 0 {
		t.Fatalf("expected cleared fields to resolve without errors, got %v", errs)
	}
	padding, _ := resolved.Field("padding")
	if padding.Skip != SkipNoValue {
		t.Fatalf("expected cleared padding to be unset, got %q", padding.Skip)
	}
	gap, _ := resolved.Field("gap")
	if value, ok := gap.Value("desktop"); !ok || value.String() != "8" || gap.Values[0].Source != SourceDefault {
		t.Fatalf("expected cleared breakpoint to fall back to default, got %+v", gap.Values)
	}
}

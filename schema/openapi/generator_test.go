package openapi

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	styles "github.com/goliatone/go-styles"
)

func buttonRegistry(t *testing.T) *styles.Registry {
	t.Helper()
	reg := styles.NewRegistry(styles.WithRegistryName("button"))
	reg.MustRegisterField(nil, styles.FieldDefinition{
		ID:      "background_color",
		Type:    styles.FieldColor,
		Label:   "Background",
		Default: "#3B82F6",
		Selectors: []styles.SelectorRule{
			{Selector: "{{WRAPPER}} .btn", Property: "background-color: {{VALUE}};"},
		},
	})
	if err := reg.RegisterGroup(nil, "layout", "Layout"); err != nil {
		t.Fatalf("register group: %v", err)
	}
	reg.MustRegisterField([]string{"layout"}, styles.FieldDefinition{
		ID:         "padding",
		Type:       styles.FieldDimension,
		Unit:       "px",
		Responsive: true,
		Selectors: []styles.SelectorRule{
			{Selector: "{{WRAPPER}}", Property: "padding: {{VALUE.TOP}}{{UNIT}} {{VALUE.RIGHT}}{{UNIT}} {{VALUE.BOTTOM}}{{UNIT}} {{VALUE.LEFT}}{{UNIT}};"},
		},
	})
	reg.MustRegisterField(nil, styles.FieldDefinition{
		ID:      "style",
		Type:    styles.FieldSelect,
		Options: []string{"solid", "outline"},
		Default: "solid",
	})
	reg.MustRegisterField(nil, styles.FieldDefinition{
		ID:   "rounded",
		Type: styles.FieldToggle,
		Selectors: []styles.SelectorRule{
			{Selector: "{{WRAPPER}} .btn", Property: "border-radius: 8px;"},
		},
	})
	reg.MustRegisterField(nil, styles.FieldDefinition{
		ID:        "font_size",
		Type:      styles.FieldScalar,
		Unit:      "px",
		Condition: `style == "outline"`,
		Selectors: []styles.SelectorRule{
			{Selector: "{{WRAPPER}} .btn", Property: "font-size: {{VALUE}}{{UNIT}};"},
		},
	})
	return reg
}

func desktopTablet() styles.BreakpointTable {
	return styles.MustBreakpointTable(
		styles.Breakpoint{Name: "desktop"},
		styles.Breakpoint{Name: "tablet", MediaQuery: "@media (max-width: 1024px)"},
	)
}

func settingsSchema(t *testing.T, document map[string]any) map[string]any {
	t.Helper()
	paths := document["paths"].(map[string]any)
	item := paths["/settings"].(map[string]any)
	operation := item["put"].(map[string]any)
	body := operation["requestBody"].(map[string]any)
	content := body["content"].(map[string]any)
	media := content["application/json"].(map[string]any)
	return media["schema"].(map[string]any)
}

func TestGenerateDocumentShape(t *testing.T) {
	document, err := NewGenerator().Generate(buttonRegistry(t), desktopTablet())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if document["openapi"] != "3.0.3" {
		t.Fatalf("openapi version = %v", document["openapi"])
	}
	info := document["info"].(map[string]any)
	if info["title"] != "button style settings" {
		t.Fatalf("title = %v", info["title"])
	}

	schema := settingsSchema(t, document)
	props := schema["properties"].(map[string]any)
	var names []string
	for name := range props {
		names = append(names, name)
	}
	want := map[string]bool{"background_color": true, "layout": true, "style": true, "rounded": true, "font_size": true}
	if len(names) != len(want) {
		t.Fatalf("unexpected properties: %v", names)
	}
	for _, name := range names {
		if !want[name] {
			t.Fatalf("unexpected property %q", name)
		}
	}

	color := props["background_color"].(map[string]any)
	wantColor := map[string]any{
		"type":         "string",
		"pattern":      colorPattern,
		"description":  "Background",
		"default":      "#3B82F6",
		"x-style-type": "color",
	}
	if diff := cmp.Diff(wantColor, color); diff != "" {
		t.Fatalf("color schema mismatch (-want +got):\n%s", diff)
	}

	layout := props["layout"].(map[string]any)
	if layout["description"] != "Layout" {
		t.Fatalf("group description = %v", layout["description"])
	}
	padding := layout["properties"].(map[string]any)["padding"].(map[string]any)
	if padding["x-style-responsive"] != true || padding["x-style-unit"] != "px" {
		t.Fatalf("padding extensions missing: %v", padding)
	}
	variants := padding["anyOf"].([]any)
	if len(variants) != 2 {
		t.Fatalf("responsive field variants = %d, want 2", len(variants))
	}
	perBreakpoint := variants[1].(map[string]any)
	bps := perBreakpoint["properties"].(map[string]any)
	if _, ok := bps["desktop"]; !ok {
		t.Fatalf("missing desktop breakpoint in %v", bps)
	}
	if _, ok := bps["tablet"]; !ok {
		t.Fatalf("missing tablet breakpoint in %v", bps)
	}
	if perBreakpoint["additionalProperties"] != false {
		t.Fatalf("breakpoint map must be closed")
	}

	style := props["style"].(map[string]any)
	if diff := cmp.Diff([]any{"solid", "outline"}, style["enum"]); diff != "" {
		t.Fatalf("select enum mismatch (-want +got):\n%s", diff)
	}
	if style["x-style-decorative"] != true {
		t.Fatalf("select without selectors must be flagged decorative")
	}
	if props["font_size"].(map[string]any)["x-style-condition"] != `style == "outline"` {
		t.Fatalf("condition extension missing")
	}
}

func TestGenerateOptions(t *testing.T) {
	gen := NewGenerator(
		WithInfo("Buttons", "2.1.0", "Button widget settings"),
		WithOperation("/widgets/button/settings", "POST", "saveButton"),
		WithOperationSummary("Save button settings"),
		WithResponse("200", "Compiled"),
		WithOpenAPIVersion("3.0.1"),
	)
	document, err := gen.Generate(buttonRegistry(t), styles.BreakpointTable{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	info := document["info"].(map[string]any)
	if info["title"] != "Buttons" || info["version"] != "2.1.0" || info["description"] != "Button widget settings" {
		t.Fatalf("unexpected info: %v", info)
	}
	paths := document["paths"].(map[string]any)
	item, ok := paths["/widgets/button/settings"].(map[string]any)
	if !ok {
		t.Fatalf("custom path missing: %v", paths)
	}
	operation := item["post"].(map[string]any)
	if operation["operationId"] != "saveButton" || operation["summary"] != "Save button settings" {
		t.Fatalf("unexpected operation: %v", operation)
	}
	responses := operation["responses"].(map[string]any)
	if _, ok := responses["200"]; !ok {
		t.Fatalf("custom response missing: %v", responses)
	}
}

func TestGenerateRequiresRegistry(t *testing.T) {
	if _, err := NewGenerator().Generate(nil, styles.BreakpointTable{}); !errors.Is(err, styles.ErrRegistryRequired) {
		t.Fatalf("expected ErrRegistryRequired, got %v", err)
	}
}

func TestGenerateRejectsRelativePath(t *testing.T) {
	_, err := NewGenerator(WithOperation("settings", "", "")).Generate(buttonRegistry(t), desktopTablet())
	if err == nil {
		t.Fatalf("expected error for relative path")
	}
}

func TestGenerateJSONLoadsInValidator(t *testing.T) {
	raw, err := NewGenerator().GenerateJSON(buttonRegistry(t), desktopTablet())
	if err != nil {
		t.Fatalf("generate json: %v", err)
	}
	if len(raw) == 0 || raw[0] != '{' {
		t.Fatalf("expected a JSON object, got %q", raw)
	}
	if _, err := NewValidator(context.Background(), buttonRegistry(t), desktopTablet()); err != nil {
		t.Fatalf("generated document must load and validate: %v", err)
	}
}

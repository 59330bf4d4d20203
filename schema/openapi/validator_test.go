package openapi

import (
	"context"
	"errors"
	"testing"

	styles "github.com/goliatone/go-styles"
)

func TestValidatorAcceptsValidPayloads(t *testing.T) {
	validator, err := NewValidator(context.Background(), buttonRegistry(t), desktopTablet())
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	if validator.Document() == nil {
		t.Fatalf("expected loaded document")
	}

	tests := []struct {
		name     string
		settings styles.Settings
	}{
		{name: "empty", settings: styles.Settings{}},
		{name: "nil", settings: nil},
		{name: "color", settings: styles.Settings{"background_color": "#fff"}},
		{name: "rgba color", settings: styles.Settings{"background_color": "rgba(0, 0, 0, 0.5)"}},
		{name: "plain dimension", settings: styles.Settings{
			"layout": map[string]any{"padding": map[string]any{"top": 1, "right": 2, "bottom": 3, "left": "4"}},
		}},
		{name: "responsive dimension", settings: styles.Settings{
			"layout": map[string]any{"padding": map[string]any{
				"desktop": map[string]any{"top": 20, "right": 20, "bottom": 20, "left": 20},
				"tablet":  map[string]any{"top": 15, "right": 15, "bottom": 15, "left": 15},
			}},
		}},
		{name: "toggle string", settings: styles.Settings{"rounded": "yes"}},
		{name: "toggle bool", settings: styles.Settings{"rounded": false}},
		{name: "select", settings: styles.Settings{"style": "outline"}},
		{name: "scalar number", settings: styles.Settings{"font_size": 14}},
		{name: "scalar with unit", settings: styles.Settings{"font_size": "1.5em"}},
		{name: "scalar object", settings: styles.Settings{"font_size": map[string]any{"size": 12, "unit": "rem"}}},
		{name: "unknown key allowed", settings: styles.Settings{"extra": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validator.Validate(tt.settings); err != nil {
				t.Fatalf("validate: %v", err)
			}
		})
	}
}

func TestValidatorRejectsInvalidPayloads(t *testing.T) {
	validator, err := NewValidator(context.Background(), buttonRegistry(t), desktopTablet())
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	tests := []struct {
		name     string
		settings styles.Settings
	}{
		{name: "color not a color", settings: styles.Settings{"background_color": "not-a-color"}},
		{name: "color wrong type", settings: styles.Settings{"background_color": 12}},
		{name: "dimension missing side", settings: styles.Settings{
			"layout": map[string]any{"padding": map[string]any{"top": 1, "right": 2, "bottom": 3}},
		}},
		{name: "unknown breakpoint", settings: styles.Settings{
			"layout": map[string]any{"padding": map[string]any{
				"watch": map[string]any{"top": 1, "right": 1, "bottom": 1, "left": 1},
			}},
		}},
		{name: "select outside options", settings: styles.Settings{"style": "ghost"}},
		{name: "toggle garbage", settings: styles.Settings{"rounded": "maybe"}},
		{name: "scalar garbage", settings: styles.Settings{"font_size": "big"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.settings)
			if !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}

func TestValidatorStrictKeys(t *testing.T) {
	validator, err := NewValidator(context.Background(), buttonRegistry(t), desktopTablet(), WithStrictKeys())
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	if err := validator.Validate(styles.Settings{"style": "solid"}); err != nil {
		t.Fatalf("declared key rejected: %v", err)
	}
	if err := validator.Validate(styles.Settings{"extra": true}); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("expected undeclared key to fail, got %v", err)
	}
	if err := validator.Validate(styles.Settings{"layout": map[string]any{"margin": 1}}); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("expected undeclared nested key to fail, got %v", err)
	}
}

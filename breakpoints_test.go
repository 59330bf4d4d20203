package styles

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewBreakpointTableOrdersUnconditionalFirst(t *testing.T) {
	table, err := NewBreakpointTable(
		Breakpoint{Name: "tablet", MediaQuery: "@media  (max-width: 1024px)", MaxWidth: 1024},
		Breakpoint{Name: "desktop"},
		Breakpoint{Name: "mobile", MediaQuery: "(max-width: 767px)", MaxWidth: 767},
	)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}

	want := []Breakpoint{
		{Name: "desktop"},
		{Name: "tablet", MediaQuery: "(max-width: 1024px)", MaxWidth: 1024},
		{Name: "mobile", MediaQuery: "(max-width: 767px)", MaxWidth: 767},
	}
	if diff := cmp.Diff(want, table.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if table.Unconditional().Name != "desktop" {
		t.Fatalf("expected desktop unconditional, got %q", table.Unconditional().Name)
	}
	if !table.Has("mobile") || table.Has("watch") {
		t.Fatalf("unexpected Has results")
	}
	if bp, ok := table.Lookup("tablet"); !ok || bp.MaxWidth != 1024 {
		t.Fatalf("unexpected lookup: %+v %v", bp, ok)
	}
}

func TestNewBreakpointTableRejectsMalformedTables(t *testing.T) {
	cases := map[string][]Breakpoint{
		"empty":          nil,
		"missing name":   {{Name: ""}},
		"duplicate":      {{Name: "desktop"}, {Name: "desktop", MediaQuery: "(max-width: 10px)"}},
		"two unconditional": {
			{Name: "desktop"},
			{Name: "wide"},
		},
		"no unconditional": {{Name: "tablet", MediaQuery: "(max-width: 1024px)"}},
		"ascending widths": {
			{Name: "desktop"},
			{Name: "mobile", MediaQuery: "(max-width: 767px)", MaxWidth: 767},
			{Name: "tablet", MediaQuery: "(max-width: 1024px)", MaxWidth: 1024},
		},
		"ascending queries": {
			{Name: "desktop"},
			{Name: "mobile", MediaQuery: "(max-width: 767px)"},
			{Name: "tablet", MediaQuery: "(max-width: 1024px)"},
		},
		"query narrower than explicit width": {
			{Name: "desktop"},
			{Name: "mobile", MediaQuery: "(max-width: 767px)", MaxWidth: 767},
			{Name: "tablet", MediaQuery: "screen and (max-width:1024px)"},
		},
	}
	for name, entries := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewBreakpointTable(entries...)
			if !errors.Is(err, ErrInvalidBreakpoints) {
				t.Fatalf("expected ErrInvalidBreakpoints, got %v", err)
			}
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %T", err)
			}
		})
	}
}

func TestBreakpointFingerprint(t *testing.T) {
	a := DefaultBreakpoints()
	b := DefaultBreakpoints()
	if a.Fingerprint() == "" || a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("expected stable fingerprint, got %q vs %q", a.Fingerprint(), b.Fingerprint())
	}
	other := MustBreakpointTable(
		Breakpoint{Name: "desktop"},
		Breakpoint{Name: "tablet", MediaQuery: "(max-width: 900px)", MaxWidth: 900},
	)
	if other.Fingerprint() == a.Fingerprint() {
		t.Fatalf("expected different tables to fingerprint differently")
	}
}

func TestMustBreakpointTablePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustBreakpointTable()
}

package layering

import (
	"fmt"
	"slices"
)

// Level identifies the precedence of a settings layer. Higher levels override
// lower levels when layering.
type Level int

const (
	// LevelUnknown guards against misconfiguration so call sites can detect
	// missing metadata.
	LevelUnknown Level = iota
	// LevelKit represents site-wide global styles (the weakest layer).
	LevelKit
	// LevelPage represents page-level overrides.
	LevelPage
	// LevelWidget represents the settings of one widget instance.
	LevelWidget
)

func (l Level) String() string {
	switch l {
	case LevelKit:
		return "kit"
	case LevelPage:
		return "page"
	case LevelWidget:
		return "widget"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string representation into the corresponding Level.
// Returns LevelUnknown for unrecognised values.
func ParseLevel(value string) Level {
	switch value {
	case "kit", "KIT", "global":
		return LevelKit
	case "page", "PAGE":
		return LevelPage
	case "widget", "WIDGET":
		return LevelWidget
	default:
		return LevelUnknown
	}
}

// Ref names a settings snapshot within a layering chain.
type Ref struct {
	Level Level
	ID    string // kit, page or widget identifier
}

// Identifier returns a stable slug usable as a deterministic storage key
// (e.g. "page/home").
func (r Ref) Identifier() string {
	return fmt.Sprintf("%s/%s", r.Level, r.ID)
}

// Chain describes the ordered layering sequence from strongest to weakest.
type Chain struct {
	ordered []Ref
}

// NewChain constructs a chain and deduplicates refs using their Identifier.
// The resulting order places stronger levels before weaker ones while keeping
// relative ordering for peers.
func NewChain(refs ...Ref) Chain {
	filtered := make([]Ref, 0, len(refs))
	seen := map[string]struct{}{}

	for _, ref := range refs {
		if ref.Level == LevelUnknown {
			continue
		}
		id := ref.Identifier()
		if _, exists := seen[id]; exists {
			continue
		}
		seen[id] = struct{}{}
		filtered = append(filtered, ref)
	}

	slices.SortStableFunc(filtered, func(a, b Ref) int {
		if a.Level == b.Level {
			return 0
		}
		if a.Level > b.Level {
			return -1
		}
		return 1
	})

	return Chain{ordered: filtered}
}

// Ordered returns the layering sequence from strongest (index 0) to weakest.
func (c Chain) Ordered() []Ref {
	out := make([]Ref, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Strongest returns the first ref in the chain (zero ref if empty).
func (c Chain) Strongest() Ref {
	if len(c.ordered) == 0 {
		return Ref{}
	}
	return c.ordered[0]
}

// Weakest returns the final ref in the chain (zero ref if empty).
func (c Chain) Weakest() Ref {
	if len(c.ordered) == 0 {
		return Ref{}
	}
	return c.ordered[len(c.ordered)-1]
}

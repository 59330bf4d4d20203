package styles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Breakpoint is a named responsive tier. The unconditional tier has an empty
// MediaQuery. MaxWidth orders the conditional tiers (widest first) and is
// informational for the unconditional one.
type Breakpoint struct {
	Name       string `json:"name" yaml:"name" toml:"name"`
	MediaQuery string `json:"media_query,omitempty" yaml:"media_query,omitempty" toml:"media_query,omitempty"`
	MaxWidth   int    `json:"max_width,omitempty" yaml:"max_width,omitempty" toml:"max_width,omitempty"`
}

// Unconditional reports whether the breakpoint renders outside any media block.
func (b Breakpoint) Unconditional() bool {
	return strings.TrimSpace(b.MediaQuery) == ""
}

// BreakpointTable is an immutable, validated, ordered list of breakpoints. The
// zero value is not usable; build tables with NewBreakpointTable.
type BreakpointTable struct {
	entries     []Breakpoint
	index       map[string]int
	fingerprint string
}

// NewBreakpointTable validates entries and returns a table ordered with the
// unconditional breakpoint first, followed by the conditional ones in the
// supplied order. Conditional entries must be supplied in strictly descending
// width order. An entry without MaxWidth is ordered by the max-width of its
// media query when the query states one in px.
func NewBreakpointTable(entries ...Breakpoint) (BreakpointTable, error) {
	if len(entries) == 0 {
		return BreakpointTable{}, &SchemaError{Err: fmt.Errorf("%w: at least one breakpoint is required", ErrInvalidBreakpoints)}
	}

	table := BreakpointTable{
		entries: make([]Breakpoint, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	var unconditional *Breakpoint
	conditional := make([]Breakpoint, 0, len(entries)-1)
	seen := map[string]struct{}{}
	for _, entry := range entries {
		entry.Name = strings.TrimSpace(entry.Name)
		entry.MediaQuery = normalizeMediaQuery(entry.MediaQuery)
		if entry.Name == "" {
			return BreakpointTable{}, &SchemaError{Err: fmt.Errorf("%w: breakpoint name must be provided", ErrInvalidBreakpoints)}
		}
		if _, dup := seen[entry.Name]; dup {
			return BreakpointTable{}, &SchemaError{Err: fmt.Errorf("%w: duplicate breakpoint %q", ErrInvalidBreakpoints, entry.Name)}
		}
		seen[entry.Name] = struct{}{}
		if entry.Unconditional() {
			if unconditional != nil {
				return BreakpointTable{}, &SchemaError{Err: fmt.Errorf("%w: breakpoints %q and %q both lack a media query", ErrInvalidBreakpoints, unconditional.Name, entry.Name)}
			}
			e := entry
			unconditional = &e
			continue
		}
		conditional = append(conditional, entry)
	}
	if unconditional == nil {
		return BreakpointTable{}, &SchemaError{Err: fmt.Errorf("%w: exactly one breakpoint must have an empty media query", ErrInvalidBreakpoints)}
	}
	for i := 1; i < len(conditional); i++ {
		prev, cur := conditional[i-1], conditional[i]
		prevWidth, curWidth := prev.width(), cur.width()
		if prevWidth > 0 && curWidth > 0 && curWidth >= prevWidth {
			return BreakpointTable{}, &SchemaError{Err: fmt.Errorf("%w: %q (%d) must be narrower than %q (%d)", ErrInvalidBreakpoints, cur.Name, curWidth, prev.Name, prevWidth)}
		}
	}

	table.entries = append(table.entries, *unconditional)
	table.entries = append(table.entries, conditional...)
	digest := xxhash.New()
	for i, entry := range table.entries {
		table.index[entry.Name] = i
		_, _ = digest.WriteString(entry.Name + "\x00" + entry.MediaQuery + "\x00" + strconv.Itoa(entry.MaxWidth) + "\x01")
	}
	table.fingerprint = strconv.FormatUint(digest.Sum64(), 16)
	return table, nil
}

// MustBreakpointTable is NewBreakpointTable for static configuration; it
// panics on error.
func MustBreakpointTable(entries ...Breakpoint) BreakpointTable {
	table, err := NewBreakpointTable(entries...)
	if err != nil {
		panic(err)
	}
	return table
}

// DefaultBreakpoints returns the conventional desktop/tablet/mobile table.
func DefaultBreakpoints() BreakpointTable {
	return MustBreakpointTable(
		Breakpoint{Name: "desktop"},
		Breakpoint{Name: "tablet", MediaQuery: "(max-width: 1024px)", MaxWidth: 1024},
		Breakpoint{Name: "mobile", MediaQuery: "(max-width: 767px)", MaxWidth: 767},
	)
}

// Entries returns the breakpoints in processing order.
func (t BreakpointTable) Entries() []Breakpoint {
	return append([]Breakpoint(nil), t.entries...)
}

// Len returns the number of breakpoints.
func (t BreakpointTable) Len() int {
	return len(t.entries)
}

// IsZero reports whether the table was never built.
func (t BreakpointTable) IsZero() bool {
	return len(t.entries) == 0
}

// Unconditional returns the breakpoint rendered outside media blocks.
func (t BreakpointTable) Unconditional() Breakpoint {
	if len(t.entries) == 0 {
		return Breakpoint{}
	}
	return t.entries[0]
}

// Lookup returns the breakpoint called name.
func (t BreakpointTable) Lookup(name string) (Breakpoint, bool) {
	i, ok := t.index[name]
	if !ok {
		return Breakpoint{}, false
	}
	return t.entries[i], true
}

// Has reports whether name is a breakpoint in the table.
func (t BreakpointTable) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Fingerprint returns a stable digest of the table, used in cache keys.
func (t BreakpointTable) Fingerprint() string {
	return t.fingerprint
}

// width returns MaxWidth, or the px max-width stated in the media query.
func (b Breakpoint) width() int {
	if b.MaxWidth > 0 {
		return b.MaxWidth
	}
	return queryMaxWidth(b.MediaQuery)
}

// queryMaxWidth returns the first "max-width: <n>px" feature in query, or 0.
func queryMaxWidth(query string) int {
	lexer := css.NewLexer(parse.NewInputString(query))
	const (
		seekFeature = iota
		seekColon
		seekValue
	)
	state := seekFeature
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return 0
		case css.WhitespaceToken, css.CommentToken:
			continue
		}
		switch state {
		case seekFeature:
			if tt == css.IdentToken && strings.EqualFold(string(data), "max-width") {
				state = seekColon
			}
		case seekColon:
			state = seekFeature
			if tt == css.ColonToken {
				state = seekValue
			}
		case seekValue:
			state = seekFeature
			if tt != css.DimensionToken {
				continue
			}
			number := strings.ToLower(string(data))
			if !strings.HasSuffix(number, "px") {
				continue
			}
			width, err := strconv.ParseFloat(strings.TrimSuffix(number, "px"), 64)
			if err == nil && width > 0 {
				return int(width)
			}
		}
	}
}

func normalizeMediaQuery(query string) string {
	query = strings.TrimSpace(query)
	if len(query) >= len("@media") && strings.EqualFold(query[:len("@media")], "@media") {
		query = strings.TrimSpace(query[len("@media"):])
	}
	return strings.Join(strings.Fields(query), " ")
}

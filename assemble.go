package styles

// DeclarationSet collects substituted declarations per breakpoint, keeping the
// order they were added in.
type DeclarationSet struct {
	byBreakpoint map[string][]*Rule
	count        int
}

// NewDeclarationSet returns an empty set.
func NewDeclarationSet() *DeclarationSet {
	return &DeclarationSet{byBreakpoint: map[string][]*Rule{}}
}

// Add records declarations for selector at breakpoint. Empty selectors and
// empty declaration lists are ignored.
func (s *DeclarationSet) Add(breakpoint, selector string, declarations ...Declaration) {
	if selector == "" || len(declarations) == 0 {
		return
	}
	if s.byBreakpoint == nil {
		s.byBreakpoint = map[string][]*Rule{}
	}
	s.byBreakpoint[breakpoint] = append(s.byBreakpoint[breakpoint], &Rule{
		Selector:     selector,
		Declarations: append([]Declaration(nil), declarations...),
	})
	s.count += len(declarations)
}

// Len returns the total number of declarations recorded.
func (s *DeclarationSet) Len() int {
	if s == nil {
		return 0
	}
	return s.count
}

// Breakpoint returns the rules recorded for breakpoint, in insertion order.
func (s *DeclarationSet) Breakpoint(name string) []*Rule {
	if s == nil {
		return nil
	}
	return s.byBreakpoint[name]
}

// Assemble groups declarations into a stylesheet. Unconditional rules come
// first and unwrapped; each other breakpoint follows in table order inside an
// @media block. Breakpoints without declarations produce no block. Consecutive
// rules that share a selector within one breakpoint are merged. Breakpoints absent from the table are ignored.
func Assemble(set *DeclarationSet, table BreakpointTable) *Stylesheet {
	sheet := &Stylesheet{}
	if set == nil || table.IsZero() {
		return sheet
	}
	for i, bp := range table.entries {
		rules := mergeRules(set.byBreakpoint[bp.Name])
		if len(rules) == 0 {
			continue
		}
		if i == 0 {
			for _, rule := range rules {
				sheet.Items = append(sheet.Items, rule)
			}
			continue
		}
		sheet.Items = append(sheet.Items, MediaBlock(bp.MediaQuery, rules...))
	}
	return sheet
}

// mergeRules folds runs of consecutive rules that share a selector. Rules are
// never moved past a different selector, so later fields keep winning the
// cascade.
func mergeRules(rules []*Rule) []*Rule {
	if len(rules) == 0 {
		return nil
	}
	out := make([]*Rule, 0, len(rules))
	var last *Rule
	for _, rule := range rules {
		if last != nil && last.Selector == rule.Selector {
			last.Declarations = append(last.Declarations, rule.Declarations...)
			continue
		}
		last = &Rule{
			Selector:     rule.Selector,
			Declarations: append([]Declaration(nil), rule.Declarations...),
		}
		out = append(out, last)
	}
	return out
}

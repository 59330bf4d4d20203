package styles

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ParseStylesheet parses CSS text into a Stylesheet. Comments are discarded.
// Nested at-rule blocks (e.g. rules inside @media) are preserved.
func ParseStylesheet(cssText string) (*Stylesheet, error) {
	sheet := &Stylesheet{}
	input := parse.NewInput(bytes.NewReader([]byte(cssText)))
	parser := css.NewParser(input, false)

	// open holds the at-rule blocks currently being filled, innermost last.
	var open []*AtRule
	var rule *Rule
	var pending []string

	appendItem := func(item Item) {
		if len(open) == 0 {
			sheet.Items = append(sheet.Items, item)
			return
		}
		parent := open[len(open)-1]
		parent.Items = append(parent.Items, item)
	}

	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			err := parser.Err()
			if err == nil || errors.Is(err, io.EOF) {
				if len(open) > 0 || rule != nil {
					return nil, fmt.Errorf("styles: parse css: unexpected end of input")
				}
				return sheet, nil
			}
			return nil, fmt.Errorf("styles: parse css: %w", err)

		case css.BeginAtRuleGrammar:
			at := &AtRule{
				Name:    strings.ToLower(string(data)),
				Prelude: joinTokens(parser.Values()),
				Block:   true,
			}
			appendItem(at)
			open = append(open, at)

		case css.EndAtRuleGrammar:
			if len(open) > 0 {
				open = open[:len(open)-1]
			}

		case css.AtRuleGrammar:
			appendItem(&AtRule{
				Name:    strings.ToLower(string(data)),
				Prelude: joinTokens(parser.Values()),
			})

		case css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			var sb strings.Builder
			sb.Write(data)
			for _, token := range parser.Values() {
				sb.Write(token.Data)
			}
			selector := collapseSpace(strings.Trim(sb.String(), "{, \t\r\n"))
			// Selector lists arrive one QualifiedRuleGrammar per comma.
			pending = append(pending, selector)
			if gt == css.QualifiedRuleGrammar {
				continue
			}
			rule = &Rule{Selector: strings.Join(pending, ", ")}
			pending = pending[:0]
			appendItem(rule)

		case css.EndRulesetGrammar:
			rule = nil

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			decl := Declaration{
				Property: string(data),
				Value:    joinTokens(parser.Values()),
			}
			if gt == css.DeclarationGrammar {
				decl.Property = strings.ToLower(decl.Property)
			}
			switch {
			case rule != nil:
				rule.Declarations = append(rule.Declarations, decl)
			case len(open) > 0:
				parent := open[len(open)-1]
				parent.Declarations = append(parent.Declarations, decl)
			}
		}
	}
}

// joinTokens rebuilds a value from tokens, collapsing whitespace runs to one
// space.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	space := false
	for _, token := range tokens {
		if token.TokenType == css.WhitespaceToken {
			space = sb.Len() > 0
			continue
		}
		if token.TokenType == css.CommentToken {
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.Write(token.Data)
	}
	return collapseSpace(sb.String())
}

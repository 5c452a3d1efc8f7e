package bnf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bdsul/grace"
	"github.com/bdsul/grace/grammar"
	"github.com/bdsul/grace/source"
)

// Extend adds rules and choices from text to g and reanalyzes it.
// Text is parsed as if appended to Format(g), so it may refer to existing rules
// and a leading '|' line adds choices to the last rule of g.
// The start symbol of g is kept if it still has a rule.
// On error g is left intact, error positions are relative to text.
func Extend(g *grammar.Grammar, name, text string, opts ...Option) error {
	base := Format(g)
	offset := strings.Count(base, "\n")
	ng, e := Parse(source.New(name, []byte(base+text)), opts...)
	if e != nil {
		return shiftError(e, offset)
	}

	start := g.StartSymbol()
	*g = *ng
	if start != (grammar.Symbol{}) && g.FindRule(start) != nil {
		g.SetStartSymbol(start)
	}
	return nil
}

func shiftError(e error, offset int) error {
	var ge *grace.Error
	if !errors.As(e, &ge) || ge.Line <= offset {
		return e
	}

	suffix := fmt.Sprintf(" in %s at line %d col %d", ge.SourceName, ge.Line, ge.Col)
	msg := strings.TrimSuffix(ge.Message, suffix)
	return grace.NewError(ge.Code, msg, ge.SourceName, ge.Line-offset, ge.Col)
}

package bnf

import (
	"bufio"
	"io"
	"strings"

	"github.com/bdsul/grace/grammar"
)

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

type printItem struct {
	text   string
	quoted bool
}

// Write writes BNF text of g, one line per rule.
// Parsing the text back yields a grammar equal to g except for overridden start symbol.
func Write(w io.Writer, g *grammar.Grammar) error {
	bw := bufio.NewWriter(w)
	for i := range g.Rules {
		r := &g.Rules[i]
		line := g.Symbol(r.LHS).Text + " ::= "
		for ci := range r.Choices {
			if ci > 0 {
				line += " | "
			}
			line += formatChoice(g, &r.Choices[ci])
		}
		bw.WriteString(strings.TrimRight(line, " "))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Format returns BNF text of g, see Write.
func Format(g *grammar.Grammar) string {
	sb := &strings.Builder{}
	Write(sb, g)
	return sb.String()
}

// Quote returns terminal text as a quoted BNF terminal.
func Quote(text string) string {
	return `"` + quoteReplacer.Replace(text) + `"`
}

// formatChoice quotes every terminal except separators between two non-terminals,
// layout spaces around quoted terminals do not produce separators on parsing.
func formatChoice(g *grammar.Grammar, c *grammar.Choice) string {
	items := make([]printItem, len(c.Symbols))
	last := len(c.Symbols) - 1
	for i, id := range c.Symbols {
		s := g.Symbol(id)
		switch {
		case s.Kind == grammar.NonTerminal:
			items[i] = printItem{s.Text, false}
		case s == separator && i > 0 && i < last &&
			g.Symbol(c.Symbols[i-1]).Kind == grammar.NonTerminal &&
			g.Symbol(c.Symbols[i+1]).Kind == grammar.NonTerminal:
			items[i] = printItem{s.Text, false}
		default:
			items[i] = printItem{Quote(s.Text), true}
		}
	}

	sb := strings.Builder{}
	for i, item := range items {
		if i > 0 && (item.quoted || items[i-1].quoted) {
			sb.WriteByte(' ')
		}
		sb.WriteString(item.text)
	}
	return sb.String()
}

// Package grammar defines the data model shared by the parser, the mapper, and the generator.
//
// Symbols are interned into an arena owned by Grammar and referenced by SymbolID,
// so equal symbols always share the same identifier.
// A Grammar returned by bnf.Parse or Build is analyzed and must be treated as read-only,
// it is safe to share such a grammar between goroutines.
package grammar

import (
	"math"
	"strings"

	"github.com/bdsul/grace"
)

// InfiniteDepth is the minimum depth of rules and choices that cannot be reduced to terminals.
const InfiniteDepth = math.MaxInt32 >> 1

// NoSymbol is the SymbolID of missing symbol, e.g. the start symbol of an empty grammar.
const NoSymbol SymbolID = -1

type SymbolKind int

const (
	Terminal SymbolKind = iota
	NonTerminal
)

func (k SymbolKind) String() string {
	if k == NonTerminal {
		return "non-terminal"
	}
	return "terminal"
}

// Symbol is an atomic grammar token.
// Text of a non-terminal includes angle brackets, e.g. "<expr>".
type Symbol struct {
	Kind SymbolKind `json:"kind"`
	Text string     `json:"text"`
}

// T creates terminal symbol.
func T(text string) Symbol {
	return Symbol{Terminal, text}
}

// NT creates non-terminal symbol, name may be given with or without angle brackets.
func NT(name string) Symbol {
	return Symbol{NonTerminal, bracket(name)}
}

func bracket(name string) string {
	if strings.HasPrefix(name, "<") && strings.HasSuffix(name, ">") && len(name) > 1 {
		return name
	}
	return "<" + name + ">"
}

func (s Symbol) IsTerminal() bool {
	return s.Kind == Terminal
}

// Name returns non-terminal name without angle brackets or terminal text.
func (s Symbol) Name() string {
	if s.Kind == NonTerminal && len(s.Text) > 1 {
		return s.Text[1 : len(s.Text)-1]
	}
	return s.Text
}

func (s Symbol) String() string {
	if s.Kind == NonTerminal {
		return s.Text
	}
	return `"` + s.Text + `"`
}

// SymbolID is the index of a symbol in Grammar.Symbols.
type SymbolID int

// Choice is one alternative of a rule. A choice with no symbols is an empty production.
type Choice struct {
	Symbols      []SymbolID `json:"symbols"`
	Recursive    bool       `json:"recursive"`
	MinimumDepth int        `json:"minimumDepth"`
}

// Rule holds all alternatives of a non-terminal.
type Rule struct {
	LHS          SymbolID `json:"lhs"`
	Choices      []Choice `json:"choices"`
	Recursive    bool     `json:"recursive"`
	MinimumDepth int      `json:"minimumDepth"`
}

// Grammar is an ordered collection of rules with a start symbol.
// Exported fields are the serialized form, Build restores a usable grammar from them.
type Grammar struct {
	Symbols []Symbol `json:"symbols"`
	Rules   []Rule   `json:"rules"`
	Start   SymbolID `json:"start"`

	valid       bool
	symbolIndex map[Symbol]SymbolID
	ruleIndex   map[SymbolID]int
}

// New creates empty grammar. Empty grammar is not valid.
func New() *Grammar {
	return &Grammar{
		Start:       NoSymbol,
		symbolIndex: make(map[Symbol]SymbolID),
		ruleIndex:   make(map[SymbolID]int),
	}
}

func (g *Grammar) reindex() {
	g.symbolIndex = make(map[Symbol]SymbolID, len(g.Symbols))
	for i, s := range g.Symbols {
		g.symbolIndex[s] = SymbolID(i)
	}
	g.ruleIndex = make(map[SymbolID]int, len(g.Rules))
	for i, r := range g.Rules {
		g.ruleIndex[r.LHS] = i
	}
}

// Intern returns the identifier of s adding it to the symbol arena if needed.
func (g *Grammar) Intern(s Symbol) SymbolID {
	if g.symbolIndex == nil {
		g.reindex()
	}
	id, found := g.symbolIndex[s]
	if !found {
		id = SymbolID(len(g.Symbols))
		g.Symbols = append(g.Symbols, s)
		g.symbolIndex[s] = id
	}
	return id
}

// Lookup returns the identifier of s if it is known.
func (g *Grammar) Lookup(s Symbol) (SymbolID, bool) {
	if g.symbolIndex != nil {
		id, found := g.symbolIndex[s]
		return id, found
	}

	for i, gs := range g.Symbols {
		if gs == s {
			return SymbolID(i), true
		}
	}
	return NoSymbol, false
}

// Symbol returns symbol by identifier, id must be valid.
func (g *Grammar) Symbol(id SymbolID) Symbol {
	return g.Symbols[id]
}

// AddRule returns the rule for lhs creating it if needed.
// The first added rule defines the start symbol unless it is already set.
// Returned pointer stays valid until the next rule is created.
func (g *Grammar) AddRule(lhs SymbolID) *Rule {
	if g.ruleIndex == nil {
		g.reindex()
	}
	if i, found := g.ruleIndex[lhs]; found {
		return &g.Rules[i]
	}

	g.ruleIndex[lhs] = len(g.Rules)
	g.Rules = append(g.Rules, Rule{LHS: lhs, MinimumDepth: InfiniteDepth})
	if g.Start == NoSymbol {
		g.Start = lhs
	}
	return &g.Rules[len(g.Rules)-1]
}

func (g *Grammar) ruleIndexOf(id SymbolID) int {
	if g.ruleIndex != nil {
		i, found := g.ruleIndex[id]
		if !found {
			return -1
		}
		return i
	}

	for i, r := range g.Rules {
		if r.LHS == id {
			return i
		}
	}
	return -1
}

// RuleOf returns the rule defining symbol id or nil.
func (g *Grammar) RuleOf(id SymbolID) *Rule {
	i := g.ruleIndexOf(id)
	if i < 0 {
		return nil
	}
	return &g.Rules[i]
}

// FindRule returns the rule defining s or nil.
func (g *Grammar) FindRule(s Symbol) *Rule {
	id, found := g.Lookup(s)
	if !found {
		return nil
	}
	return g.RuleOf(id)
}

// FindRuleByName returns the rule for non-terminal name given with or without angle brackets.
func (g *Grammar) FindRuleByName(name string) *Rule {
	return g.FindRule(NT(name))
}

// StartRule returns the rule of the start symbol or nil.
func (g *Grammar) StartRule() *Rule {
	if g.Start == NoSymbol {
		return nil
	}
	return g.RuleOf(g.Start)
}

// StartSymbol returns the start symbol or zero Symbol for empty grammar.
func (g *Grammar) StartSymbol() Symbol {
	if g.Start == NoSymbol {
		return Symbol{}
	}
	return g.Symbols[g.Start]
}

// SetStartSymbol overrides the start symbol, s must be defined by a rule.
func (g *Grammar) SetStartSymbol(s Symbol) error {
	id, found := g.Lookup(s)
	if !found || g.RuleOf(id) == nil {
		return MakeUnknownStartSymbolError(s)
	}

	g.Start = id
	return nil
}

// MinimumDepth returns the minimum depth of the start rule or InfiniteDepth.
func (g *Grammar) MinimumDepth() int {
	r := g.StartRule()
	if r == nil {
		return InfiniteDepth
	}
	return r.MinimumDepth
}

// Valid reports whether the grammar was completely built.
func (g *Grammar) Valid() bool {
	return g.valid
}

func (g *Grammar) SetValid(valid bool) {
	g.valid = valid
}

// HasNonTerminal reports whether c contains at least one non-terminal symbol.
func (g *Grammar) HasNonTerminal(c *Choice) bool {
	for _, id := range c.Symbols {
		if g.Symbols[id].Kind == NonTerminal {
			return true
		}
	}
	return false
}

// Equal reports whether both grammars have the same start symbol and the same rules
// with the same choices in the same order. Symbol identifiers and analysis data are ignored.
func (g *Grammar) Equal(o *Grammar) bool {
	if g == nil || o == nil {
		return g == o
	}
	if len(g.Rules) != len(o.Rules) || g.StartSymbol() != o.StartSymbol() {
		return false
	}

	for i := range g.Rules {
		gr, or := &g.Rules[i], &o.Rules[i]
		if g.Symbols[gr.LHS] != o.Symbols[or.LHS] || len(gr.Choices) != len(or.Choices) {
			return false
		}

		for j := range gr.Choices {
			gc, oc := gr.Choices[j].Symbols, or.Choices[j].Symbols
			if len(gc) != len(oc) {
				return false
			}
			for k := range gc {
				if g.Symbols[gc[k]] != o.Symbols[oc[k]] {
					return false
				}
			}
		}
	}
	return true
}

// Clone returns a deep copy of the grammar.
func (g *Grammar) Clone() *Grammar {
	res := &Grammar{
		Symbols: make([]Symbol, len(g.Symbols)),
		Rules:   make([]Rule, len(g.Rules)),
		Start:   g.Start,
		valid:   g.valid,
	}
	copy(res.Symbols, g.Symbols)
	for i, r := range g.Rules {
		choices := make([]Choice, len(r.Choices))
		for j, c := range r.Choices {
			choices[j] = c
			choices[j].Symbols = append([]SymbolID(nil), c.Symbols...)
		}
		r.Choices = choices
		res.Rules[i] = r
	}
	res.reindex()
	return res
}

// Build creates analyzed and valid grammar from plain tables, e.g. the output of grace export.
// Tables are copied.
func Build(symbols []Symbol, rules []Rule, start SymbolID) (*Grammar, error) {
	src := &Grammar{Symbols: symbols, Rules: rules, Start: start}
	g := src.Clone()
	e := g.check()
	if e != nil {
		return nil, e
	}

	Analyze(g)
	g.valid = true
	return g, nil
}

// MustBuild is like Build but panics on error.
func MustBuild(symbols []Symbol, rules []Rule, start SymbolID) *Grammar {
	g, e := Build(symbols, rules, start)
	if e != nil {
		panic(e)
	}
	return g
}

func (g *Grammar) check() *grace.Error {
	if len(g.Rules) == 0 {
		return MakeBuildError("no rules defined")
	}

	symbolCnt := SymbolID(len(g.Symbols))
	if len(g.symbolIndex) != len(g.Symbols) {
		return MakeBuildError("duplicate symbols")
	}

	for _, r := range g.Rules {
		if r.LHS < 0 || r.LHS >= symbolCnt {
			return MakeBuildError("rule symbol %d out of range", r.LHS)
		}
		if g.Symbols[r.LHS].Kind != NonTerminal {
			return MakeBuildError("rule for terminal %s", g.Symbols[r.LHS])
		}
		for _, c := range r.Choices {
			for _, id := range c.Symbols {
				if id < 0 || id >= symbolCnt {
					return MakeBuildError("choice of rule %s refers to symbol %d out of range", g.Symbols[r.LHS], id)
				}
			}
		}
	}

	if len(g.ruleIndex) != len(g.Rules) {
		return MakeBuildError("duplicate rules")
	}
	if g.Start < 0 || g.Start >= symbolCnt || g.RuleOf(g.Start) == nil {
		return MakeBuildError("start symbol %d has no rule", g.Start)
	}
	return nil
}

/*
Package bnf converts BNF grammar text to grammar.Grammar and back.

Each rule starts on a new line:

	<expr> ::= <expr> <op> <expr> | "(" <expr> ")"
	         | <var>
	<op>   ::= + | -    # unquoted terminals
	<var>  ::= "x" | "y" |

A line starting with '|' adds choices to the previous rule, the same non-terminal
may also be defined several times, choices are appended in order of appearance.
The first rule defines the start symbol. The last alternative of <var> is an empty choice.

Double-quoted terminals may contain any characters except raw line breaks.
Unquoted terminals are runs of characters other than whitespace, '"', '<', '|', and '#'.
Whitespace between two symbols neither of which is quoted becomes a " " terminal,
so <expr> above derives "x + y" while a choice "(" <expr> ")" derives "(x)".

Escape sequences \n \r \t \\ \" \' are recognized in terminals, a backslash at the end of a line
joins the next line. '#' starts a comment running to the end of line unless quoted.
*/
package bnf

import (
	"github.com/bdsul/grace"
	"github.com/bdsul/grace/grammar"
	"github.com/bdsul/grace/source"
)

// separator is the terminal inserted for whitespace between unquoted symbols.
var separator = grammar.T(" ")

type state int

const (
	startState state = iota
	lhsReadState
	choiceState
	lineStartState
)

// the first pass only creates rules, so the second one resolves forward references
type pass int

const (
	definePass pass = iota + 1
	buildPass
)

var escapes = map[byte]byte{
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
}

type parseContext struct {
	src       *source.Source
	content   []byte
	opts      *options
	g         *grammar.Grammar
	pass      pass
	pos       int
	state     state
	rule      *grammar.Rule
	choice    []grammar.SymbolID
	text      []byte
	separated bool
	quoted    bool
	undefined []string
	seen      map[string]bool
}

// ParseString parses grammar text and returns analyzed valid grammar on success.
// Returns nil and *grace.Error on error.
func ParseString(name, content string, opts ...Option) (*grammar.Grammar, error) {
	return Parse(source.New(name, []byte(content)), opts...)
}

// ParseBytes parses grammar text and returns analyzed valid grammar on success.
// Returns nil and *grace.Error on error.
func ParseBytes(name string, content []byte, opts ...Option) (*grammar.Grammar, error) {
	return Parse(source.New(name, content), opts...)
}

// Parse parses grammar text and returns analyzed valid grammar on success.
// Returns nil and *grace.Error on error.
func Parse(s *source.Source, opts ...Option) (*grammar.Grammar, error) {
	c := &parseContext{
		src:     s,
		content: s.Content(),
		opts:    newOptions(opts),
		g:       grammar.New(),
		seen:    make(map[string]bool),
	}

	e := c.run(definePass)
	if e == nil {
		e = c.run(buildPass)
	}
	if e != nil {
		return nil, e
	}

	if len(c.undefined) > 0 && !c.opts.allowUndefined {
		return nil, makeUndefinedNonTermError(c.undefined)
	}

	g := c.g
	grammar.Analyze(g)
	g.SetValid(true)

	log := c.opts.log.With("source", s.Name())
	for _, sym := range g.Unreachable() {
		log.Warn("unreachable rule", "rule", sym.Text)
	}
	log.Debug("grammar parsed", "rules", len(g.Rules), "symbols", len(g.Symbols), "start", g.StartSymbol().Text)
	return g, nil
}

func (c *parseContext) at(pos int) source.Pos {
	return c.src.At(pos)
}

// next returns the next character and its offset, carriage returns are skipped.
// End of text reads as a line feed.
func (c *parseContext) next() (ch byte, pos int, eof bool) {
	for c.pos < len(c.content) {
		ch = c.content[c.pos]
		pos = c.pos
		c.pos++
		if ch != '\r' {
			return ch, pos, false
		}
	}
	return '\n', len(c.content), true
}

func (c *parseContext) run(p pass) *grace.Error {
	c.pass = p
	c.pos = 0
	c.state = startState
	c.rule = nil

	for {
		ch, pos, eof := c.next()
		var e *grace.Error
		switch c.state {
		case startState:
			e = c.start(ch, pos, eof)
		case lhsReadState:
			e = c.lhsRead(ch, pos, eof)
		case choiceState:
			e = c.choiceChar(ch, pos, eof)
		case lineStartState:
			e = c.lineStart(ch, pos)
		}
		if e != nil || eof {
			return e
		}
	}
}

func (c *parseContext) start(ch byte, pos int, eof bool) *grace.Error {
	if eof {
		return makeEmptyGrammarError(c.src.Name())
	}

	switch ch {
	case ' ', '\t', '\n':
		return nil
	case '#':
		c.skipComment()
		return nil
	case '<':
		return c.beginRule(pos)
	case '\\':
		if c.skipContinuation() {
			return nil
		}
	}
	return makeUnexpectedCharError(c.at(pos), ch)
}

func (c *parseContext) lhsRead(ch byte, pos int, eof bool) *grace.Error {
	if eof {
		return makeUnexpectedEofError(c.at(pos))
	}

	switch ch {
	case ' ', '\t':
		return nil
	case ':':
		token := []byte{ch}
		for _, expected := range []byte("::=")[1:] {
			ch, _, eof = c.next()
			if eof || ch == '\n' {
				return makeWrongDefinitionTokenError(c.at(pos), string(token))
			}

			token = append(token, ch)
			if ch != expected {
				return makeWrongDefinitionTokenError(c.at(pos), string(token))
			}
		}
		c.beginChoice()
		return nil
	case '\\':
		if c.skipContinuation() {
			return nil
		}
	}
	return makeUnexpectedCharError(c.at(pos), ch)
}

func (c *parseContext) choiceChar(ch byte, pos int, eof bool) *grace.Error {
	if eof {
		c.endChoice()
		return nil
	}

	switch ch {
	case '\n':
		c.endChoice()
		c.state = lineStartState
	case ' ', '\t':
		c.flushText()
		c.separated = true
	case '"':
		c.flushText()
		text, e := c.readQuoted(pos)
		if e != nil {
			return e
		}
		c.emit(grammar.T(text), true)
	case '<':
		c.flushText()
		name, e := c.readName(pos)
		if e != nil {
			return e
		}
		c.emitNonTerm(name)
	case '|':
		c.endChoice()
		c.beginChoice()
	case '#':
		c.flushText()
		c.skipComment()
	case '\\':
		r, ok, e := c.readEscape(pos)
		if e != nil {
			return e
		}
		if ok {
			c.text = append(c.text, r)
		}
	default:
		c.text = append(c.text, ch)
	}
	return nil
}

func (c *parseContext) lineStart(ch byte, pos int) *grace.Error {
	switch ch {
	case ' ', '\t', '\n':
		return nil
	case '#':
		c.skipComment()
		return nil
	case '|':
		c.beginChoice()
		return nil
	case '<':
		return c.beginRule(pos)
	case '\\':
		if c.skipContinuation() {
			return nil
		}
	}
	return makeTerminalLineError(c.at(pos))
}

func (c *parseContext) beginRule(pos int) *grace.Error {
	name, e := c.readName(pos)
	if e != nil {
		return e
	}

	sym := grammar.NT(name)
	if c.pass == definePass {
		c.g.AddRule(c.g.Intern(sym))
	} else {
		c.rule = c.g.FindRule(sym)
		if c.rule == nil {
			return makeRuleChangedError(c.at(pos), name)
		}
	}
	c.state = lhsReadState
	return nil
}

func (c *parseContext) beginChoice() {
	c.state = choiceState
	c.choice = []grammar.SymbolID{}
	c.text = c.text[:0]
	c.separated = false
	c.quoted = false
}

func (c *parseContext) endChoice() {
	c.flushText()
	if c.pass == buildPass {
		c.rule.Choices = append(c.rule.Choices, grammar.Choice{
			Symbols:      c.choice,
			MinimumDepth: grammar.InfiniteDepth,
		})
	}
	c.choice = nil
}

func (c *parseContext) flushText() {
	if len(c.text) > 0 {
		c.emit(grammar.T(string(c.text)), false)
		c.text = c.text[:0]
	}
}

func (c *parseContext) emit(sym grammar.Symbol, quoted bool) {
	if c.pass == buildPass {
		if c.separated && len(c.choice) > 0 && !c.quoted && !quoted {
			c.choice = append(c.choice, c.g.Intern(separator))
		}
		c.choice = append(c.choice, c.g.Intern(sym))
	}
	c.quoted = quoted
	c.separated = false
}

func (c *parseContext) emitNonTerm(name string) {
	sym := grammar.NT(name)
	if c.pass == buildPass && c.g.FindRule(sym) == nil {
		if !c.seen[name] {
			c.seen[name] = true
			c.undefined = append(c.undefined, name)
			if c.opts.allowUndefined {
				c.opts.log.Warn("undefined non-terminal replaced with terminal", "source", c.src.Name(), "symbol", name)
			}
		}
		if c.opts.allowUndefined {
			sym = grammar.T(name)
		}
	}
	c.emit(sym, false)
}

// readName reads non-terminal after opening bracket at pos, returns name with brackets.
func (c *parseContext) readName(pos int) (string, *grace.Error) {
	name := []byte{'<'}
	for {
		ch, chPos, eof := c.next()
		if eof {
			return "", makeUnterminatedNonTermError(c.at(pos), string(name[1:]))
		}

		switch ch {
		case '>':
			return string(append(name, ch)), nil
		case '\n':
			return "", makeNewlineInNonTermError(c.at(chPos), string(name[1:]))
		case '"', '|', '<':
			return "", makeInvalidNonTermCharError(c.at(chPos), ch)
		case '\\':
			if !c.skipContinuation() {
				ch, _, _ = c.next()
				return "", makeInvalidEscapeError(c.at(chPos), ch)
			}
		default:
			name = append(name, ch)
		}
	}
}

// readQuoted reads terminal after opening quote at pos.
func (c *parseContext) readQuoted(pos int) (string, *grace.Error) {
	var text []byte
	for {
		ch, chPos, eof := c.next()
		if eof || ch == '\n' {
			return "", makeUnterminatedQuoteError(c.at(pos))
		}

		switch ch {
		case '"':
			return string(text), nil
		case '\\':
			r, ok, e := c.readEscape(chPos)
			if e != nil {
				return "", e
			}
			if ok {
				text = append(text, r)
			}
		default:
			text = append(text, ch)
		}
	}
}

// readEscape reads escape sequence after backslash at pos, returns false for line continuation.
func (c *parseContext) readEscape(pos int) (byte, bool, *grace.Error) {
	ch, _, eof := c.next()
	if eof || ch == '\n' {
		return 0, false, nil
	}

	r, found := escapes[ch]
	if !found {
		return 0, false, makeInvalidEscapeError(c.at(pos), ch)
	}
	return r, true, nil
}

// skipContinuation consumes line break after backslash, returns false leaving position intact if there is none.
func (c *parseContext) skipContinuation() bool {
	saved := c.pos
	ch, _, eof := c.next()
	if eof || ch == '\n' {
		return true
	}

	c.pos = saved
	return false
}

// skipComment consumes everything up to line feed, the feed itself is left for the caller.
func (c *parseContext) skipComment() {
	for {
		ch, pos, eof := c.next()
		if eof {
			return
		}
		if ch == '\n' {
			c.pos = pos
			return
		}
	}
}

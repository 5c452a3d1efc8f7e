package bnf

import (
	"strings"

	"github.com/bdsul/grace"
	"github.com/bdsul/grace/source"
)

// Error codes used by parser:
const (
	// UnexpectedCharError indicates a character that cannot start anything at current position,
	// e.g. a terminal before the first rule or garbage instead of "::=".
	UnexpectedCharError = grace.GrammarErrors + iota

	// NewlineInNonTermError indicates a line break inside angle brackets.
	NewlineInNonTermError

	// WrongDefinitionTokenError indicates misspelled "::=".
	WrongDefinitionTokenError

	// InvalidNonTermCharError indicates '"', '|', or '<' inside angle brackets.
	InvalidNonTermCharError

	// UnterminatedNonTermError indicates a non-terminal name not closed before end of text.
	UnterminatedNonTermError

	// UnterminatedQuoteError indicates a quoted terminal not closed before end of line.
	UnterminatedQuoteError

	// InvalidEscapeError indicates unknown escape sequence.
	InvalidEscapeError

	// TerminalLineError indicates a line starting with something other than a rule or '|'.
	TerminalLineError

	// UnexpectedEofError indicates that text ends in the middle of a rule head.
	UnexpectedEofError

	// RuleChangedError indicates that the second pass found a rule unknown to the first one.
	// This is an internal error.
	RuleChangedError

	// UndefinedNonTermError lists non-terminals used in choices but never defined.
	UndefinedNonTermError

	// EmptyGrammarError indicates text with no rules.
	EmptyGrammarError
)

func makeUnexpectedCharError(pos source.Pos, c byte) *grace.Error {
	return grace.FormatErrorPos(pos, UnexpectedCharError, "unexpected character %q", c)
}

func makeNewlineInNonTermError(pos source.Pos, name string) *grace.Error {
	return grace.FormatErrorPos(pos, NewlineInNonTermError, "line break in non-terminal <%s", name)
}

func makeWrongDefinitionTokenError(pos source.Pos, text string) *grace.Error {
	return grace.FormatErrorPos(pos, WrongDefinitionTokenError, "expecting \"::=\", got %q", text)
}

func makeInvalidNonTermCharError(pos source.Pos, c byte) *grace.Error {
	return grace.FormatErrorPos(pos, InvalidNonTermCharError, "character %q not allowed in non-terminal name", c)
}

func makeUnterminatedNonTermError(pos source.Pos, name string) *grace.Error {
	return grace.FormatErrorPos(pos, UnterminatedNonTermError, "unterminated non-terminal <%s", name)
}

func makeUnterminatedQuoteError(pos source.Pos) *grace.Error {
	return grace.FormatErrorPos(pos, UnterminatedQuoteError, "unterminated quoted terminal")
}

func makeInvalidEscapeError(pos source.Pos, c byte) *grace.Error {
	return grace.FormatErrorPos(pos, InvalidEscapeError, "invalid escape sequence \\%c", c)
}

func makeTerminalLineError(pos source.Pos) *grace.Error {
	return grace.FormatErrorPos(pos, TerminalLineError, "line must start with a rule or '|'")
}

func makeUnexpectedEofError(pos source.Pos) *grace.Error {
	return grace.FormatErrorPos(pos, UnexpectedEofError, "unexpected end of text, expecting \"::=\"")
}

func makeRuleChangedError(pos source.Pos, name string) *grace.Error {
	return grace.FormatErrorPos(pos, RuleChangedError, "rule %s not found on second pass", name)
}

func makeUndefinedNonTermError(names []string) *grace.Error {
	return grace.FormatError(UndefinedNonTermError, "undefined non-terminals: "+strings.Join(names, ", "))
}

func makeEmptyGrammarError(name string) *grace.Error {
	if name == "" {
		return grace.FormatError(EmptyGrammarError, "no rules defined")
	}
	return grace.FormatError(EmptyGrammarError, "no rules defined in %s", name)
}

package grammar

import (
	"github.com/bdsul/grace"
)

// Error codes used by grammar, they follow bnf codes in the same class:
const (
	// UnknownStartSymbolError indicates that the requested start symbol has no rule.
	UnknownStartSymbolError = grace.GrammarErrors + 49 + iota

	// BuildError indicates inconsistent tables passed to Build.
	BuildError
)

func MakeUnknownStartSymbolError(s Symbol) *grace.Error {
	return grace.FormatError(UnknownStartSymbolError, "no rule defines start symbol %s", s)
}

func MakeBuildError(msg string, params ...any) *grace.Error {
	return grace.FormatError(BuildError, "cannot build grammar: "+msg, params...)
}

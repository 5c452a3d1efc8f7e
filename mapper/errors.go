package mapper

import (
	"github.com/bdsul/grace"
	"github.com/bdsul/grace/grammar"
)

// Error codes used by mapper:
const (
	// MissingRuleError indicates a non-terminal with no defining rule met during decoding.
	// The grammar and the decode are out of sync, decoding of the genome is aborted.
	MissingRuleError = grace.MapperErrors + iota
)

func MakeMissingRuleError(s grammar.Symbol) *grace.Error {
	return grace.FormatError(MissingRuleError, "no rule defines non-terminal %s", s)
}

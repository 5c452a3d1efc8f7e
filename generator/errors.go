package generator

import (
	"github.com/bdsul/grace"
	"github.com/bdsul/grace/grammar"
)

// Error codes used by generator:
const (
	// NoChoiceError indicates a rule with no choice fitting the remaining depth.
	NoChoiceError = grace.GeneratorErrors + iota

	// DepthTooSmallError indicates a maximum depth below the minimum depth of the grammar.
	DepthTooSmallError

	// MissingRuleError indicates a non-terminal with no defining rule.
	MissingRuleError

	// LengthRangeError indicates invalid genome length range.
	LengthRangeError
)

func MakeNoChoiceError(s grammar.Symbol, level int) *grace.Error {
	return grace.FormatError(NoChoiceError, "no choice of %s fits at level %d", s, level)
}

func MakeDepthTooSmallError(maxDepth, minDepth int) *grace.Error {
	return grace.FormatError(DepthTooSmallError, "maximum depth %d is less than grammar minimum depth %d", maxDepth, minDepth)
}

func MakeMissingRuleError(s grammar.Symbol) *grace.Error {
	return grace.FormatError(MissingRuleError, "no rule defines non-terminal %s", s)
}

func MakeLengthRangeError(minLen, maxLen int) *grace.Error {
	return grace.FormatError(LengthRangeError, "invalid genome length range %d..%d", minLen, maxLen)
}

/*
Package grace implements the grammar and mapping core of Grammatical Evolution.

An individual carries an integer genome which is decoded against a context-free
grammar written in BNF. Consists of subpackages:
  - bnf: two-pass BNF parser, canonical printer, and incremental grammar extension;
  - grammar: symbols, choices, rules, grammar container, and recursion/minimum depth analysis;
  - tree: derivation trees produced by decoding;
  - genome: codon sequence together with its decoded phenotype;
  - mapper: genotype to phenotype decoding with bounded wrapping;
  - generator: depth-limited random derivation used for structured initialisation;
  - config: settings file and environment handling;
  - archive: SQLite store of decoded individuals;
  - cmd/grace: command-line tool.

Typical usage is:

1. Parse grammar text with bnf.ParseString, the result is analyzed and shared read-only.

2. Create genomes either directly from codons (genome.New) or with generator.Generator.

3. Decode each genome with mapper.Decode or Mapper.DecodeAll and evaluate phenotypes of valid ones.
*/
package grace

import (
	"errors"
	"fmt"
)

// Error classes used by subpackages, each class contains up to 99 error codes:
const (
	GrammarErrors   = 1   // used by bnf (1..49) and grammar (50..99)
	MapperErrors    = 101 // used by mapper
	GeneratorErrors = 201 // used by generator
	ConfigErrors    = 301 // used by config
)

// Error is the error type used by grace subpackages.
type Error struct {
	// Code contains non-zero error code.
	Code int

	// Message contains non-empty error message including source name and position information if provided.
	Message string

	// SourceName contains grammar source name that caused this error or empty string.
	SourceName string

	// Line contains line number in source or 0.
	Line int

	// Col contains column number in source or 0.
	Col int
}

// SourcePos is used to retrieve source name and position information when constructing an error;
// source.Pos implements this interface.
type SourcePos interface {
	// SourceName returns source name or empty string.
	SourceName() string
	// Line returns line number or 0.
	Line() int
	// Col returns column number or 0.
	Col() int
}

// NewError creates new Error structure.
// name, line, and col will be added to error message if provided (non-zero).
func NewError(code int, msg, name string, line, col int) *Error {
	if name != "" && line != 0 && col != 0 {
		msg += fmt.Sprintf(" in %s at line %d col %d", name, line, col)
	}
	return &Error{code, msg, name, line, col}
}

// Error simply returns Error.Message.
func (e *Error) Error() string {
	return e.Message
}

// FormatError creates Error structure with no source and position information.
// params will be added to error message using fmt.Sprintf function.
func FormatError(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, "", 0, 0)
}

// FormatErrorPos creates Error structure with source and position information.
// pos must not be nil.
// params will be added to error message using fmt.Sprintf function.
func FormatErrorPos(pos SourcePos, code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg, pos.SourceName(), pos.Line(), pos.Col())
}

// ErrorCode returns the code of *Error wrapped by e or 0.
func ErrorCode(e error) int {
	var ge *Error
	if errors.As(e, &ge) {
		return ge.Code
	}
	return 0
}

/*
Package generator creates genomes either at random or by depth-limited random derivation.

A structured genome is built by expanding the start symbol and choosing among the choices
whose minimum depth fits the remaining depth budget. Every choice of a rule having several
choices is recorded as a codon c such that c mod (number of choices) is the index of the choice,
so decoding the genome with mapper reproduces the derivation.

All randomness comes from the rand.Source given to New, generators created with equal sources
produce equal genomes.
*/
package generator

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/bdsul/grace/genome"
	"github.com/bdsul/grace/grammar"
)

// DefaultCodonMax is the largest random codon value.
const DefaultCodonMax = 255

// Mode selects choices for structured generation.
type Mode int

const (
	// Grow selects any choice fitting the remaining depth.
	Grow Mode = iota
	// Full prefers choices containing non-terminals to build deeper trees.
	Full
	// Random creates unstructured genomes of random codons.
	Random
)

var modeNames = []string{"grow", "full", "random"}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts mode name to Mode, names are case insensitive.
func ParseMode(name string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(n, name) {
			return Mode(i), nil
		}
	}
	return Grow, fmt.Errorf("unknown generation mode %q", name)
}

// Generator is not safe for concurrent use, use Fork to get independent generators.
type Generator struct {
	r        *rand.Rand
	codonMax uint
	log      *slog.Logger
}

type Option func(*Generator)

// WithCodonMax sets the largest random codon value, 0 is ignored.
func WithCodonMax(n uint) Option {
	return func(g *Generator) {
		if n > 0 {
			g.codonMax = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

func New(src rand.Source, opts ...Option) *Generator {
	g := &Generator{
		r:        rand.New(src),
		codonMax: DefaultCodonMax,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewSeeded creates generator using PCG source with given seed.
func NewSeeded(seed uint64, opts ...Option) *Generator {
	return New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15), opts...)
}

// Fork creates a generator with the same settings seeded by two draws from g.
func (g *Generator) Fork() *Generator {
	return &Generator{
		r:        rand.New(rand.NewPCG(g.r.Uint64(), g.r.Uint64())),
		codonMax: g.codonMax,
		log:      g.log,
	}
}

// CodonMax returns the largest random codon value.
func (g *Generator) CodonMax() uint {
	return g.codonMax
}

// Tree returns codons of a random derivation not deeper than maxDepth, root being at depth 0.
// Random mode is treated as Grow.
func (g *Generator) Tree(gr *grammar.Grammar, maxDepth int, mode Mode) ([]uint, error) {
	start := gr.StartRule()
	if start == nil {
		return nil, MakeMissingRuleError(gr.StartSymbol())
	}
	if maxDepth < start.MinimumDepth {
		return nil, MakeDepthTooSmallError(maxDepth, start.MinimumDepth)
	}

	b := &builder{
		g:        g,
		gr:       gr,
		maxDepth: maxDepth,
		full:     mode == Full,
	}
	e := b.expand(start.LHS, 0)
	if e != nil {
		return nil, e
	}

	g.log.Debug("tree generated", "mode", mode, "maxDepth", maxDepth, "codons", len(b.codons))
	return b.codons, nil
}

// Random returns random codons, the length is chosen uniformly in minLen..maxLen.
func (g *Generator) Random(minLen, maxLen int) ([]uint, error) {
	if minLen < 0 || minLen > maxLen {
		return nil, MakeLengthRangeError(minLen, maxLen)
	}

	return g.appendRandom(nil, minLen+g.r.IntN(maxLen-minLen+1)), nil
}

// Tail appends random codons to codons so that the result length is random in minLen..maxLen.
// Codons longer than minLen are padded up to a random length not exceeding maxLen, if any.
func (g *Generator) Tail(codons []uint, minLen, maxLen int) ([]uint, error) {
	if minLen < 0 || minLen > maxLen {
		return nil, MakeLengthRangeError(minLen, maxLen)
	}

	lo := max(minLen, len(codons))
	hi := max(maxLen, len(codons))
	return g.appendRandom(codons, lo+g.r.IntN(hi-lo+1)-len(codons)), nil
}

// Genome creates new genome using mode. Structured genomes are padded with Tail.
func (g *Generator) Genome(gr *grammar.Grammar, maxDepth int, mode Mode, minLen, maxLen int) (*genome.Genome, error) {
	var codons []uint
	var e error
	if mode == Random {
		codons, e = g.Random(minLen, maxLen)
	} else {
		codons, e = g.Tree(gr, maxDepth, mode)
		if e == nil {
			codons, e = g.Tail(codons, minLen, maxLen)
		}
	}
	if e != nil {
		return nil, e
	}

	return genome.New(codons...), nil
}

// Ramped creates count genomes alternating Grow and Full modes,
// depth limits are spread evenly from the grammar minimum depth to maxDepth.
func (g *Generator) Ramped(gr *grammar.Grammar, count, maxDepth, minLen, maxLen int) ([]*genome.Genome, error) {
	minDepth := gr.MinimumDepth()
	if maxDepth < minDepth {
		return nil, MakeDepthTooSmallError(maxDepth, minDepth)
	}

	depths := maxDepth - minDepth + 1
	res := make([]*genome.Genome, 0, count)
	for i := range count {
		mode := Grow
		if i%2 == 1 {
			mode = Full
		}
		ng, e := g.Genome(gr, minDepth+(i/2)%depths, mode, minLen, maxLen)
		if e != nil {
			return nil, e
		}
		res = append(res, ng)
	}
	return res, nil
}

func (g *Generator) appendRandom(codons []uint, n int) []uint {
	for range n {
		codons = append(codons, uint(g.r.Uint64N(uint64(g.codonMax)+1)))
	}
	return codons
}

// codon returns random codon not exceeding codonMax that selects choice index of n.
func (g *Generator) codon(n, index uint) uint {
	if index > g.codonMax {
		return index
	}
	return uint(g.r.Uint64N(uint64((g.codonMax-index)/n)+1))*n + index
}

type builder struct {
	g        *Generator
	gr       *grammar.Grammar
	maxDepth int
	full     bool
	codons   []uint
	fitting  []int
	deep     []int
}

func (b *builder) expand(id grammar.SymbolID, level int) error {
	if b.gr.Symbol(id).IsTerminal() {
		return nil
	}

	r := b.gr.RuleOf(id)
	if r == nil {
		return MakeMissingRuleError(b.gr.Symbol(id))
	}

	candidates := b.candidates(r, level)
	if len(candidates) == 0 {
		return MakeNoChoiceError(b.gr.Symbol(id), level)
	}

	index := candidates[0]
	if len(candidates) > 1 {
		index = candidates[b.g.r.IntN(len(candidates))]
	}
	if n := uint(len(r.Choices)); n > 1 {
		b.codons = append(b.codons, b.g.codon(n, uint(index)))
	}

	for _, sid := range r.Choices[index].Symbols {
		if e := b.expand(sid, level+1); e != nil {
			return e
		}
	}
	return nil
}

// candidates returns indexes of choices fitting below level.
// The returned slice is reused by the next call.
func (b *builder) candidates(r *grammar.Rule, level int) []int {
	b.fitting = b.fitting[:0]
	b.deep = b.deep[:0]
	for i := range r.Choices {
		c := &r.Choices[i]
		if level+c.MinimumDepth > b.maxDepth {
			continue
		}

		b.fitting = append(b.fitting, i)
		if b.full && b.gr.HasNonTerminal(c) {
			b.deep = append(b.deep, i)
		}
	}

	if len(b.deep) > 0 {
		return b.deep
	}
	return b.fitting
}

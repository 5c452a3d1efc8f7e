// Package mapper decodes genomes into phenotypes and derivation trees.
package mapper

import (
	"log/slog"
	"strings"

	"github.com/bdsul/grace/genome"
	"github.com/bdsul/grace/grammar"
	"github.com/bdsul/grace/tree"
)

// DefaultMaxWrapEvents is the wrap allowance used when none is given.
const DefaultMaxWrapEvents = 0

// Mapper holds decoding settings, it is safe for concurrent use.
type Mapper struct {
	maxWraps int
	maxDepth int
	log      *slog.Logger
	metrics  *Metrics
}

type Option func(*Mapper)

// WithMaxWrapEvents sets the number of times the codon cursor may return to the first codon.
// Negative values are treated as 0.
func WithMaxWrapEvents(n int) Option {
	return func(m *Mapper) {
		m.maxWraps = max(n, 0)
	}
}

// WithMaxDepth limits derivation tree depth, a decode exceeding the limit is invalid.
// 0 means no limit.
func WithMaxDepth(n int) Option {
	return func(m *Mapper) {
		m.maxDepth = max(n, 0)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Mapper) {
		if l != nil {
			m.log = l
		}
	}
}

// WithMetrics enables decode metrics.
func WithMetrics(mt *Metrics) Option {
	return func(m *Mapper) {
		m.metrics = mt
	}
}

func New(opts ...Option) *Mapper {
	m := &Mapper{
		maxWraps: DefaultMaxWrapEvents,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MaxWrapEvents returns the wrap allowance.
func (m *Mapper) MaxWrapEvents() int {
	return m.maxWraps
}

// Decode decodes g using maxWrapEvents and no depth limit.
func Decode(g *genome.Genome, gr *grammar.Grammar, maxWrapEvents int) (bool, error) {
	return New(WithMaxWrapEvents(maxWrapEvents)).Decode(g, gr)
}

// Decode derives a phenotype and a derivation tree from the codons of g and stores them in g.
// Returns true if the derivation is complete.
//
// Nothing is done and false is returned if g is already decoded (PhenotypeValid is set),
// gr is nil or not valid, or g has no codons; g is not modified in these cases.
// Running out of codons is not an error: the derivation stops at that point,
// the partial phenotype and tree are stored, and false is returned.
// A non-terminal with no rule returns *grace.Error leaving g intact.
// gr is only read, so any number of genomes may be decoded concurrently with the same grammar.
func (m *Mapper) Decode(g *genome.Genome, gr *grammar.Grammar) (bool, error) {
	if g.PhenotypeValid || gr == nil || !gr.Valid() || g.Len() == 0 || gr.StartRule() == nil {
		m.metrics.observeSkip()
		return false, nil
	}

	d := &decoder{
		g:        gr,
		codons:   g.Genotype,
		maxWraps: m.maxWraps,
		maxDepth: m.maxDepth,
	}
	start := gr.StartRule().LHS
	root := tree.New(gr.Symbol(start))
	if e := d.expand(root, start); e != nil {
		m.metrics.observeError()
		return false, e
	}

	g.Phenotype = d.phenotype.String()
	g.Tree = root
	g.EffectiveSize = d.effective
	g.WrapEvents = d.wraps
	g.PhenotypeValid = d.failure == ""

	if !g.PhenotypeValid {
		m.log.Debug(d.failure, "genome", g.ID, "codons", g.Len(), "effective", d.effective, "wraps", d.wraps)
	}
	m.metrics.observe(g)
	return g.PhenotypeValid, nil
}

const (
	outOfCodons    = "ran out of codons"
	depthExceeded  = "maximum depth exceeded"
	codonFreeCycle = "non-terminal cannot derive terminals"
	noChoices      = "rule has no choices"
)

// decoder holds the state of a single decode.
type decoder struct {
	g         *grammar.Grammar
	codons    []uint
	cursor    int
	wraps     int
	maxWraps  int
	maxDepth  int
	effective int
	phenotype strings.Builder
	failure   string
}

// nextCodon returns the next codon wrapping to the first one if allowed.
func (d *decoder) nextCodon() (uint, bool) {
	if d.cursor >= len(d.codons) {
		if d.wraps >= d.maxWraps {
			return 0, false
		}
		d.wraps++
		d.cursor = 0
	}

	codon := d.codons[d.cursor]
	d.cursor++
	d.effective++
	return codon, true
}

// expand derives n which holds symbol id. Sets d.failure and returns nil if derivation cannot continue.
func (d *decoder) expand(n *tree.Node, id grammar.SymbolID) error {
	if n.Symbol.IsTerminal() {
		d.phenotype.WriteString(n.Symbol.Text)
		return nil
	}

	r := d.g.RuleOf(id)
	if r == nil {
		return MakeMissingRuleError(n.Symbol)
	}

	var c *grammar.Choice
	switch {
	case len(r.Choices) == 0:
		d.failure = noChoices
		return nil
	case d.maxDepth > 0 && n.Level >= d.maxDepth:
		d.failure = depthExceeded
		return nil
	case len(r.Choices) == 1:
		if r.MinimumDepth >= grammar.InfiniteDepth {
			d.failure = codonFreeCycle
			return nil
		}
		c = &r.Choices[0]
	default:
		codon, ok := d.nextCodon()
		if !ok {
			d.failure = outOfCodons
			return nil
		}
		c = &r.Choices[codon%uint(len(r.Choices))]
	}

	for _, sid := range c.Symbols {
		child := n.AppendChild(d.g.Symbol(sid))
		if e := d.expand(child, sid); e != nil || d.failure != "" {
			return e
		}
	}
	return nil
}

// Package genome defines an individual: a codon sequence together with the outputs of its last decode.
package genome

import (
	"github.com/google/uuid"

	"github.com/bdsul/grace/tree"
)

// Genome is owned by a single goroutine at a time.
// Code changing Genotype must call Invalidate so that the next decode is not skipped.
type Genome struct {
	ID       uuid.UUID `json:"id"`
	Genotype []uint    `json:"genotype"`

	Phenotype      string     `json:"phenotype,omitempty"`
	Tree           *tree.Node `json:"tree,omitempty"`
	EffectiveSize  int        `json:"effectiveSize"`
	WrapEvents     int        `json:"wrapEvents"`
	PhenotypeValid bool       `json:"phenotypeValid"`
}

// New creates a genome with fresh identifier, codons are copied.
func New(codons ...uint) *Genome {
	g := &Genome{ID: uuid.New(), Genotype: make([]uint, len(codons))}
	copy(g.Genotype, codons)
	return g
}

func (g *Genome) Len() int {
	return len(g.Genotype)
}

// Invalidate marks decode outputs stale, the previous phenotype and tree are kept until the next decode.
func (g *Genome) Invalidate() {
	g.PhenotypeValid = false
}

// SetCodon replaces i-th codon and invalidates the genome.
func (g *Genome) SetCodon(i int, codon uint) {
	g.Genotype[i] = codon
	g.Invalidate()
}

// SetGenotype replaces all codons and invalidates the genome, codons are copied.
func (g *Genome) SetGenotype(codons []uint) {
	g.Genotype = append(g.Genotype[:0], codons...)
	g.Invalidate()
}

// Clone returns a copy with new identifier sharing nothing with g except the derivation tree,
// which is never modified after decoding.
func (g *Genome) Clone() *Genome {
	res := *g
	res.ID = uuid.New()
	res.Genotype = append([]uint(nil), g.Genotype...)
	return &res
}

// Reset clears decode outputs.
func (g *Genome) Reset() {
	g.Phenotype = ""
	g.Tree = nil
	g.EffectiveSize = 0
	g.WrapEvents = 0
	g.PhenotypeValid = false
}

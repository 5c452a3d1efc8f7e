package mapper

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdsul/grace"
	"github.com/bdsul/grace/genome"
	"github.com/bdsul/grace/grammar"
)

func population(n, length int, seed uint64) []*genome.Genome {
	r := rand.New(rand.NewPCG(seed, seed))
	res := make([]*genome.Genome, n)
	for i := range res {
		codons := make([]uint, length)
		for j := range codons {
			codons[j] = uint(r.IntN(256))
		}
		res[i] = genome.New(codons...)
	}
	return res
}

func TestDecodeAll(t *testing.T) {
	gr := mustParse(t, exprGrammar)
	m := New(WithMaxWrapEvents(2))

	parallel := population(200, 20, 1)
	sequential := make([]*genome.Genome, len(parallel))
	expected := 0
	for i, g := range parallel {
		sequential[i] = g.Clone()
		valid, e := m.Decode(sequential[i], gr)
		require.NoError(t, e)
		if valid {
			expected++
		}
	}

	valid, e := m.DecodeAll(context.Background(), parallel, gr, 4)
	require.NoError(t, e)
	assert.Equal(t, expected, valid)
	for i, g := range parallel {
		assert.Equal(t, sequential[i].Phenotype, g.Phenotype)
		assert.Equal(t, sequential[i].EffectiveSize, g.EffectiveSize)
		assert.Equal(t, sequential[i].PhenotypeValid, g.PhenotypeValid)
	}

	valid, e = m.DecodeAll(context.Background(), parallel, gr, 0)
	require.NoError(t, e)
	assert.Equal(t, 0, valid, "decoded genomes must be skipped")
}

func TestDecodeAllCanceled(t *testing.T) {
	gr := mustParse(t, exprGrammar)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	genomes := population(10, 5, 2)
	valid, e := New().DecodeAll(ctx, genomes, gr, 2)
	assert.ErrorIs(t, e, context.Canceled)
	assert.Equal(t, 0, valid)
	for _, g := range genomes {
		assert.Nil(t, g.Tree)
	}
}

func TestDecodeAllError(t *testing.T) {
	gr := grammar.MustBuild(
		[]grammar.Symbol{grammar.NT("S"), grammar.NT("u")},
		[]grammar.Rule{{LHS: 0, Choices: []grammar.Choice{{Symbols: []grammar.SymbolID{1}}}}},
		0,
	)

	_, e := New().DecodeAll(context.Background(), population(5, 3, 3), gr, 2)
	require.Error(t, e)
	assert.Equal(t, MissingRuleError, grace.ErrorCode(e))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	mt := NewMetrics(reg)
	m := New(WithMetrics(mt), WithMaxWrapEvents(2))
	gr := mustParse(t, tripleGrammar)

	_, e := m.Decode(genome.New(1), gr)
	require.NoError(t, e)
	_, e = m.Decode(genome.New(0, 1, 0), gr)
	require.NoError(t, e)
	_, e = New(WithMetrics(mt)).Decode(genome.New(0), gr)
	require.NoError(t, e)
	_, e = m.Decode(genome.New(), gr)
	require.NoError(t, e)

	assert.Equal(t, 2.0, testutil.ToFloat64(mt.Decodes.WithLabelValues(ResultValid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.Decodes.WithLabelValues(ResultInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.Decodes.WithLabelValues(ResultSkipped)))
	assert.Equal(t, 2.0, testutil.ToFloat64(mt.WrapEvents))

	n, e := testutil.GatherAndCount(reg, "grace_mapper_decodes_total")
	require.NoError(t, e)
	assert.Equal(t, 3, n)
}

func TestSummarize(t *testing.T) {
	gr := mustParse(t, aabGrammar)
	genomes := []*genome.Genome{
		genome.New(1),
		genome.New(0, 1),
		genome.New(0, 0, 0, 1),
		genome.New(0),
	}
	for _, g := range genomes {
		_, e := Decode(g, gr, 0)
		require.NoError(t, e)
	}

	s := Summarize(genomes)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 3, s.Valid)
	assert.InDelta(t, 7.0/3, s.MeanEffective, 1e-9)
	assert.Equal(t, 2.0, s.MedianEffective)
	assert.Equal(t, 4.0, s.MaxEffective)
	assert.InDelta(t, 0.75, s.ValidRatio(), 1e-9)

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, 0.0, empty.MeanEffective)
	assert.Equal(t, 0.0, empty.ValidRatio())
}

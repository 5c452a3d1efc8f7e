package genome

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdsul/grace/grammar"
	"github.com/bdsul/grace/tree"
)

func TestNew(t *testing.T) {
	codons := []uint{1, 2, 3}
	g := New(codons...)
	codons[0] = 100
	assert.Equal(t, []uint{1, 2, 3}, g.Genotype)
	assert.Equal(t, 3, g.Len())
	assert.NotEqual(t, uuid.Nil, g.ID)
	assert.NotEqual(t, g.ID, New().ID)
	assert.False(t, g.PhenotypeValid)
}

func TestInvalidation(t *testing.T) {
	g := New(1, 2)
	g.PhenotypeValid = true
	g.SetCodon(1, 5)
	assert.False(t, g.PhenotypeValid)
	assert.Equal(t, []uint{1, 5}, g.Genotype)

	g.PhenotypeValid = true
	g.SetGenotype([]uint{7, 8, 9})
	assert.False(t, g.PhenotypeValid)
	assert.Equal(t, []uint{7, 8, 9}, g.Genotype)
}

func TestCloneAndReset(t *testing.T) {
	g := New(4, 5)
	g.Phenotype = "x"
	g.Tree = tree.New(grammar.NT("s"))
	g.EffectiveSize = 2
	g.PhenotypeValid = true

	c := g.Clone()
	c.SetCodon(0, 9)
	assert.Equal(t, uint(4), g.Genotype[0])
	assert.NotEqual(t, g.ID, c.ID)
	assert.Equal(t, "x", c.Phenotype)
	assert.Same(t, g.Tree, c.Tree)

	g.Reset()
	assert.Empty(t, g.Phenotype)
	assert.Nil(t, g.Tree)
	assert.Zero(t, g.EffectiveSize)
	assert.False(t, g.PhenotypeValid)
}

func TestJSON(t *testing.T) {
	g := New(0, 0, 1)
	g.Phenotype = "aab"
	g.EffectiveSize = 3
	g.PhenotypeValid = true

	data, e := json.Marshal(g)
	require.NoError(t, e)

	var got Genome
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, g.ID, got.ID)
	assert.Equal(t, g.Genotype, got.Genotype)
	assert.Equal(t, "aab", got.Phenotype)
	assert.True(t, got.PhenotypeValid)

	require.NoError(t, json.Unmarshal([]byte(`{"genotype":[3,4]}`), &got))
	assert.Equal(t, []uint{3, 4}, got.Genotype)
}

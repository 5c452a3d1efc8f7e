package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdsul/grace/bnf"
	"github.com/bdsul/grace/genome"
	"github.com/bdsul/grace/mapper"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, e := Open(context.Background(), ":memory:")
	require.NoError(t, e)
	t.Cleanup(func() { s.Close() })
	return s
}

func decoded(t *testing.T, codons ...uint) *genome.Genome {
	t.Helper()
	gr, e := bnf.ParseString("test", `<S> ::= "a" <S> | "b"`)
	require.NoError(t, e)
	g := genome.New(codons...)
	_, e = mapper.Decode(g, gr, 0)
	require.NoError(t, e)
	return g
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	run := uuid.New()
	other := uuid.New()

	valid := decoded(t, 0, 0, 1)
	invalid := decoded(t, 0)
	require.NoError(t, s.Record(ctx, run, valid))
	require.NoError(t, s.Record(ctx, other, valid))
	require.NoError(t, s.Record(ctx, run, invalid))

	records, e := s.List(ctx, run)
	require.NoError(t, e)
	require.Len(t, records, 2)

	r := records[0]
	assert.Equal(t, run, r.Run)
	assert.Equal(t, valid.ID, r.GenomeID)
	assert.Equal(t, []uint{0, 0, 1}, r.Genotype)
	assert.Equal(t, "aab", r.Phenotype)
	assert.True(t, r.Valid)
	assert.Equal(t, 3, r.EffectiveSize)
	assert.False(t, r.CreatedAt.IsZero())

	assert.Equal(t, invalid.ID, records[1].GenomeID)
	assert.False(t, records[1].Valid)
	assert.Equal(t, "a", records[1].Phenotype)

	runs, e := s.Runs(ctx)
	require.NoError(t, e)
	assert.Equal(t, []uuid.UUID{run, other}, runs)
}

func TestRecordAll(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	run := uuid.New()

	genomes := []*genome.Genome{decoded(t, 1), decoded(t, 0, 1), decoded(t, 0, 0, 0, 1)}
	require.NoError(t, s.RecordAll(ctx, run, genomes))

	records, e := s.List(ctx, run)
	require.NoError(t, e)
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, genomes[i].ID, r.GenomeID)
		assert.Equal(t, genomes[i].Phenotype, r.Phenotype)
	}

	empty, e := s.List(ctx, uuid.New())
	require.NoError(t, e)
	assert.Empty(t, empty)
}

func TestCanceledContext(t *testing.T) {
	s := openMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.Record(ctx, uuid.New(), decoded(t, 1)))
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "archive.db")
	run := uuid.New()

	s, e := Open(ctx, path)
	require.NoError(t, e)
	require.NoError(t, s.Record(ctx, run, decoded(t, 0, 1)))
	require.NoError(t, s.Close())

	s, e = Open(ctx, path)
	require.NoError(t, e)
	defer s.Close()
	records, e := s.List(ctx, run)
	require.NoError(t, e)
	require.Len(t, records, 1)
	assert.Equal(t, "ab", records[0].Phenotype)
}

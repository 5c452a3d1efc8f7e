package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdsul/grace/archive"
	"github.com/bdsul/grace/bnf"
	"github.com/bdsul/grace/genome"
	"github.com/bdsul/grace/grammar"
)

const (
	aabGrammar    = "<S> ::= \"a\" <S> | \"b\"\n"
	tripleGrammar = "<S> ::= <X><X><X>\n<X> ::= \"a\" | \"b\"\n"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCmd(t *testing.T, args ...string) (code int, out, errOut string) {
	t.Helper()
	var ob, eb bytes.Buffer
	code = run(args, &ob, &eb)
	return code, ob.String(), eb.String()
}

func TestCheck(t *testing.T) {
	path := writeFile(t, t.TempDir(), "s.bnf", aabGrammar+"<U> ::= \"u\"\n")

	code, out, _ := runCmd(t, "check", path)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "start <S>, minimum depth 1")

	var rule []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "<S>") {
			rule = strings.Fields(line)
		}
	}
	assert.Equal(t, []string{"<S>", "yes", "1", "2*", "1"}, rule)
	assert.Contains(t, out, "unreachable <U>")
}

func TestFmt(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "s.bnf", "# comment\n<S>   ::=   \"a\" <S>\n  | \"b\"\n")

	code, out, _ := runCmd(t, "fmt", path)
	require.Equal(t, exitOK, code)
	formatted, e := bnf.ParseString("out", out)
	require.NoError(t, e)
	original, e := bnf.ParseString("in", aabGrammar)
	require.NoError(t, e)
	assert.True(t, original.Equal(formatted), out)
	assert.Equal(t, 1, strings.Count(out, "\n"))

	ext := writeFile(t, dir, "ext.bnf", "<S> ::= \"c\"\n")
	code, out, _ = runCmd(t, "fmt", "--extend", ext, path)
	require.Equal(t, exitOK, code)
	extended, e := bnf.ParseString("out", out)
	require.NoError(t, e)
	assert.Len(t, extended.StartRule().Choices, 3)
}

func TestExportJson(t *testing.T) {
	path := writeFile(t, t.TempDir(), "s.bnf", aabGrammar)

	code, out, _ := runCmd(t, "export", "-j", "-o", "-", path)
	require.Equal(t, exitOK, code)

	var tables grammar.Grammar
	require.NoError(t, json.Unmarshal([]byte(out), &tables))
	built, e := grammar.Build(tables.Symbols, tables.Rules, tables.Start)
	require.NoError(t, e)
	original, e := bnf.ParseString("in", aabGrammar)
	require.NoError(t, e)
	assert.True(t, original.Equal(built))
}

func TestExportGo(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "s.bnf", aabGrammar)

	code, _, errOut := runCmd(t, "export", "-p", "grammars", path)
	require.Equal(t, exitOK, code, errOut)

	content, e := os.ReadFile(filepath.Join(dir, "s.go"))
	require.NoError(t, e)
	src := string(content)
	assert.True(t, strings.HasPrefix(src, "// Code generated with grace export.\n\npackage grammars\n"))
	assert.Contains(t, src, "var S = grammar.MustBuild(")
	assert.Contains(t, src, `{Kind: grammar.NonTerminal, Text: "<S>"}, // 0`)
	assert.Contains(t, src, "{LHS: 0, Choices: []grammar.Choice{ // <S>")

	code, _, errOut = runCmd(t, "export", "-p", "grammars", "-v", "1bad", "-o", filepath.Join(dir, "x.go"), path)
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "invalid variable name: 1bad")
}

func TestDecode(t *testing.T) {
	dir := t.TempDir()
	aab := writeFile(t, dir, "s.bnf", aabGrammar)
	triple := writeFile(t, dir, "t.bnf", tripleGrammar)

	code, out, errOut := runCmd(t, "decode", "--codons", "0,0,1", aab)
	require.Equal(t, exitOK, code)
	assert.Equal(t, "valid\taab\n", out)
	assert.Contains(t, errOut, "decoded 1, valid 1, mean effective size 3.00")

	code, out, _ = runCmd(t, "decode", "-c", "0", aab)
	assert.Equal(t, exitInvalid, code)
	assert.Equal(t, "invalid\ta\n", out)

	code, out, _ = runCmd(t, "decode", "-c", "1", "--wraps", "2", triple)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "valid\tbbb\n", out)

	code, out, _ = runCmd(t, "decode", "-c", "1", "--tree", aab)
	require.Equal(t, exitOK, code)
	assert.Equal(t, "valid\tb\n<S>\n  \"b\"\n", out)
}

func TestDecodeJsonAndMetrics(t *testing.T) {
	path := writeFile(t, t.TempDir(), "s.bnf", aabGrammar)

	code, out, errOut := runCmd(t, "decode", "-c", "0 1", "--json", "--metrics", path)
	require.Equal(t, exitOK, code)

	var g genome.Genome
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Equal(t, "ab", g.Phenotype)
	assert.Equal(t, []uint{0, 1}, g.Genotype)
	assert.True(t, g.PhenotypeValid)
	assert.Contains(t, errOut, `grace_mapper_decodes_total{result="valid"} 1`)
	assert.Contains(t, errOut, "grace_mapper_effective_size_count 1")
}

func TestGenerateAndDecode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "e.bnf", `
<expr> ::= <expr> <op> <expr> | "(" <expr> ")" | <var>
<op>   ::= "+" | "-"
<var>  ::= "x" | "y"
`)

	code, out, errOut := runCmd(t, "generate", "-n", "8", "--seed", "5", "--depth", "6", path)
	require.Equal(t, exitOK, code, errOut)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)

	_, again, _ := runCmd(t, "generate", "-n", "8", "--seed", "5", "--depth", "6", path)
	againLines := strings.Split(strings.TrimSpace(again), "\n")
	for i := range lines {
		var a, b genome.Genome
		require.NoError(t, json.Unmarshal([]byte(lines[i]), &a))
		require.NoError(t, json.Unmarshal([]byte(againLines[i]), &b))
		assert.Equal(t, a.Genotype, b.Genotype)
		assert.GreaterOrEqual(t, a.Len(), 20)
		assert.LessOrEqual(t, a.Len(), 100)
	}

	genomes := writeFile(t, dir, "genomes.jsonl", out)
	db := filepath.Join(dir, "archive.db")
	code, out, errOut = runCmd(t, "decode", "--genomes", genomes, "--archive", db, path)
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, 8, strings.Count(out, "valid\t"))
	assert.NotContains(t, out, "invalid")

	store, e := archive.Open(context.Background(), db)
	require.NoError(t, e)
	defer store.Close()
	runs, e := store.Runs(context.Background())
	require.NoError(t, e)
	require.Len(t, runs, 1)
	records, e := store.List(context.Background(), runs[0])
	require.NoError(t, e)
	assert.Len(t, records, 8)
}

func TestGenerateDecoded(t *testing.T) {
	path := writeFile(t, t.TempDir(), "s.bnf", aabGrammar)

	code, out, _ := runCmd(t, "generate", "-n", "4", "--ramped", "--decode", "--mode", "full", path)
	require.Equal(t, exitOK, code)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var g genome.Genome
		require.NoError(t, json.Unmarshal([]byte(line), &g))
		assert.True(t, g.PhenotypeValid)
		assert.True(t, strings.HasSuffix(g.Phenotype, "b"))
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	triple := writeFile(t, dir, "t.bnf", tripleGrammar)
	cfg := writeFile(t, dir, "grace.yaml", "mapper:\n  max_wrap_events: 2\n")

	code, out, _ := runCmd(t, "--config", cfg, "decode", "-c", "1", triple)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "valid\tbbb\n", out)

	code, _, _ = runCmd(t, "decode", "-c", "1", triple)
	assert.Equal(t, exitInvalid, code)
}

func TestErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "s.bnf", aabGrammar)
	bad := writeFile(t, dir, "bad.bnf", "<S> ::= \"a\n")

	samples := []struct {
		args []string
		code int
	}{
		{[]string{"check"}, exitUsage},
		{[]string{"check", good, good}, exitUsage},
		{[]string{"bogus"}, exitUsage},
		{[]string{"decode", "--bogus", good}, exitUsage},
		{[]string{"decode", "-c", "1,x", good}, exitUsage},
		{[]string{"--log-level", "loud", "check", good}, exitUsage},
		{[]string{"generate", "-n", "2", "--mode", "sideways", good}, exitUsage},
		{[]string{"check", filepath.Join(dir, "absent.bnf")}, exitError},
		{[]string{"check", bad}, exitError},
		{[]string{"generate", "--depth", "1", "--mode", "full", writeFile(t, dir, "deep.bnf", "<S> ::= <T>\n<T> ::= \"t\"\n")}, exitError},
	}

	for _, s := range samples {
		code, _, errOut := runCmd(t, s.args...)
		assert.Equal(t, s.code, code, "%v: %s", s.args, errOut)
		assert.Contains(t, errOut, "error:", "%v", s.args)
	}

	_, _, errOut := runCmd(t, "check", bad)
	assert.Contains(t, errOut, "unterminated quoted terminal in bad.bnf at line 1 col 9")
}

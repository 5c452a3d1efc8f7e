package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/bdsul/grace/archive"
	"github.com/bdsul/grace/genome"
	"github.com/bdsul/grace/mapper"
	"github.com/bdsul/grace/tree"
)

type decodeOptions struct {
	codons      string
	genomesFile string
	wraps       int
	printTree   bool
	printJson   bool
	archiveDSN  string
	metrics     bool
}

func (a *app) decodeCmd() *cobra.Command {
	var opts decodeOptions
	cmd := &cobra.Command{
		Use:   "decode <grammar> (--codons <list> | --genomes <file>)",
		Short: "Decode genomes and print phenotypes",
		Args:  oneGrammarArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("wraps") {
				a.cfg.Mapper.MaxWrapEvents = opts.wraps
			}
			return a.decode(cmd.Context(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.codons, "codons", "c", "", "comma separated codons of a single genome")
	f.StringVarP(&opts.genomesFile, "genomes", "g", "", "file with genomes as JSON lines, \"-\" means stdin")
	f.IntVarP(&opts.wraps, "wraps", "w", 0, "maximum number of wrap events")
	f.BoolVar(&opts.printTree, "tree", false, "print derivation trees")
	f.BoolVar(&opts.printJson, "json", false, "print decoded genomes as JSON lines")
	f.StringVar(&opts.archiveDSN, "archive", "", "SQLite database to store decoded genomes in")
	f.BoolVar(&opts.metrics, "metrics", false, "print decode metrics")
	cmd.MarkFlagsMutuallyExclusive("codons", "genomes")
	cmd.MarkFlagsOneRequired("codons", "genomes")
	return cmd
}

func (a *app) decode(ctx context.Context, grammarFile string, opts decodeOptions) error {
	gr, e := a.readGrammar(grammarFile)
	if e != nil {
		return e
	}

	var genomes []*genome.Genome
	if opts.codons != "" {
		codons, e := parseCodons(opts.codons)
		if e != nil {
			return usageError{e}
		}
		genomes = []*genome.Genome{genome.New(codons...)}
	} else {
		genomes, e = a.readGenomes(opts.genomesFile)
		if e != nil {
			return e
		}
	}

	mapperOpts := a.cfg.MapperOptions(a.log)
	var reg *prometheus.Registry
	if opts.metrics {
		reg = prometheus.NewRegistry()
		mapperOpts = append(mapperOpts, mapper.WithMetrics(mapper.NewMetrics(reg)))
	}
	m := mapper.New(mapperOpts...)

	valid, e := m.DecodeAll(ctx, genomes, gr, a.cfg.Decode.Workers)
	if e != nil {
		return e
	}

	for _, g := range genomes {
		if e := a.printGenome(g, opts); e != nil {
			return e
		}
	}

	s := mapper.Summarize(genomes)
	fmt.Fprintf(a.errOut, "decoded %d, valid %d, mean effective size %.2f, max %.0f, wrap events %d\n",
		s.Count, s.Valid, s.MeanEffective, s.MaxEffective, s.WrapEvents)

	if reg != nil {
		if e := printMetrics(a.errOut, reg); e != nil {
			return e
		}
	}

	if opts.archiveDSN != "" {
		if e := a.archiveGenomes(ctx, opts.archiveDSN, genomes); e != nil {
			return e
		}
	}

	if valid < len(genomes) {
		a.exitCode = exitInvalid
	}
	return nil
}

func parseCodons(list string) ([]uint, error) {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(fields) == 0 {
		return nil, errors.New("empty codon list")
	}

	res := make([]uint, len(fields))
	for i, f := range fields {
		c, e := strconv.ParseUint(f, 10, 0)
		if e != nil {
			return nil, fmt.Errorf("invalid codon %q", f)
		}
		res[i] = uint(c)
	}
	return res, nil
}

func (a *app) readGenomes(name string) ([]*genome.Genome, error) {
	var r io.Reader = os.Stdin
	if name != "-" {
		f, e := os.Open(name)
		if e != nil {
			return nil, e
		}
		defer f.Close()
		r = f
	}

	var res []*genome.Genome
	dec := json.NewDecoder(r)
	for {
		g := &genome.Genome{}
		e := dec.Decode(g)
		if errors.Is(e, io.EOF) {
			break
		}
		if e != nil {
			return nil, fmt.Errorf("read genome #%d from %s: %w", len(res)+1, name, e)
		}

		if g.ID == uuid.Nil {
			g.ID = uuid.New()
		}
		g.Reset()
		res = append(res, g)
	}
	return res, nil
}

func (a *app) printGenome(g *genome.Genome, opts decodeOptions) error {
	if opts.printJson {
		content, e := json.Marshal(g)
		if e != nil {
			return e
		}
		_, e = fmt.Fprintf(a.out, "%s\n", content)
		return e
	}

	status := "valid"
	if !g.PhenotypeValid {
		status = "invalid"
	}
	fmt.Fprintf(a.out, "%s\t%s\n", status, g.Phenotype)
	if opts.printTree && g.Tree != nil {
		return tree.Fprint(a.out, g.Tree)
	}
	return nil
}

func (a *app) archiveGenomes(ctx context.Context, dsn string, genomes []*genome.Genome) error {
	store, e := archive.Open(ctx, dsn)
	if e != nil {
		return e
	}
	defer store.Close()

	run := uuid.New()
	if e := store.RecordAll(ctx, run, genomes); e != nil {
		return e
	}
	a.log.Info("decodes archived", "run", run, "genomes", len(genomes), "archive", dsn)
	return nil
}

func printMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, e := reg.Gather()
	if e != nil {
		return e
	}

	for _, f := range families {
		for _, m := range f.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			name := f.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}

			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s_count %d\n%s_sum %g\n", name, h.GetSampleCount(), name, h.GetSampleSum())
			}
		}
	}
	return nil
}

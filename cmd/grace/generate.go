package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bdsul/grace/genome"
	"github.com/bdsul/grace/mapper"
)

type generateOptions struct {
	count  int
	seed   uint64
	mode   string
	depth  int
	ramped bool
	decode bool
}

func (a *app) generateCmd() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate <grammar>",
		Short: "Create random genomes and print them as JSON lines",
		Args:  oneGrammarArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if f.Changed("seed") {
				a.cfg.Generator.Seed = opts.seed
			}
			if f.Changed("mode") {
				a.cfg.Generator.Method = opts.mode
			}
			if f.Changed("depth") {
				a.cfg.Generator.MaxDepth = opts.depth
			}
			if e := a.cfg.Validate(); e != nil {
				return usageError{e}
			}
			return a.generate(args[0], opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.count, "count", "n", 10, "number of genomes")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed")
	f.StringVarP(&opts.mode, "mode", "m", "", "generation mode: grow, full, or random")
	f.IntVarP(&opts.depth, "depth", "d", 0, "maximum derivation depth")
	f.BoolVar(&opts.ramped, "ramped", false, "ramped half-and-half: alternate grow and full over a range of depths")
	f.BoolVar(&opts.decode, "decode", false, "decode genomes before printing")
	return cmd
}

func (a *app) generate(grammarFile string, opts generateOptions) error {
	if opts.count < 0 {
		return usageError{fmt.Errorf("negative genome count %d", opts.count)}
	}

	gr, e := a.readGrammar(grammarFile)
	if e != nil {
		return e
	}

	gen, mode, e := a.cfg.NewGenerator(a.log)
	if e != nil {
		return e
	}

	gc := a.cfg.Generator
	var genomes []*genome.Genome
	if opts.ramped {
		genomes, e = gen.Ramped(gr, opts.count, gc.MaxDepth, gc.MinLength, gc.MaxLength)
	} else {
		genomes = make([]*genome.Genome, 0, opts.count)
		for range opts.count {
			var g *genome.Genome
			g, e = gen.Genome(gr, gc.MaxDepth, mode, gc.MinLength, gc.MaxLength)
			if e != nil {
				break
			}
			genomes = append(genomes, g)
		}
	}
	if e != nil {
		return e
	}

	m := mapper.New(a.cfg.MapperOptions(a.log)...)
	for _, g := range genomes {
		if opts.decode {
			if _, e := m.Decode(g, gr); e != nil {
				return e
			}
		}

		content, e := json.Marshal(g)
		if e != nil {
			return e
		}
		fmt.Fprintf(a.out, "%s\n", content)
	}

	a.log.Debug("genomes generated", "count", len(genomes), "mode", mode, "seed", gc.Seed)
	return nil
}

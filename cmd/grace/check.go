package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bdsul/grace/grammar"
)

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <grammar>",
		Short: "Parse grammar and print rule analysis",
		Args:  oneGrammarArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, e := a.readGrammar(args[0])
			if e != nil {
				return e
			}
			return a.printAnalysis(g)
		},
	}
}

func depthString(depth int) string {
	if depth >= grammar.InfiniteDepth {
		return "inf"
	}
	return strconv.Itoa(depth)
}

func (a *app) printAnalysis(g *grammar.Grammar) error {
	fmt.Fprintf(a.out, "start %s, minimum depth %s\n", g.StartSymbol(), depthString(g.MinimumDepth()))

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "rule\trecursive\tdepth\tchoice depths")
	for i := range g.Rules {
		r := &g.Rules[i]
		depths := make([]string, len(r.Choices))
		for ci := range r.Choices {
			depths[ci] = depthString(r.Choices[ci].MinimumDepth)
			if r.Choices[ci].Recursive {
				depths[ci] += "*"
			}
		}

		recursive := "no"
		if r.Recursive {
			recursive = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", g.Symbol(r.LHS), recursive, depthString(r.MinimumDepth), strings.Join(depths, " "))
	}
	if e := tw.Flush(); e != nil {
		return e
	}

	for _, s := range g.Unreachable() {
		fmt.Fprintf(a.out, "unreachable %s\n", s)
	}
	return nil
}

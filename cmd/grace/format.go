package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bdsul/grace/bnf"
)

func (a *app) fmtCmd() *cobra.Command {
	var extensions []string
	cmd := &cobra.Command{
		Use:   "fmt <grammar>",
		Short: "Print canonical BNF text of grammar",
		Args:  oneGrammarArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, e := a.readGrammar(args[0])
			if e != nil {
				return e
			}

			for _, name := range extensions {
				text, e := os.ReadFile(name)
				if e != nil {
					return e
				}
				if e := bnf.Extend(g, name, string(text), a.parserOptions()...); e != nil {
					return e
				}
			}
			return bnf.Write(a.out, g)
		},
	}
	cmd.Flags().StringArrayVar(&extensions, "extend", nil, "file with rules added to grammar, may be repeated")
	return cmd
}

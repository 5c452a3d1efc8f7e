/*
grace is a console utility for BNF grammars and genome decoding.
Usage is

	grace [--config <file>] [--log-level <level>] [--allow-undefined] <command> [flags] <grammar>

Commands are:

	check <grammar>     parses grammar and prints recursion flags and minimum depths of rules;
	fmt <grammar>       prints canonical BNF text, --extend <file> adds rules first;
	export <grammar>    translates grammar to Go source or JSON file;
	decode <grammar>    decodes genomes given with --codons or --genomes and prints phenotypes;
	generate <grammar>  creates random genomes and prints them as JSON lines.

Settings are read from the --config file (YAML or JSON) and GRACE_* environment variables,
command flags override them.

Exit code is 0 on success, 1 if some decoded phenotype is invalid, 2 on usage error, 3 on any other error.
*/
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bdsul/grace/bnf"
	"github.com/bdsul/grace/config"
	"github.com/bdsul/grace/grammar"
	"github.com/bdsul/grace/source"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
	exitError   = 3
)

type usageError struct {
	error
}

type app struct {
	out, errOut io.Writer

	configPath     string
	logLevel       string
	allowUndefined bool

	cfg      config.Config
	log      *slog.Logger
	exitCode int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	a := &app{out: out, errOut: errOut}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	e := root.Execute()
	if e == nil {
		return a.exitCode
	}

	fmt.Fprintln(errOut, "error:", e)
	var ue usageError
	if errors.As(e, &ue) || strings.HasPrefix(e.Error(), "unknown command") {
		return exitUsage
	}
	return exitError
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "grace",
		Short:         "BNF grammar tool for grammatical evolution",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, e error) error {
		return usageError{e}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "settings file (YAML or JSON)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, or error")
	pf.BoolVar(&a.allowUndefined, "allow-undefined", false, "replace undefined non-terminals with terminals")

	root.AddCommand(a.checkCmd(), a.fmtCmd(), a.exportCmd(), a.decodeCmd(), a.generateCmd())
	return root
}

func (a *app) setup() error {
	cfg, e := config.Load(a.configPath)
	if e != nil {
		return e
	}
	if a.logLevel != "" {
		cfg.Log.Level = strings.ToLower(a.logLevel)
		if e := cfg.Validate(); e != nil {
			return usageError{e}
		}
	}

	a.cfg = cfg
	a.log = cfg.Log.Logger(a.errOut)
	return nil
}

func oneGrammarArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usageError{fmt.Errorf("%s expects exactly one grammar file, got %d arguments", cmd.Name(), len(args))}
	}
	return nil
}

func (a *app) parserOptions() []bnf.Option {
	opts := []bnf.Option{bnf.WithLogger(a.log)}
	if a.allowUndefined {
		opts = append(opts, bnf.AllowUndefined())
	}
	return opts
}

func (a *app) readGrammar(path string) (*grammar.Grammar, error) {
	src, e := source.ReadFile(path)
	if e != nil {
		return nil, e
	}
	return bnf.Parse(src, a.parserOptions()...)
}

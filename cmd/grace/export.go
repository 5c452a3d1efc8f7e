package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bdsul/grace/grammar"
)

type exportOptions struct {
	json        bool
	outFileName string
	packageName string
	varName     string
}

func (a *app) exportCmd() *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "export [-j] [-p <name>] [-v <name>] [-o <name>] <grammar>",
		Short: "Translate grammar to Go source or JSON file",
		Long: `Translate grammar to Go source or JSON file.

-o defines output file name, default is the name of input file with .go or .json suffix, "-" means stdout;
-p defines Go package name, default is directory name of output file;
-v defines generated Go variable name of type *grammar.Grammar, default is the start symbol name.`,
		Args: oneGrammarArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.export(args[0], opts)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.json, "json", "j", false, "output JSON instead of Go")
	f.StringVarP(&opts.outFileName, "out", "o", "", "output file name")
	f.StringVarP(&opts.packageName, "package", "p", "", "Go package name")
	f.StringVarP(&opts.varName, "var", "v", "", "Go variable name")
	return cmd
}

func (a *app) export(inFileName string, opts exportOptions) error {
	if opts.outFileName == "" {
		ext := filepath.Ext(inFileName)
		opts.outFileName = inFileName[:len(inFileName)-len(ext)]
		if opts.json {
			opts.outFileName += ".json"
		} else {
			opts.outFileName += ".go"
		}
	}

	gr, e := a.readGrammar(inFileName)
	if e != nil {
		return e
	}

	var content []byte
	if opts.json {
		content, e = makeJson(gr)
	} else {
		content, e = makeGo(gr, opts)
	}
	if e != nil {
		return e
	}

	if opts.outFileName == "-" {
		_, e = a.out.Write(content)
		return e
	}
	a.log.Info("grammar exported", "file", opts.outFileName, "rules", len(gr.Rules))
	return os.WriteFile(opts.outFileName, content, 0o666)
}

func makeJson(gr *grammar.Grammar) ([]byte, error) {
	content, e := json.MarshalIndent(gr, "", "  ")
	if e != nil {
		return nil, e
	}
	return append(content, '\n'), nil
}

var identRe = regexp.MustCompile("^[A-Za-z_][A-Za-z_0-9]*$")

func makeGo(gr *grammar.Grammar, opts exportOptions) ([]byte, error) {
	packageName, varName := opts.packageName, opts.varName
	if packageName == "" {
		dir := "."
		if opts.outFileName != "-" {
			dir = opts.outFileName
		}
		dir, e := filepath.Abs(dir)
		if e != nil {
			return nil, e
		}
		if opts.outFileName != "-" {
			dir = filepath.Dir(dir)
		}
		packageName = filepath.Base(dir)
	}
	if varName == "" {
		varName = strings.ReplaceAll(gr.StartSymbol().Name(), "-", "_")
	}

	if !identRe.MatchString(packageName) {
		return nil, fmt.Errorf("invalid package name: %s", packageName)
	}
	if !identRe.MatchString(varName) {
		return nil, fmt.Errorf("invalid variable name: %s", varName)
	}

	var buffer bytes.Buffer

	buffer.WriteString("// Code generated with grace export.\n\n" +
		"package " + packageName + "\n\n" +
		"import \"github.com/bdsul/grace/grammar\"\n\n" +
		"var " + varName + " = grammar.MustBuild(\n")

	buffer.WriteString("\t[]grammar.Symbol{\n")
	for i, s := range gr.Symbols {
		kind := "grammar.Terminal"
		if s.Kind == grammar.NonTerminal {
			kind = "grammar.NonTerminal"
		}
		buffer.WriteString(fmt.Sprintf("\t\t{Kind: %s, Text: %q}, // %d\n", kind, s.Text, i))
	}
	buffer.WriteString("\t},\n")

	buffer.WriteString("\t[]grammar.Rule{\n")
	for _, r := range gr.Rules {
		buffer.WriteString(fmt.Sprintf("\t\t{LHS: %d, Choices: []grammar.Choice{ // %s\n", r.LHS, gr.Symbol(r.LHS)))
		for _, c := range r.Choices {
			buffer.WriteString("\t\t\t{Symbols: []grammar.SymbolID{")
			for i, id := range c.Symbols {
				if i > 0 {
					buffer.WriteString(", ")
				}
				buffer.WriteString(fmt.Sprint(id))
			}
			buffer.WriteString("}},\n")
		}
		buffer.WriteString("\t\t}},\n")
	}
	buffer.WriteString("\t},\n")

	buffer.WriteString(fmt.Sprintf("\t%d,\n)\n", gr.Start))
	return buffer.Bytes(), nil
}

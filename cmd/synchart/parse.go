package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/nihei9/synchart/grammar"
	"github.com/nihei9/synchart/meaning"
	"github.com/nihei9/synchart/parser"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source *string
	tree   *bool
	dump   *bool
	config *configFlags
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "parse <grammar file path>",
		Short: "Parse sentences into meanings",
		Long: `parse reads one sentence per line and prints the meanings of each sentence.
A line of the form "sentence<TAB>meaning" restricts the parses to the ones yielding the meaning.`,
		Example: `  echo "what states border texas" | synchart parse geo.synchart -k 5`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.tree = cmd.Flags().Bool("tree", false, "print the derivation tree of each parse")
	parseFlags.dump = cmd.Flags().Bool("dump", false, "dump the derivation of each parse")
	parseFlags.config = addConfigFlags(cmd)
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) (retErr error) {
	defer recoverPanic(&retErr)

	gram, err := readGrammar(args[0])
	if err != nil {
		return err
	}

	c, logger, err := parseFlags.config.load(cmd)
	if err != nil {
		return err
	}
	p, err := parser.NewParser(gram, c.Options(logger)...)
	if err != nil {
		return err
	}

	var src io.Reader = os.Stdin
	if *parseFlags.source != "" {
		f, err := os.Open(*parseFlags.source)
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
		}
		defer f.Close()
		src = f
	}

	s := bufio.NewScanner(src)
	for row := 1; s.Scan(); row++ {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		text, gold, err := splitExample(gram, line)
		if err != nil {
			return fmt.Errorf("%v: %w", row, err)
		}
		sent, err := parser.NewSentence(gram, text)
		if err != nil {
			return err
		}
		parses, err := p.Parse(sent, gold)
		if err != nil {
			return fmt.Errorf("%v: %w", row, err)
		}

		fmt.Fprintf(os.Stdout, "# %v\n", sent)
		if len(parses) == 0 {
			fmt.Fprintf(os.Stdout, "no parse\n")
			continue
		}
		for i, parse := range parses {
			fmt.Fprintf(os.Stdout, "%v\t%.4f\t%v\n", i+1, parse.Score(), parse.MR())
			if *parseFlags.tree {
				parser.PrintDerivation(os.Stdout, parse.Derivation())
			}
			if *parseFlags.dump {
				dumpDerivation(os.Stdout, parse.Derivation())
			}
		}
	}
	return s.Err()
}

// splitExample splits a line into a sentence and an optional meaning
// separated by a tab.
func splitExample(gram *grammar.Grammar, line string) (string, *meaning.Meaning, error) {
	text, notation, ok := strings.Cut(line, "\t")
	if !ok {
		return text, nil, nil
	}
	node, err := meaning.Parse(strings.NewReader(notation))
	if err != nil {
		return "", nil, err
	}
	m, err := meaning.Build(gram, node)
	if err != nil {
		return "", nil, err
	}
	return strings.TrimSpace(text), m, nil
}

type derivationDump struct {
	Production string
	Span       [2]int
	Words      []string
	Skipped    []string
	Literal    string
	Children   []*derivationDump
}

func newDerivationDump(d *parser.Derivation) *derivationDump {
	if d == nil {
		return nil
	}
	dump := &derivationDump{
		Production: d.Rule.Production.Name,
		Span:       [2]int{d.Start, d.End},
		Words:      d.Words,
		Skipped:    d.Skipped,
		Literal:    d.Literal,
	}
	for _, c := range d.Children {
		dump.Children = append(dump.Children, newDerivationDump(c))
	}
	return dump
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func dumpDerivation(w io.Writer, d *parser.Derivation) {
	dumpConfig.Fdump(w, newDerivationDump(d))
}

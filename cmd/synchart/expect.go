package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/nihei9/synchart/config"
	"github.com/nihei9/synchart/parser"
	"github.com/spf13/cobra"
)

var expectFlags = struct {
	corpus *string
	config *configFlags
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "expect <grammar file path>",
		Short: "Compute the expected counts of rules over a corpus",
		Long: `expect parses each example of a corpus, a file of "sentence<TAB>meaning" lines,
restricted to the meaning and prints the expected number of uses of each rule as JSON.`,
		Example: `  synchart expect geo.synchart --corpus train.tsv`,
		Args:    cobra.ExactArgs(1),
		RunE:    runExpect,
	}
	expectFlags.corpus = cmd.Flags().String("corpus", "", "corpus file path")
	expectFlags.config = addConfigFlags(cmd)
	cmd.MarkFlagRequired("corpus")
	rootCmd.AddCommand(cmd)
}

type ruleCount struct {
	Rule       int     `json:"rule"`
	Production string  `json:"production"`
	Text       string  `json:"text"`
	Count      float64 `json:"count"`
}

type expectReport struct {
	Examples      int          `json:"examples"`
	Unparsed      int          `json:"unparsed"`
	LogLikelihood float64      `json:"log_likelihood"`
	Counts        []*ruleCount `json:"counts"`
}

func runExpect(cmd *cobra.Command, args []string) (retErr error) {
	defer recoverPanic(&retErr)

	gram, err := readGrammar(args[0])
	if err != nil {
		return err
	}

	c, logger, err := expectFlags.config.load(cmd)
	if err != nil {
		return err
	}
	// Expected counts sum over every derivation.
	c.Mode = config.ModeMarginal
	p, err := parser.NewParser(gram, c.Options(logger)...)
	if err != nil {
		return err
	}

	f, err := os.Open(*expectFlags.corpus)
	if err != nil {
		return fmt.Errorf("Cannot open the corpus %s: %w", *expectFlags.corpus, err)
	}
	defer f.Close()

	parser.ResetExpectations(gram)
	report := &expectReport{}
	s := bufio.NewScanner(f)
	for row := 1; s.Scan(); row++ {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		text, gold, err := splitExample(gram, line)
		if err != nil {
			return fmt.Errorf("%v:%v: %w", *expectFlags.corpus, row, err)
		}
		if gold == nil {
			return fmt.Errorf("%v:%v: an example needs a meaning", *expectFlags.corpus, row)
		}
		sent, err := parser.NewSentence(gram, text)
		if err != nil {
			return err
		}
		_, err = p.Parse(sent, gold)
		if err != nil {
			return fmt.Errorf("%v:%v: %w", *expectFlags.corpus, row, err)
		}
		logZ, err := p.Outside(true)
		if err != nil {
			return fmt.Errorf("%v:%v: %w", *expectFlags.corpus, row, err)
		}

		report.Examples++
		if math.IsInf(logZ, -1) {
			report.Unparsed++
			logger.Warn("no derivation yields the meaning", "row", row, "sentence", text)
			continue
		}
		report.LogLikelihood += logZ
	}
	if err := s.Err(); err != nil {
		return err
	}

	symTab := gram.SymbolTable()
	for _, e := range parser.RuleExpectations(gram) {
		report.Counts = append(report.Counts, &ruleCount{
			Rule:       e.Rule.Num,
			Production: e.Rule.Production.Name,
			Text:       ruleText(symTab, e.Rule),
			Count:      e.Count,
		})
	}

	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%v\n", string(b))

	return nil
}

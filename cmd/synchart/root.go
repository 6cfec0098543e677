package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	verr "github.com/nihei9/synchart/error"
	"github.com/nihei9/synchart/config"
	"github.com/nihei9/synchart/grammar"
	"github.com/nihei9/synchart/spec"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "synchart",
	Short: "Parse sentences into meanings with a synchronous grammar",
	Long: `synchart provides the following features:
- Validates a synchronous grammar between sentences and meanings.
- Parses sentences into meaning representations.
- Computes the expected counts of rules over a corpus of sentences paired with meanings.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(os.Stderr, err)
		return err
	}
	return nil
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// printError prints an error and, when the error or one it wraps was raised
// with a stack trace, the trace too.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%v\n", err)
	var st stackTracer
	if errors.As(err, &st) {
		fmt.Fprintf(w, "%+v\n", st.StackTrace())
	}
}

// recoverPanic turns a panic into an error and prints its stack.
func recoverPanic(retErr *error) {
	v := recover()
	if v == nil {
		return
	}
	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("an unexpected error occurred: %v", v)
	}
	fmt.Fprintf(os.Stderr, "%v:\n%v", err, string(debug.Stack()))
	*retErr = err
}

func readGrammar(path string) (gram *grammar.Grammar, retErr error) {
	defer func() {
		if retErr == nil {
			return
		}
		specErrs, ok := retErr.(verr.SpecErrors)
		if !ok {
			return
		}
		for _, err := range specErrs {
			err.FilePath = path
			err.SourceName = path
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	ast, err := spec.Parse(f)
	if err != nil {
		return nil, err
	}

	b := grammar.GrammarBuilder{
		AST: ast,
	}
	return b.Build()
}

type configFlags struct {
	path       *string
	mode       *string
	k          *int
	gapPenalty *float64
	maxResults *int
	noPruning  *bool
	logLevel   *string
}

func addConfigFlags(cmd *cobra.Command) *configFlags {
	return &configFlags{
		path:       cmd.Flags().StringP("config", "c", "", "configuration file path"),
		mode:       cmd.Flags().String("mode", "", "scoring mode: viterbi, kbest, or marginal"),
		k:          cmd.Flags().IntP("k", "k", 0, "the number of derivations kept by each item in kbest mode"),
		gapPenalty: cmd.Flags().Float64("gap-penalty", 0, "the penalty of a skipped word"),
		maxResults: cmd.Flags().Int("max-results", 0, "the maximum number of parses per sentence (0 means no limit)"),
		noPruning:  cmd.Flags().Bool("no-pruning", false, "disable left-corner pruning"),
		logLevel:   cmd.Flags().String("log-level", "", "log level: debug, info, warn, or error"),
	}
}

// load reads the configuration file and overrides it with the flags set on
// the command line.
func (f *configFlags) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	c := config.Default()
	if *f.path != "" {
		var err error
		c, err = config.Load(*f.path)
		if err != nil {
			return nil, nil, fmt.Errorf("Cannot read the configuration: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		c.Mode = config.Mode(*f.mode)
	}
	if flags.Changed("k") {
		c.K = *f.k
		if !flags.Changed("mode") && c.Mode == config.ModeViterbi {
			c.Mode = config.ModeKBest
		}
	}
	if flags.Changed("gap-penalty") {
		c.GapPenalty = *f.gapPenalty
	}
	if flags.Changed("max-results") {
		c.MaxResults = *f.maxResults
	}
	if flags.Changed("no-pruning") {
		c.LeftCornerPruning = !*f.noPruning
	}
	if flags.Changed("log-level") {
		c.LogLevel = *f.logLevel
	}
	err := c.Validate()
	if err != nil {
		return nil, nil, err
	}

	level, err := c.Level()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	return c, logger, nil
}

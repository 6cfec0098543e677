package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nihei9/synchart/parser"
	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeViterbi  = Mode("viterbi")
	ModeKBest    = Mode("kbest")
	ModeMarginal = Mode("marginal")
)

// Config is a parser configuration. Fields missing from a file keep their
// default values.
type Config struct {
	Mode              Mode    `yaml:"mode"`
	K                 int     `yaml:"k"`
	LeftCornerPruning bool    `yaml:"left_corner_pruning"`
	DropEmptyCoverage bool    `yaml:"drop_empty_coverage"`
	GapPenalty        float64 `yaml:"gap_penalty"`
	MaxResults        int     `yaml:"max_results"`
	LogLevel          string  `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Mode:              ModeViterbi,
		K:                 1,
		LeftCornerPruning: true,
		DropEmptyCoverage: true,
		GapPenalty:        parser.DefaultGapPenalty,
		MaxResults:        parser.DefaultMaxResults,
		LogLevel:          "warn",
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return c, nil
}

// Parse reads a YAML configuration. Unknown keys are errors.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	err := d.Decode(c)
	if err != nil && err != io.EOF {
		return nil, err
	}
	err = c.Validate()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeViterbi, ModeMarginal:
	case ModeKBest:
		if c.K < 1 {
			return fmt.Errorf("k must be greater than or equal to 1; k: %v", c.K)
		}
	default:
		return fmt.Errorf("unknown mode; mode: %v", c.Mode)
	}
	if c.GapPenalty < 0 {
		return fmt.Errorf("gap_penalty must be non-negative; gap_penalty: %v", c.GapPenalty)
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("max_results must be non-negative; max_results: %v", c.MaxResults)
	}
	_, err := c.Level()
	return err
}

func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.LogLevel))
	if err != nil {
		return 0, fmt.Errorf("unknown log_level; log_level: %v", c.LogLevel)
	}
	return l, nil
}

// Options returns the parser options the configuration describes. The logger
// can be nil.
func (c *Config) Options(logger *slog.Logger) []parser.ParserOption {
	opts := []parser.ParserOption{
		parser.LeftCornerPruning(c.LeftCornerPruning),
		parser.DropEmptyCoverage(c.DropEmptyCoverage),
		parser.GapPenalty(c.GapPenalty),
		parser.MaxResults(c.MaxResults),
	}
	switch c.Mode {
	case ModeViterbi:
		opts = append(opts, parser.KBest(1))
	case ModeKBest:
		opts = append(opts, parser.KBest(c.K))
	case ModeMarginal:
		opts = append(opts, parser.FullMarginal())
	}
	if logger != nil {
		opts = append(opts, parser.Logger(logger))
	}
	return opts
}

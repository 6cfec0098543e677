package parser

import (
	"math"
	"strings"
	"testing"

	"github.com/nihei9/synchart/grammar"
	"github.com/nihei9/synchart/meaning"
	"github.com/nihei9/synchart/spec"
)

func buildTestGrammar(t *testing.T, src string) *grammar.Grammar {
	t.Helper()

	ast, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := grammar.GrammarBuilder{
		AST: ast,
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func buildTestMeaning(t *testing.T, g *grammar.Grammar, src string) *meaning.Meaning {
	t.Helper()

	n, err := meaning.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	m, err := meaning.Build(g, n)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func newTestSentence(t *testing.T, g *grammar.Grammar, text string) *Sentence {
	t.Helper()

	sent, err := NewSentence(g, text)
	if err != nil {
		t.Fatal(err)
	}
	return sent
}

func newTestParser(t *testing.T, g *grammar.Grammar, opts ...ParserOption) *Parser {
	t.Helper()

	p, err := NewParser(g, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func approxEqual(x, y float64) bool {
	return math.Abs(x-y) < 1e-9
}

package grammar

import (
	"strings"
	"testing"

	"github.com/nihei9/synchart/grammar/symbol"
	"github.com/nihei9/synchart/spec"
)

type testSymbolGenerator func(text string) symbol.Symbol

func newTestSymbolGenerator(t *testing.T, symTab *symbol.SymbolTableReader) testSymbolGenerator {
	return func(text string) symbol.Symbol {
		t.Helper()

		sym, ok := symTab.ToSymbol(text)
		if !ok {
			t.Fatalf("symbol was not found: %v", text)
		}
		return sym
	}
}

type testKeyGenerator func(text string, arity int) NonterminalKey

func newTestKeyGenerator(t *testing.T, genSym testSymbolGenerator) testKeyGenerator {
	return func(text string, arity int) NonterminalKey {
		t.Helper()

		return NonterminalKey{
			Symbol: genSym(text),
			Arity:  arity,
		}
	}
}

func buildTestGrammar(t *testing.T, src string) *Grammar {
	t.Helper()

	ast, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := GrammarBuilder{
		AST: ast,
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

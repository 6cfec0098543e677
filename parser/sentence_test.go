package parser

import (
	"testing"

	"github.com/nihei9/synchart/grammar/symbol"
)

func TestNewSentence(t *testing.T) {
	g := buildTestGrammar(t, testGapGrammar)
	sent := newTestSentence(t, g, " find  rivers\t42 r2d2 x_1 3.5 ")

	tests := []struct {
		word  string
		class symbol.WordClass
		known bool
	}{
		{word: "find", class: symbol.WordClassOther, known: true},
		{word: "rivers", class: symbol.WordClassOther, known: true},
		{word: "42", class: symbol.WordClassNumber},
		{word: "r2d2", class: symbol.WordClassIdentifier},
		{word: "x_1", class: symbol.WordClassIdentifier},
		{word: "3.5", class: symbol.WordClassNumber},
	}
	if sent.Len() != len(tests) {
		t.Fatalf("unexpected word count; want: %v, got: %v (%v)", len(tests), sent.Len(), sent.Words)
	}
	for i, tt := range tests {
		if sent.Words[i] != tt.word {
			t.Fatalf("unexpected word; want: %v, got: %v", tt.word, sent.Words[i])
		}
		if sent.Classes[i] != tt.class {
			t.Fatalf("unexpected class; word: %v, want: %v, got: %v", tt.word, tt.class, sent.Classes[i])
		}
		if sent.Symbols[i].IsNil() == tt.known {
			t.Fatalf("unexpected symbol; word: %v, symbol: %v", tt.word, sent.Symbols[i])
		}
	}
	if sent.String() != "find rivers 42 r2d2 x_1 3.5" {
		t.Fatalf("unexpected string: %v", sent.String())
	}
}

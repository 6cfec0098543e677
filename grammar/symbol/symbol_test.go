package symbol

import "testing"

func TestSymbol(t *testing.T) {
	tab := NewSymbolTable()
	w := tab.Writer()
	_, _ = w.RegisterStartSymbol("QUERY'")
	_, _ = w.RegisterNonTerminalSymbol("QUERY")
	_, _ = w.RegisterNonTerminalSymbol("FORM")
	_, _ = w.RegisterNonTerminalSymbol("NUM")
	_, _ = w.RegisterTerminalSymbol("what")
	_, _ = w.RegisterTerminalSymbol("answer")
	_, _ = w.RegisterTerminalSymbol("(")
	_, _ = w.RegisterTerminalSymbol(")")

	nonTermTexts := []string{
		"", // Nil
		"QUERY'",
		"QUERY",
		"FORM",
		"NUM",
	}

	tests := []struct {
		text          string
		isStart       bool
		isWildcard    bool
		isNonTerminal bool
		isTerminal    bool
	}{
		{
			text:          "QUERY'",
			isStart:       true,
			isNonTerminal: true,
		},
		{
			text:          "QUERY",
			isNonTerminal: true,
		},
		{
			text:          "FORM",
			isNonTerminal: true,
		},
		{
			text:          "NUM",
			isNonTerminal: true,
		},
		{
			text:       "what",
			isTerminal: true,
		},
		{
			text:       "answer",
			isTerminal: true,
		},
		{
			text:       "(",
			isTerminal: true,
		},
		{
			text:       ")",
			isTerminal: true,
		},
		{
			text:       SymbolNameWildcardAny,
			isWildcard: true,
			isTerminal: true,
		},
		{
			text:       SymbolNameWildcardNumber,
			isWildcard: true,
			isTerminal: true,
		},
		{
			text:       SymbolNameWildcardID,
			isWildcard: true,
			isTerminal: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			r := tab.Reader()
			sym, ok := r.ToSymbol(tt.text)
			if !ok {
				t.Fatalf("symbol was not found")
			}
			testSymbolProperty(t, sym, false, tt.isStart, tt.isWildcard, tt.isNonTerminal, tt.isTerminal)
			text, ok := r.ToText(sym)
			if !ok {
				t.Fatalf("text was not found")
			}
			if text != tt.text {
				t.Fatalf("unexpected text representation; want: %v, got: %v", tt.text, text)
			}
		})
	}

	t.Run("Nil", func(t *testing.T) {
		testSymbolProperty(t, SymbolNil, true, false, false, false, false)
	})

	t.Run("texts of non-terminals", func(t *testing.T) {
		r := tab.Reader()
		ts, err := r.NonTerminalTexts()
		if err != nil {
			t.Fatal(err)
		}
		if len(ts) != len(nonTermTexts) {
			t.Fatalf("unexpected non-terminal count; want: %v (%#v), got: %v (%#v)", len(nonTermTexts), nonTermTexts, len(ts), ts)
		}
		for i, text := range ts {
			if text != nonTermTexts[i] {
				t.Fatalf("unexpected non-terminal; want: %v, got: %v", nonTermTexts[i], text)
			}
		}
		if c := r.NonTerminalCount(); c != 4 {
			t.Fatalf("unexpected non-terminal count; want: 4, got: %v", c)
		}
	})

	t.Run("terminals exclude wildcards", func(t *testing.T) {
		r := tab.Reader()
		syms := r.TerminalSymbols()
		if len(syms) != 4 {
			t.Fatalf("unexpected terminal count; want: 4, got: %v", len(syms))
		}
		for _, sym := range syms {
			if sym.IsWildcard() {
				t.Fatalf("a wildcard was returned: %v", sym)
			}
		}
	})

	t.Run("a name cannot be both a terminal and a non-terminal", func(t *testing.T) {
		_, err := w.RegisterTerminalSymbol("FORM")
		if err == nil {
			t.Fatal("an error was expected")
		}
		_, err = w.RegisterNonTerminalSymbol("what")
		if err == nil {
			t.Fatal("an error was expected")
		}
	})
}

func TestSymbol_MatchesClass(t *testing.T) {
	tests := []struct {
		sym     Symbol
		class   WordClass
		matched bool
	}{
		{sym: SymbolWildcardAny, class: WordClassOther, matched: true},
		{sym: SymbolWildcardAny, class: WordClassNumber, matched: true},
		{sym: SymbolWildcardAny, class: WordClassIdentifier, matched: true},
		{sym: SymbolWildcardNumber, class: WordClassNumber, matched: true},
		{sym: SymbolWildcardNumber, class: WordClassOther, matched: false},
		{sym: SymbolWildcardID, class: WordClassIdentifier, matched: true},
		{sym: SymbolWildcardID, class: WordClassNumber, matched: false},
		{sym: SymbolNil, class: WordClassOther, matched: false},
	}
	for _, tt := range tests {
		t.Run(tt.sym.String()+"/"+tt.class.String(), func(t *testing.T) {
			if m := tt.sym.MatchesClass(tt.class); m != tt.matched {
				t.Fatalf("unexpected result; want: %v, got: %v", tt.matched, m)
			}
		})
	}
}

func testSymbolProperty(t *testing.T, sym Symbol, isNil, isStart, isWildcard, isNonTerminal, isTerminal bool) {
	t.Helper()

	if v := sym.IsNil(); v != isNil {
		t.Fatalf("isNil property is mismatched; want: %v, got: %v", isNil, v)
	}
	if v := sym.IsStart(); v != isStart {
		t.Fatalf("isStart property is mismatched; want: %v, got: %v", isStart, v)
	}
	if v := sym.IsWildcard(); v != isWildcard {
		t.Fatalf("isWildcard property is mismatched; want: %v, got: %v", isWildcard, v)
	}
	if v := sym.IsNonTerminal(); v != isNonTerminal {
		t.Fatalf("isNonTerminal property is mismatched; want: %v, got: %v", isNonTerminal, v)
	}
	if v := sym.IsTerminal(); v != isTerminal {
		t.Fatalf("isTerminal property is mismatched; want: %v, got: %v", isTerminal, v)
	}
}

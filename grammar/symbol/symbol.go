package symbol

import (
	"fmt"
	"sort"
)

type symbolKind string

const (
	symbolKindNonTerminal = symbolKind("non-terminal")
	symbolKindTerminal    = symbolKind("terminal")
)

func (t symbolKind) String() string {
	return string(t)
}

type SymbolNum uint16

func (n SymbolNum) Int() int {
	return int(n)
}

// Symbol is a bit-packed symbol shared by both sides of a synchronous grammar.
// Terminals are natural-language words and meaning-representation tokens, and
// non-terminals are the meaning-representation non-terminals.
type Symbol uint16

func (s Symbol) String() string {
	kind, isStart, isWildcard, num := s.describe()
	var prefix string
	switch {
	case isStart:
		prefix = "s"
	case isWildcard:
		prefix = "w"
	case kind == symbolKindNonTerminal:
		prefix = "n"
	case kind == symbolKindTerminal:
		prefix = "t"
	default:
		prefix = "?"
	}
	return fmt.Sprintf("%v%v", prefix, num)
}

const (
	maskKindPart    = uint16(0x8000) // 1000 0000 0000 0000
	maskNonTerminal = uint16(0x0000) // 0000 0000 0000 0000
	maskTerminal    = uint16(0x8000) // 1000 0000 0000 0000

	maskSubKindpart       = uint16(0x4000) // 0100 0000 0000 0000
	maskNonStartAndNonWC  = uint16(0x0000) // 0000 0000 0000 0000
	maskStartOrWildcard   = uint16(0x4000) // 0100 0000 0000 0000
	maskNumberPart        = uint16(0x3fff) // 0011 1111 1111 1111
	symbolNumStart        = uint16(0x0001) // 0000 0000 0000 0001
	symbolNumWildcardAny  = uint16(0x0001)
	symbolNumWildcardNum  = uint16(0x0002)
	symbolNumWildcardID   = uint16(0x0003)

	SymbolNil   = Symbol(0)                                                       // 0000 0000 0000 0000
	symbolStart = Symbol(maskNonTerminal | maskStartOrWildcard | symbolNumStart) // 0100 0000 0000 0001

	// Wildcard terminals match a word by its class, not by its spelling.
	SymbolWildcardAny    = Symbol(maskTerminal | maskStartOrWildcard | symbolNumWildcardAny) // 1100 0000 0000 0001
	SymbolWildcardNumber = Symbol(maskTerminal | maskStartOrWildcard | symbolNumWildcardNum) // 1100 0000 0000 0010
	SymbolWildcardID     = Symbol(maskTerminal | maskStartOrWildcard | symbolNumWildcardID)  // 1100 0000 0000 0011

	SymbolNameWildcardAny    = "*"
	SymbolNameWildcardNumber = "*n"
	SymbolNameWildcardID     = "*id"

	nonTerminalNumMin = SymbolNum(2) // The number 1 is used by a start symbol.
	terminalNumMin    = SymbolNum(1)
	symbolNumMax      = SymbolNum(0xffff) >> 2 // 0011 1111 1111 1111
)

// WordClass is the lexical class of a sentence word. Wildcard terminals match
// words by class.
type WordClass int

const (
	WordClassOther WordClass = iota
	WordClassNumber
	WordClassIdentifier
)

func (c WordClass) String() string {
	switch c {
	case WordClassNumber:
		return "number"
	case WordClassIdentifier:
		return "identifier"
	}
	return "word"
}

func newSymbol(kind symbolKind, isStart bool, num SymbolNum) (Symbol, error) {
	if num > symbolNumMax {
		return SymbolNil, fmt.Errorf("a symbol number exceeds the limit; limit: %v, passed: %v", symbolNumMax, num)
	}
	if kind == symbolKindTerminal && isStart {
		return SymbolNil, fmt.Errorf("a start symbol must be a non-terminal symbol")
	}

	kindMask := maskNonTerminal
	if kind == symbolKindTerminal {
		kindMask = maskTerminal
	}
	startMask := maskNonStartAndNonWC
	if isStart {
		startMask = maskStartOrWildcard
	}
	return Symbol(kindMask | startMask | uint16(num)), nil
}

func (s Symbol) Num() SymbolNum {
	_, _, _, num := s.describe()
	return num
}

func (s Symbol) Byte() []byte {
	if s.IsNil() {
		return []byte{0, 0}
	}
	return []byte{byte(uint16(s) >> 8), byte(uint16(s) & 0x00ff)}
}

func (s Symbol) IsNil() bool {
	_, _, _, num := s.describe()
	return num == 0
}

func (s Symbol) IsStart() bool {
	if s.IsNil() {
		return false
	}
	_, isStart, _, _ := s.describe()
	return isStart
}

func (s Symbol) IsWildcard() bool {
	if s.IsNil() {
		return false
	}
	_, _, isWildcard, _ := s.describe()
	return isWildcard
}

func (s Symbol) IsNonTerminal() bool {
	if s.IsNil() {
		return false
	}
	kind, _, _, _ := s.describe()
	return kind == symbolKindNonTerminal
}

func (s Symbol) IsTerminal() bool {
	if s.IsNil() {
		return false
	}
	return !s.IsNonTerminal()
}

// MatchesClass reports whether a wildcard symbol accepts a word of the class.
// A non-wildcard symbol never matches by class.
func (s Symbol) MatchesClass(c WordClass) bool {
	switch s {
	case SymbolWildcardAny:
		return true
	case SymbolWildcardNumber:
		return c == WordClassNumber
	case SymbolWildcardID:
		return c == WordClassIdentifier
	}
	return false
}

func (s Symbol) describe() (symbolKind, bool, bool, SymbolNum) {
	kind := symbolKindNonTerminal
	if uint16(s)&maskKindPart > 0 {
		kind = symbolKindTerminal
	}
	isStart := false
	isWildcard := false
	if uint16(s)&maskSubKindpart > 0 {
		if kind == symbolKindNonTerminal {
			isStart = true
		} else {
			isWildcard = true
		}
	}
	num := SymbolNum(uint16(s) & maskNumberPart)
	return kind, isStart, isWildcard, num
}

type SymbolTable struct {
	text2Sym     map[string]Symbol
	sym2Text     map[Symbol]string
	nonTermTexts []string
	termTexts    []string
	nonTermNum   SymbolNum
	termNum      SymbolNum
}

type SymbolTableWriter struct {
	*SymbolTable
}

type SymbolTableReader struct {
	*SymbolTable
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		text2Sym: map[string]Symbol{
			SymbolNameWildcardAny:    SymbolWildcardAny,
			SymbolNameWildcardNumber: SymbolWildcardNumber,
			SymbolNameWildcardID:     SymbolWildcardID,
		},
		sym2Text: map[Symbol]string{
			SymbolWildcardAny:    SymbolNameWildcardAny,
			SymbolWildcardNumber: SymbolNameWildcardNumber,
			SymbolWildcardID:     SymbolNameWildcardID,
		},
		termTexts: []string{
			"", // Nil
		},
		nonTermTexts: []string{
			"", // Nil
			"", // Start Symbol
		},
		nonTermNum: nonTerminalNumMin,
		termNum:    terminalNumMin,
	}
}

func (t *SymbolTable) Writer() *SymbolTableWriter {
	return &SymbolTableWriter{
		SymbolTable: t,
	}
}

func (t *SymbolTable) Reader() *SymbolTableReader {
	return &SymbolTableReader{
		SymbolTable: t,
	}
}

func (w *SymbolTableWriter) RegisterStartSymbol(text string) (Symbol, error) {
	if sym, ok := w.text2Sym[text]; ok && sym != symbolStart {
		return SymbolNil, fmt.Errorf("the start symbol name is already used; name: %v", text)
	}
	w.text2Sym[text] = symbolStart
	w.sym2Text[symbolStart] = text
	w.nonTermTexts[symbolStart.Num().Int()] = text
	return symbolStart, nil
}

func (w *SymbolTableWriter) RegisterNonTerminalSymbol(text string) (Symbol, error) {
	if sym, ok := w.text2Sym[text]; ok {
		if !sym.IsNonTerminal() {
			return SymbolNil, fmt.Errorf("a terminal symbol has the same name; name: %v", text)
		}
		return sym, nil
	}
	sym, err := newSymbol(symbolKindNonTerminal, false, w.nonTermNum)
	if err != nil {
		return SymbolNil, err
	}
	w.nonTermNum++
	w.text2Sym[text] = sym
	w.sym2Text[sym] = text
	w.nonTermTexts = append(w.nonTermTexts, text)
	return sym, nil
}

func (w *SymbolTableWriter) RegisterTerminalSymbol(text string) (Symbol, error) {
	if sym, ok := w.text2Sym[text]; ok {
		if !sym.IsTerminal() {
			return SymbolNil, fmt.Errorf("a non-terminal symbol has the same name; name: %v", text)
		}
		return sym, nil
	}
	sym, err := newSymbol(symbolKindTerminal, false, w.termNum)
	if err != nil {
		return SymbolNil, err
	}
	w.termNum++
	w.text2Sym[text] = sym
	w.sym2Text[sym] = text
	w.termTexts = append(w.termTexts, text)
	return sym, nil
}

func (t *SymbolTable) ToSymbol(text string) (Symbol, bool) {
	if sym, ok := t.text2Sym[text]; ok {
		return sym, true
	}
	return SymbolNil, false
}

func (t *SymbolTable) ToText(sym Symbol) (string, bool) {
	text, ok := t.sym2Text[sym]
	return text, ok
}

// TerminalSymbols returns the terminal symbols except the wildcards.
func (r *SymbolTableReader) TerminalSymbols() []Symbol {
	syms := make([]Symbol, 0, r.termNum.Int()-terminalNumMin.Int())
	for sym := range r.sym2Text {
		if !sym.IsTerminal() || sym.IsWildcard() {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

func (r *SymbolTableReader) NonTerminalSymbols() []Symbol {
	syms := make([]Symbol, 0, r.nonTermNum.Int()-nonTerminalNumMin.Int()+1)
	for sym := range r.sym2Text {
		if !sym.IsNonTerminal() {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

// NonTerminalCount returns the number of non-terminals including the start symbol.
// Non-terminal numbers are dense in [1, NonTerminalCount].
func (r *SymbolTableReader) NonTerminalCount() int {
	return r.nonTermNum.Int() - 1
}

func (r *SymbolTableReader) NonTerminalTexts() ([]string, error) {
	if r.nonTermTexts[symbolStart.Num().Int()] == "" {
		return nil, fmt.Errorf("symbol table has no start symbol")
	}
	return r.nonTermTexts, nil
}

package meaning

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nihei9/synchart/grammar"
	"github.com/nihei9/synchart/grammar/symbol"
)

// Term is a meaning tree whose variables are meaning-level ids. Both gold
// meanings and parse results are turned into terms to be rendered.
type Term struct {
	Production *grammar.Production
	Vars       []int
	Literal    string
	Children   []*Term
}

func FromMeaning(m *Meaning) *Term {
	var build func(i int) *Term
	build = func(i int) *Term {
		t := &Term{
			Production: m.Linear[i],
			Vars:       m.Vars[i],
			Literal:    m.Literals[i],
		}
		for _, c := range m.Child[i] {
			t.Children = append(t.Children, build(c))
		}
		return t
	}
	return build(0)
}

// Notation writes the term in the meaning notation. Variables are named A, B,
// ... in order of their first appearance.
func (t *Term) Notation() string {
	names := newVarNamer()
	var b strings.Builder
	var write func(t *Term)
	write = func(t *Term) {
		b.WriteString(t.Production.Name)
		if len(t.Vars) > 0 {
			b.WriteString("[")
			for i, v := range t.Vars {
				if i > 0 {
					b.WriteString(",")
				}
				b.WriteString(names.name(v))
			}
			b.WriteString("]")
		}
		if t.Literal != "" {
			if isIdentifier(t.Literal) {
				fmt.Fprintf(&b, "{%v}", t.Literal)
			} else {
				fmt.Fprintf(&b, "{'%v'}", t.Literal)
			}
		}
		if len(t.Children) > 0 {
			b.WriteString("(")
			for i, c := range t.Children {
				if i > 0 {
					b.WriteString(", ")
				}
				write(c)
			}
			b.WriteString(")")
		}
	}
	write(t)
	return b.String()
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if r == '_' || (unicode.IsLetter(r) && r < unicode.MaxASCII) {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return s != ""
}

// Render returns the canonical MR string of the term. Dummy productions are
// transparent, the children of AC nodes are flattened and sorted, and the
// variables are named A, B, ... in order of their first appearance. Two terms
// denoting the same meaning up to variable renaming and AC reordering render
// to the same string.
func (t *Term) Render(symTab *symbol.SymbolTableReader) string {
	r := &renderer{
		symTab: symTab,
	}
	toks := r.emit(r.normalize(t))
	names := newVarNamer()
	texts := make([]string, len(toks))
	for i, tok := range toks {
		if tok.v >= 0 {
			texts[i] = names.name(tok.v)
			continue
		}
		texts[i] = tok.text
	}
	return joinTokens(texts)
}

type renderToken struct {
	text string
	v    int
}

type renderer struct {
	symTab *symbol.SymbolTableReader
}

func (r *renderer) normalize(t *Term) *Term {
	for t.Production.IsDummy && len(t.Children) == 1 {
		t = t.Children[0]
	}
	n := &Term{
		Production: t.Production,
		Vars:       t.Vars,
		Literal:    t.Literal,
	}
	for _, c := range t.Children {
		nc := r.normalize(c)
		if t.Production.IsAC && nc.Production == t.Production && sameVars(nc.Vars, t.Vars) {
			n.Children = append(n.Children, nc.Children...)
			continue
		}
		n.Children = append(n.Children, nc)
	}
	if n.Production.IsAC {
		keys := make(map[*Term]string, len(n.Children))
		for _, c := range n.Children {
			keys[c] = r.key(c)
		}
		sort.SliceStable(n.Children, func(i, j int) bool {
			return keys[n.Children[i]] < keys[n.Children[j]]
		})
	}
	return n
}

// key renders a normalized term with every variable written as `_`.
func (r *renderer) key(t *Term) string {
	toks := r.emit(t)
	texts := make([]string, len(toks))
	for i, tok := range toks {
		if tok.v >= 0 {
			texts[i] = "_"
			continue
		}
		texts[i] = tok.text
	}
	return joinTokens(texts)
}

func sameVars(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (r *renderer) emit(t *Term) []renderToken {
	var toks []renderToken
	prod := t.Production
	emitRange := func(from, to int, child func(k int)) {
		k := 0
		for pos := 0; pos < len(prod.RHS); pos++ {
			if pos < from || pos >= to {
				if prod.RHS[pos].IsNonTerminal() {
					k++
				}
				continue
			}
			sym := prod.RHS[pos]
			switch {
			case sym.IsVariable():
				v := -1
				if sym.Var < len(t.Vars) {
					v = t.Vars[sym.Var]
				}
				toks = append(toks, renderToken{v: v, text: "?"})
			case sym.IsNonTerminal():
				child(k)
				k++
			case sym.Symbol.IsWildcard():
				toks = append(toks, renderToken{text: t.Literal, v: -1})
			default:
				text, _ := r.symTab.ToText(sym.Symbol)
				toks = append(toks, renderToken{text: text, v: -1})
			}
		}
	}
	emitChild := func(k int) {
		if k < len(t.Children) {
			toks = append(toks, r.emit(t.Children[k])...)
		}
	}

	if !prod.IsAC {
		emitRange(0, len(prod.RHS), emitChild)
		return toks
	}

	first := prod.ChildPosition(0)
	second := prod.ChildPosition(1)
	last := prod.ChildPosition(prod.ChildCount() - 1)
	emitRange(0, first, nil)
	for j := range t.Children {
		if j > 0 {
			emitRange(first+1, second, nil)
		}
		emitChild(j)
	}
	emitRange(last+1, len(prod.RHS), nil)
	return toks
}

func joinTokens(texts []string) string {
	var b strings.Builder
	for i, text := range texts {
		if i > 0 && endsWithWordChar(texts[i-1]) && beginsWithWordChar(text) {
			b.WriteString(" ")
		}
		b.WriteString(text)
	}
	return b.String()
}

func isWordChar(r rune) bool {
	return r == '_' || r == '\'' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func beginsWithWordChar(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && isWordChar(r)
}

func endsWithWordChar(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && isWordChar(r)
}

type varNamer struct {
	names map[int]string
}

func newVarNamer() *varNamer {
	return &varNamer{
		names: map[int]string{},
	}
}

func (n *varNamer) name(v int) string {
	if name, ok := n.names[v]; ok {
		return name
	}
	i := len(n.names)
	name := string(rune('A' + i%26))
	if i >= 26 {
		name = fmt.Sprintf("%v%v", name, i/26)
	}
	n.names[v] = name
	return name
}

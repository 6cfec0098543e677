package grammar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/nihei9/synchart/grammar/symbol"
)

// NonterminalKey identifies a non-terminal together with its arity. Rules are
// looked up by key because the arity decides which rules are admissible.
type NonterminalKey struct {
	Symbol symbol.Symbol
	Arity  int
}

// Nonterminal is a non-terminal symbol with its arguments. Each argument is a
// local variable slot of the production the non-terminal belongs to.
type Nonterminal struct {
	Symbol symbol.Symbol
	Args   []int
}

func (n *Nonterminal) Arity() int {
	return len(n.Args)
}

func (n *Nonterminal) Key() NonterminalKey {
	return NonterminalKey{
		Symbol: n.Symbol,
		Arity:  len(n.Args),
	}
}

// Equals reports whether both non-terminals have the same symbol and the same
// arguments.
func (n *Nonterminal) Equals(m *Nonterminal) bool {
	if n.Symbol != m.Symbol || len(n.Args) != len(m.Args) {
		return false
	}
	for i, a := range n.Args {
		if m.Args[i] != a {
			return false
		}
	}
	return true
}

// Matches compares only the symbols.
func (n *Nonterminal) Matches(m *Nonterminal) bool {
	return n.Symbol == m.Symbol
}

// MRSymbol is an element of the meaning side of a production. Var is the local
// slot of a variable and -1 for the other kinds.
type MRSymbol struct {
	Symbol symbol.Symbol
	Args   []int
	Var    int
}

func (s MRSymbol) IsVariable() bool {
	return s.Var >= 0
}

func (s MRSymbol) IsNonTerminal() bool {
	return s.Var < 0 && s.Symbol.IsNonTerminal()
}

type productionID [32]byte

func (id productionID) String() string {
	return hex.EncodeToString(id[:])
}

func genProductionID(lhs *Nonterminal, rhs []MRSymbol) productionID {
	seq := lhs.Symbol.Byte()
	seq = append(seq, byte(len(lhs.Args)))
	for _, a := range lhs.Args {
		seq = append(seq, byte(a))
	}
	for _, sym := range rhs {
		if sym.IsVariable() {
			seq = append(seq, 0xff, 0xff, byte(sym.Var))
			continue
		}
		seq = append(seq, sym.Symbol.Byte()...)
		if sym.Symbol.IsNonTerminal() {
			seq = append(seq, byte(len(sym.Args)))
			for _, a := range sym.Args {
				seq = append(seq, byte(a))
			}
		}
	}
	return productionID(sha256.Sum256(seq))
}

type productionNum uint16

const (
	productionNumNil   = productionNum(0)
	productionNumStart = productionNum(1)
	productionNumMin   = productionNum(2)
)

func (n productionNum) Int() int {
	return int(n)
}

// Production is an interned meaning-representation production. Structurally
// equal productions are the same instance within a grammar.
type Production struct {
	id         productionID
	num        productionNum
	Name       string
	LHS        *Nonterminal
	RHS        []MRSymbol
	IsAC       bool
	IsOrig     bool
	IsDummy    bool
	VarCount   int
	Denotation Denotation

	children []int
	wildcard int
}

func newProduction(name string, lhs *Nonterminal, rhs []MRSymbol, varCount int) (*Production, error) {
	if lhs == nil || lhs.Symbol.IsNil() {
		return nil, fmt.Errorf("LHS must be a non-nil symbol; name: %v", name)
	}
	if len(rhs) == 0 {
		return nil, fmt.Errorf("RHS must contain at least one symbol; name: %v", name)
	}
	var children []int
	wildcard := -1
	for i, sym := range rhs {
		if !sym.IsVariable() && sym.Symbol.IsNil() {
			return nil, fmt.Errorf("a symbol of RHS must be a non-nil symbol; name: %v", name)
		}
		switch {
		case sym.IsNonTerminal():
			children = append(children, i)
		case !sym.IsVariable() && sym.Symbol.IsWildcard():
			wildcard = i
		}
	}

	return &Production{
		id:         genProductionID(lhs, rhs),
		Name:       name,
		LHS:        lhs,
		RHS:        rhs,
		IsOrig:     true,
		IsDummy:    len(rhs) == 1 && len(children) == 1,
		VarCount:   varCount,
		Denotation: UniversalDenotation(),
		children:   children,
		wildcard:   wildcard,
	}, nil
}

func (p *Production) Num() int {
	return p.num.Int()
}

func (p *Production) Equals(q *Production) bool {
	return q.id == p.id
}

// ChildCount returns the number of non-terminals (argument nodes) in the RHS.
func (p *Production) ChildCount() int {
	return len(p.children)
}

// Child returns the k-th non-terminal of the RHS. k is 0-origin.
func (p *Production) Child(k int) *Nonterminal {
	sym := p.RHS[p.children[k]]
	return &Nonterminal{
		Symbol: sym.Symbol,
		Args:   sym.Args,
	}
}

// ChildPosition returns the position in the RHS of the k-th non-terminal.
func (p *Production) ChildPosition(k int) int {
	return p.children[k]
}

func (p *Production) IsLeaf() bool {
	return len(p.children) == 0
}

func (p *Production) HasWildcard() bool {
	return p.wildcard >= 0
}

func (p *Production) Wildcard() symbol.Symbol {
	if p.wildcard < 0 {
		return symbol.SymbolNil
	}
	return p.RHS[p.wildcard].Symbol
}

// LHSSlots returns the local slots the LHS arguments occupy. LHS arguments
// always take the first slots.
func (p *Production) LHSSlots() []int {
	slots := make([]int, len(p.LHS.Args))
	for i := range slots {
		slots[i] = i
	}
	return slots
}

func (p *Production) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v:%v", p.Name, p.LHS.Symbol)
	for _, sym := range p.RHS {
		if sym.IsVariable() {
			fmt.Fprintf(&b, " $%v", sym.Var)
			continue
		}
		fmt.Fprintf(&b, " %v", sym.Symbol)
	}
	return b.String()
}

type productionSet struct {
	lhs2Prods map[NonterminalKey][]*Production
	id2Prod   map[productionID]*Production
	name2Prod map[string]*Production
	prods     []*Production
	num       productionNum
}

func newProductionSet() *productionSet {
	return &productionSet{
		lhs2Prods: map[NonterminalKey][]*Production{},
		id2Prod:   map[productionID]*Production{},
		name2Prod: map[string]*Production{},
		prods:     []*Production{nil, nil},
		num:       productionNumMin,
	}
}

func (ps *productionSet) append(prod *Production) bool {
	if _, ok := ps.id2Prod[prod.id]; ok {
		return false
	}
	if _, ok := ps.name2Prod[prod.Name]; ok {
		return false
	}

	if prod.LHS.Symbol.IsStart() {
		prod.num = productionNumStart
		ps.prods[productionNumStart] = prod
	} else {
		prod.num = ps.num
		ps.num++
		ps.prods = append(ps.prods, prod)
	}

	key := prod.LHS.Key()
	ps.lhs2Prods[key] = append(ps.lhs2Prods[key], prod)
	ps.id2Prod[prod.id] = prod
	ps.name2Prod[prod.Name] = prod

	return true
}

func (ps *productionSet) findByID(id productionID) (*Production, bool) {
	prod, ok := ps.id2Prod[id]
	return prod, ok
}

func (ps *productionSet) findByName(name string) (*Production, bool) {
	prod, ok := ps.name2Prod[name]
	return prod, ok
}

func (ps *productionSet) findByLHS(lhs NonterminalKey) ([]*Production, bool) {
	if lhs.Symbol.IsNil() {
		return nil, false
	}

	prods, ok := ps.lhs2Prods[lhs]
	return prods, ok
}

// getAllProductions returns the productions in the order of their numbers.
func (ps *productionSet) getAllProductions() []*Production {
	var prods []*Production
	for _, prod := range ps.prods {
		if prod == nil {
			continue
		}
		prods = append(prods, prod)
	}
	return prods
}

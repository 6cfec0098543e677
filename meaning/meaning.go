package meaning

import (
	"fmt"

	verr "github.com/nihei9/synchart/error"
	"github.com/nihei9/synchart/grammar"
)

// Meaning is a meaning tree linearized in pre-order. Node 0 is the root, and
// the subtree of node i occupies the indices [i, LastDescendant[i]].
type Meaning struct {
	Linear         []*grammar.Production
	Parent         []int
	Child          [][]int
	LastDescendant []int

	// Vars[i][s] is the meaning variable bound to the local slot s of node i.
	Vars [][]int

	// Literals[i] is the value of the wildcard of node i, or an empty string.
	Literals []string

	VarCount int
	VarNames []string
}

func (m *Meaning) Len() int {
	return len(m.Linear)
}

// ArgVars returns the meaning variables the LHS arguments of node i are bound to.
func (m *Meaning) ArgVars(i int) []int {
	return m.Vars[i][:m.Linear[i].LHS.Arity()]
}

// FreeVars returns the variables node i introduces, that is, the variables of
// its slots that its LHS arguments don't bind.
func (m *Meaning) FreeVars(i int) grammar.VariableSet {
	var all, args grammar.VariableSet
	arity := m.Linear[i].LHS.Arity()
	for s, v := range m.Vars[i] {
		if s < arity {
			args = args.Add(v)
			continue
		}
		all = all.Add(v)
	}
	return all.Minus(args)
}

// IsDescendant reports whether node j is in the subtree of node i.
func (m *Meaning) IsDescendant(i, j int) bool {
	return i <= j && j <= m.LastDescendant[i]
}

func (m *Meaning) String() string {
	return FromMeaning(m).Notation()
}

type builder struct {
	g    *grammar.Grammar
	m    *Meaning
	vars map[string]int
	errs verr.SpecErrors
}

// Build validates a meaning tree against a grammar and linearizes it. Nested
// nodes of the same AC production sharing their variables are flattened into
// one node, so a Meaning never contains such a nesting.
func Build(g *grammar.Grammar, root *Node) (*Meaning, error) {
	b := &builder{
		g:    g,
		m:    &Meaning{},
		vars: map[string]int{},
	}
	b.linearize(flatten(root), -1)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	prod := b.m.Linear[0]
	if prod.LHS.Symbol != g.StartSymbol() {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrRootNotStart,
			Detail: prod.Name,
			Row:    root.Pos.Row,
			Col:    root.Pos.Col,
		})
		return nil, b.errs
	}

	b.checkArgs(root)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	return b.m, nil
}

// flatten returns a tree where the children of an AC node that are nodes of
// the same production with the same variables are replaced with their
// children. The passed tree is left untouched.
func flatten(n *Node) *Node {
	f := &Node{
		Production: n.Production,
		Vars:       n.Vars,
		Literal:    n.Literal,
		Pos:        n.Pos,
	}
	for _, c := range n.Children {
		fc := flatten(c)
		if fc.Production == n.Production && sameNames(fc.Vars, n.Vars) && len(fc.Children) > 1 {
			f.Children = append(f.Children, fc.Children...)
			continue
		}
		f.Children = append(f.Children, fc)
	}
	return f
}

func sameNames(a, b []string) bool {
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

func (b *builder) linearize(n *Node, parent int) int {
	idx := len(b.m.Linear)

	prod, ok := b.g.Production(n.Production)
	if !ok || !prod.IsOrig {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUndefinedProduction,
			Detail: n.Production,
			Row:    n.Pos.Row,
			Col:    n.Pos.Col,
		})
		return idx
	}

	b.m.Linear = append(b.m.Linear, prod)
	b.m.Parent = append(b.m.Parent, parent)
	b.m.Child = append(b.m.Child, nil)
	b.m.LastDescendant = append(b.m.LastDescendant, idx)
	b.m.Vars = append(b.m.Vars, nil)
	b.m.Literals = append(b.m.Literals, n.Literal)

	if len(n.Vars) != prod.VarCount {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrVarCount,
			Detail: fmt.Sprintf("%v takes %v variables", prod.Name, prod.VarCount),
			Row:    n.Pos.Row,
			Col:    n.Pos.Col,
		})
	}
	vars := make([]int, 0, len(n.Vars))
	for _, name := range n.Vars {
		v, ok := b.vars[name]
		if !ok {
			v = len(b.vars)
			if v >= grammar.MaxMeaningVariables {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrTooManyVars,
					Detail: name,
					Row:    n.Pos.Row,
					Col:    n.Pos.Col,
				})
				continue
			}
			b.vars[name] = v
			b.m.VarNames = append(b.m.VarNames, name)
			b.m.VarCount++
		}
		vars = append(vars, v)
	}
	b.m.Vars[idx] = vars

	switch {
	case prod.HasWildcard() && n.Literal == "":
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrLiteralMissing,
			Detail: prod.Name,
			Row:    n.Pos.Row,
			Col:    n.Pos.Col,
		})
	case !prod.HasWildcard() && n.Literal != "":
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUnexpectedLiteral,
			Detail: prod.Name,
			Row:    n.Pos.Row,
			Col:    n.Pos.Col,
		})
	}

	countOK := len(n.Children) == prod.ChildCount()
	if prod.IsAC {
		countOK = len(n.Children) >= 2
	}
	if !countOK {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrChildCount,
			Detail: fmt.Sprintf("%v has %v children", prod.Name, len(n.Children)),
			Row:    n.Pos.Row,
			Col:    n.Pos.Col,
		})
	}

	for k, c := range n.Children {
		if countOK {
			slot := k
			if prod.IsAC {
				slot = 0
			}
			want := prod.Child(slot).Key()
			if cp, ok := b.g.Production(c.Production); ok && cp.LHS.Key() != want {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrChildMismatch,
					Detail: fmt.Sprintf("%v cannot be the child #%v of %v", c.Production, k+1, prod.Name),
					Row:    c.Pos.Row,
					Col:    c.Pos.Col,
				})
			}
		}
		cidx := b.linearize(c, idx)
		b.m.Child[idx] = append(b.m.Child[idx], cidx)
	}
	b.m.LastDescendant[idx] = len(b.m.Linear) - 1

	return idx
}

// checkArgs verifies that the LHS arguments of every child are bound to the
// same variables as the arguments its parent passes to it.
func (b *builder) checkArgs(root *Node) {
	nodes := make([]*Node, 0, b.m.Len())
	var walk func(n *Node)
	walk = func(n *Node) {
		nodes = append(nodes, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(flatten(root))

	for i, prod := range b.m.Linear {
		for k, c := range b.m.Child[i] {
			slot := k
			if prod.IsAC {
				slot = 0
			}
			args := prod.Child(slot).Args
			got := b.m.ArgVars(c)
			for j, a := range args {
				if b.m.Vars[i][a] == got[j] {
					continue
				}
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrVarMismatch,
					Detail: fmt.Sprintf("%v passes %v to %v", prod.Name, b.m.VarNames[b.m.Vars[i][a]], b.m.Linear[c].Name),
					Row:    nodes[c].Pos.Row,
					Col:    nodes[c].Pos.Col,
				})
				break
			}
		}
	}
}

package parser

import (
	"github.com/nihei9/synchart/grammar"
	"github.com/nihei9/synchart/meaning"
)

type literalKey struct {
	prod    *grammar.Production
	literal string
}

// coverageTable holds the initial coverages of the productions against one
// target meaning.
type coverageTable struct {
	m       *meaning.Meaning
	width   int
	prods   map[*grammar.Production]*Coverage
	literal map[literalKey]*Coverage
	empty   *Coverage
}

func newCoverageTable(m *meaning.Meaning) *coverageTable {
	t := &coverageTable{
		m:       m,
		width:   m.Len(),
		prods:   map[*grammar.Production]*Coverage{},
		literal: map[literalKey]*Coverage{},
		empty:   newCoverage(),
	}
	for i, prod := range m.Linear {
		o := t.nodeOption(i)
		c := newCoverage(o)
		t.prods[prod] = t.prods[prod].Union(c)
		if prod.HasWildcard() {
			key := literalKey{
				prod:    prod,
				literal: m.Literals[i],
			}
			t.literal[key] = t.literal[key].Union(c)
		}
	}
	return t
}

// nodeOption returns the option covering just node i. Every local slot of the
// production is bound to the variable the meaning gives it.
func (t *coverageTable) nodeOption(i int) *Option {
	bs := newBits(t.width)
	bs[i/64] |= uint64(1) << uint(i%64)
	var assign grammar.VariableAssignment
	for slot, v := range t.m.Vars[i] {
		assign = assign.Bind(slot, v)
	}
	return &Option{
		Bits:   bs,
		Root:   i,
		Assign: assign,
		Free:   t.m.FreeVars(i),
	}
}

// axiom returns the coverage of the parse axiom, which covers nothing.
func (t *coverageTable) axiom() *Coverage {
	return newCoverage(&Option{
		Bits: newBits(t.width),
		Root: rootAxiom,
	})
}

func (t *coverageTable) forProduction(prod *grammar.Production) *Coverage {
	if c, ok := t.prods[prod]; ok {
		return c
	}
	return t.empty
}

func (t *coverageTable) forLiteral(prod *grammar.Production, literal string) *Coverage {
	if c, ok := t.literal[literalKey{prod: prod, literal: literal}]; ok {
		return c
	}
	return t.empty
}

// findRoot climbs from the node rc toward the node target. It succeeds when
// rc is a child of target, possibly through dummy nodes, or when rc is target
// itself and target is an AC node. Dummy nodes are climbed before testing the
// AC equality. The climbed dummy nodes are returned.
func (t *coverageTable) findRoot(rc, target int) (climbed []int, acMerge bool, ok bool) {
	cur := rc
	for {
		par := t.m.Parent[cur]
		switch {
		case par == target:
			return climbed, false, true
		case par >= 0 && t.m.Linear[par].IsDummy && cur != target:
			climbed = append(climbed, par)
			cur = par
		case cur == target && target >= 0 && t.m.Linear[target].IsAC:
			return climbed, true, true
		default:
			return nil, false, false
		}
	}
}

// combine computes the coverage of the successor of a waiting item w consuming
// a complete item c. Every pair of options of w and c that fits together in the
// meaning yields an option. When no pair fits, the result is empty.
func (t *coverageTable) combine(w, c *Item) *Coverage {
	if w.cov == nil || c.cov == nil {
		return nil
	}

	link := w.rule.NL[w.dot].Link
	childArgs := w.rule.Production.Child(link - 1).Args

	var opts []*Option
	for _, wo := range w.cov.opts {
		for _, co := range c.cov.opts {
			o, ok := t.combinePair(wo, co, link, childArgs)
			if !ok {
				continue
			}
			opts = append(opts, o)
		}
	}
	return newCoverage(opts...)
}

func (t *coverageTable) combinePair(wo, co *Option, link int, childArgs []int) (*Option, bool) {
	target := wo.Root
	climbed, acMerge, ok := t.findRoot(co.Root, target)
	if !ok {
		return nil, false
	}

	top := co.Root
	if len(climbed) > 0 {
		top = climbed[len(climbed)-1]
	}
	if !acMerge {
		if !co.saturated(co.Root, t.m.LastDescendant[co.Root]) {
			return nil, false
		}
		switch {
		case target == rootAxiom:
			if top != 0 || link != 1 {
				return nil, false
			}
		case !t.m.Linear[target].IsAC:
			if link-1 >= len(t.m.Child[target]) || t.m.Child[target][link-1] != top {
				return nil, false
			}
		}
	}

	// The fragments must be disjoint except for the AC node both sides cover
	// when they are merged.
	for i, bits := range wo.Bits {
		common := bits & co.Bits[i]
		if acMerge && target/64 == i {
			common &^= uint64(1) << uint(target%64)
		}
		if common != 0 {
			return nil, false
		}
	}
	for _, d := range climbed {
		if wo.has(d) {
			return nil, false
		}
	}

	// A variable can be introduced by only one node.
	commonFree := wo.Free.Intersect(co.Free)
	if acMerge {
		commonFree = commonFree.Minus(t.m.FreeVars(target))
	}
	if !commonFree.IsEmpty() {
		return nil, false
	}

	var view grammar.VariableAssignment
	if acMerge {
		view = co.Assign
	} else {
		view = co.Assign.Compose(childArgs)
	}
	bits := make([]uint64, len(co.Bits))
	copy(bits, co.Bits)
	for _, d := range climbed {
		bits[d/64] |= uint64(1) << uint(d%64)
	}
	return combineOptions(wo, &Option{
		Bits:   bits,
		Root:   top,
		Assign: view,
		Free:   co.Free,
	})
}

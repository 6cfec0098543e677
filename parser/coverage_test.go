package parser

import (
	"testing"

	"github.com/nihei9/synchart/grammar"
)

func newTestOption(root int, assign grammar.VariableAssignment, nodes ...int) *Option {
	bs := newBits(3)
	for _, n := range nodes {
		bs[n/64] |= uint64(1) << uint(n%64)
	}
	return &Option{
		Bits:   bs,
		Root:   root,
		Assign: assign,
	}
}

func TestCoverage_Algebra(t *testing.T) {
	var unbound grammar.VariableAssignment
	x0 := unbound.Bind(0, 0)
	x1 := unbound.Bind(0, 1)
	y0 := unbound.Bind(1, 0)

	c := newCoverage(newTestOption(rootAxiom, x0, 0), newTestOption(rootAxiom, x1, 0))
	d := newCoverage(newTestOption(rootAxiom, y0, 1), newTestOption(rootAxiom, x0, 2))
	empty := newCoverage()

	tests := []struct {
		caption string
		ok      func() bool
	}{
		{
			caption: "product commutes",
			ok: func() bool {
				return c.Product(d).Equal(d.Product(c))
			},
		},
		{
			caption: "product drops the pairs whose assignments conflict",
			ok: func() bool {
				return c.Product(d).Len() == 3
			},
		},
		{
			caption: "product with an empty coverage is empty",
			ok: func() bool {
				return c.Product(empty).IsEmpty() && empty.Product(c).IsEmpty()
			},
		},
		{
			caption: "a nil coverage is the identity of product",
			ok: func() bool {
				var none *Coverage
				return c.Product(none).Equal(c) && none.Product(c).Equal(c)
			},
		},
		{
			caption: "intersect is idempotent",
			ok: func() bool {
				return c.Intersect(c).Equal(c)
			},
		},
		{
			caption: "intersect keeps the common options only",
			ok: func() bool {
				e := newCoverage(newTestOption(rootAxiom, x1, 0), newTestOption(rootAxiom, y0, 1))
				return c.Intersect(e).Equal(newCoverage(newTestOption(rootAxiom, x1, 0)))
			},
		},
		{
			caption: "union removes duplicates",
			ok: func() bool {
				return c.Union(c).Len() == c.Len()
			},
		},
		{
			caption: "equal coverages have equal hashes regardless of the order of options",
			ok: func() bool {
				e := newCoverage(newTestOption(rootAxiom, x1, 0), newTestOption(rootAxiom, x0, 0))
				return e.Equal(c) && e.Hash() == c.Hash()
			},
		},
		{
			caption: "an empty coverage is distinct from a nil coverage",
			ok: func() bool {
				var none *Coverage
				return empty.IsEmpty() && !none.IsEmpty() && !empty.Equal(none)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			if !tt.ok() {
				t.Fatalf("c: %v, d: %v", c, d)
			}
		})
	}
}

func TestCoverage_WidthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("a panic must occur")
		}
	}()

	narrow := newCoverage(newTestOption(rootAxiom, 0, 0))
	wide := newCoverage(&Option{
		Bits: newBits(65),
		Root: rootAxiom,
	})
	narrow.Product(wide)
}

func TestCoverage_Complete(t *testing.T) {
	g := buildTestGrammar(t, testAnimalGrammar)
	m := buildTestMeaning(t, g, `np(cat)`)
	covs := newCoverageTable(m)

	np, _ := g.Production("np")
	cat, _ := g.Production("cat")
	dog, _ := g.Production("dog")
	if covs.forProduction(np).Len() != 1 || covs.forProduction(cat).Len() != 1 {
		t.Fatalf("a production in the meaning must have an option")
	}
	if !covs.forProduction(dog).IsEmpty() {
		t.Fatalf("a production not in the meaning must have an empty coverage")
	}

	whole := covs.forProduction(np).Product(covs.forProduction(cat))
	if !whole.Complete(m) || !whole.IsSaturated(0, m) {
		t.Fatalf("the coverage must cover the meaning: %v", whole)
	}
	if covs.forProduction(np).Complete(m) || covs.forProduction(np).IsSaturated(0, m) {
		t.Fatalf("the coverage must not cover the meaning: %v", covs.forProduction(np))
	}
	if !covs.forProduction(cat).IsSaturated(1, m) {
		t.Fatalf("a leaf must be saturated by itself")
	}
}

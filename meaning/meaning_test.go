package meaning

import (
	"strings"
	"testing"

	verr "github.com/nihei9/synchart/error"
	"github.com/nihei9/synchart/grammar"
	"github.com/nihei9/synchart/spec"
)

const testGeoGrammar = `
%name geo;
%start QUERY;

production answer : QUERY -> answer ( $x , FORM[$x] ) ;
production state  : FORM[$x] -> state ( $x ) ;
production city   : FORM[$x] -> city ( $x ) ;
production and    : FORM[$x] -> and ( FORM[$x] , FORM[$x] ) %ac ;
production loc    : FORM[$x] -> loc ( $x , PLACE ) ;
production place  : PLACE -> NAME ;
production texas  : NAME -> 'texas' ;
production named  : NAME -> *id ;
`

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

func buildTestMeaning(t *testing.T, g *grammar.Grammar, src string) *Meaning {
	t.Helper()

	n, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	m, err := Build(g, n)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestBuild(t *testing.T) {
	g := buildTestGrammar(t, testGeoGrammar)
	m := buildTestMeaning(t, g, `answer[A](and[A](state[A], and[A](city[A], loc[A](place(texas)))))`)

	expectedLinear := []string{"answer", "and", "state", "city", "loc", "place", "texas"}
	if m.Len() != len(expectedLinear) {
		t.Fatalf("unexpected node count; want: %v, got: %v", len(expectedLinear), m.Len())
	}
	for i, name := range expectedLinear {
		if m.Linear[i].Name != name {
			t.Fatalf("unexpected production; index: %v, want: %v, got: %v", i, name, m.Linear[i].Name)
		}
	}

	expectedParent := []int{-1, 0, 1, 1, 1, 4, 5}
	expectedLastDescendant := []int{6, 6, 2, 3, 6, 6, 6}
	expectedChild := [][]int{{1}, {2, 3, 4}, nil, nil, {5}, {6}, nil}
	for i := range expectedLinear {
		if m.Parent[i] != expectedParent[i] {
			t.Fatalf("unexpected parent; index: %v, want: %v, got: %v", i, expectedParent[i], m.Parent[i])
		}
		if m.LastDescendant[i] != expectedLastDescendant[i] {
			t.Fatalf("unexpected last descendant; index: %v, want: %v, got: %v", i, expectedLastDescendant[i], m.LastDescendant[i])
		}
		if len(m.Child[i]) != len(expectedChild[i]) {
			t.Fatalf("unexpected children; index: %v, want: %v, got: %v", i, expectedChild[i], m.Child[i])
		}
		for k, c := range expectedChild[i] {
			if m.Child[i][k] != c {
				t.Fatalf("unexpected children; index: %v, want: %v, got: %v", i, expectedChild[i], m.Child[i])
			}
		}
	}

	if m.VarCount != 1 || m.VarNames[0] != "A" {
		t.Fatalf("unexpected variables; count: %v, names: %v", m.VarCount, m.VarNames)
	}
	if !m.FreeVars(0).Has(0) {
		t.Fatalf("the root must introduce the variable A")
	}
	if !m.FreeVars(1).IsEmpty() {
		t.Fatalf("the AC node must not introduce variables; got: %v", m.FreeVars(1))
	}
	if args := m.ArgVars(2); len(args) != 1 || args[0] != 0 {
		t.Fatalf("unexpected arguments: %v", args)
	}
	if !m.IsDescendant(4, 6) || m.IsDescendant(2, 3) {
		t.Fatalf("unexpected descendant relation")
	}

	expectedNotation := `answer[A](and[A](state[A], city[A], loc[A](place(texas))))`
	if m.String() != expectedNotation {
		t.Fatalf("unexpected notation; want: %v, got: %v", expectedNotation, m.String())
	}
}

func TestBuild_SemanticErrors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		errs    []*SemanticError
	}{
		{
			caption: "a production must be defined",
			src:     `foo`,
			errs:    []*SemanticError{semErrUndefinedProduction},
		},
		{
			caption: "the root must be a production of the start symbol",
			src:     `state[A]`,
			errs:    []*SemanticError{semErrRootNotStart},
		},
		{
			caption: "a node must have as many children as its production",
			src:     `answer[A]`,
			errs:    []*SemanticError{semErrChildCount},
		},
		{
			caption: "an AC node needs at least two children",
			src:     `answer[A](and[A](state[A]))`,
			errs:    []*SemanticError{semErrChildCount},
		},
		{
			caption: "a child must be a production of the non-terminal of its parent",
			src:     `answer[A](texas)`,
			errs:    []*SemanticError{semErrChildMismatch},
		},
		{
			caption: "a node must bind every variable of its production",
			src:     `answer(state[A])`,
			errs:    []*SemanticError{semErrVarCount},
		},
		{
			caption: "a child must receive the arguments of its parent",
			src:     `answer[A](state[B])`,
			errs:    []*SemanticError{semErrVarMismatch},
		},
		{
			caption: "a wildcard production needs a literal",
			src:     `answer[A](loc[A](place(named)))`,
			errs:    []*SemanticError{semErrLiteralMissing},
		},
		{
			caption: "a non-wildcard production cannot have a literal",
			src:     `answer[A](loc[A](place(texas{foo})))`,
			errs:    []*SemanticError{semErrUnexpectedLiteral},
		},
	}
	g := buildTestGrammar(t, testGeoGrammar)
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			n, err := Parse(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			_, err = Build(g, n)
			if err == nil {
				t.Fatalf("an error must occur")
			}
			specErrs, ok := err.(verr.SpecErrors)
			if !ok {
				t.Fatalf("unexpected error type; want: verr.SpecErrors, got: %T (%v)", err, err)
			}
			if len(specErrs) != len(tt.errs) {
				t.Fatalf("unexpected error count; want: %+v, got: %+v", tt.errs, specErrs)
			}
			for i, e := range tt.errs {
				if specErrs[i].Cause != e {
					t.Fatalf("unexpected error; want: %v, got: %v", e, specErrs[i].Cause)
				}
			}
		})
	}
}

func TestTerm_Render(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		mr      string
	}{
		{
			caption: "AC children are sorted and dummies are transparent",
			src:     `answer[A](and[A](state[A], and[A](city[A], loc[A](place(texas)))))`,
			mr:      `answer(A,and(city(A),loc(A,'texas'),state(A)))`,
		},
		{
			caption: "the order of AC children and the variable names don't matter",
			src:     `answer[X](and[X](loc[X](place(texas)), state[X], city[X]))`,
			mr:      `answer(A,and(city(A),loc(A,'texas'),state(A)))`,
		},
		{
			caption: "a wildcard is rendered as its literal",
			src:     `answer[A](loc[A](place(named{austin})))`,
			mr:      `answer(A,loc(A,austin))`,
		},
	}
	g := buildTestGrammar(t, testGeoGrammar)
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			m := buildTestMeaning(t, g, tt.src)
			mr := FromMeaning(m).Render(g.SymbolTable())
			if mr != tt.mr {
				t.Fatalf("unexpected MR; want: %v, got: %v", tt.mr, mr)
			}
		})
	}
}

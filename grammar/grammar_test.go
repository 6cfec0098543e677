package grammar

import (
	"strings"
	"testing"

	verr "github.com/nihei9/synchart/error"
	"github.com/nihei9/synchart/grammar/symbol"
	"github.com/nihei9/synchart/spec"
)

const testGeoGrammar = `
%name geo;
%start QUERY;
%types city state;

production answer : QUERY -> answer ( $x , FORM[$x] ) ;
production state  : FORM[$x] -> state ( $x ) %types (state) ;
production city   : FORM[$x] -> city ( $x ) %types (city) ;
production and    : FORM[$x] -> and ( FORM[$x] , FORM[$x] ) %ac ;
production loc    : FORM[$x] -> loc ( $x , PLACE ) ;
production place  : PLACE -> NAME ;
production texas  : NAME -> 'texas' ;
production named  : NAME -> *id ;

rule answer : "what" ~1 FORM#1 %weight 0.5 ;
rule answer : "which" FORM#1 ;
rule state  : "states" ;
rule city   : "cities" ;
rule and    : FORM#1 FORM#2 ;
rule loc    : "in" PLACE#1 ;
rule texas  : "texas" ;
rule named  : *id ;
`

func TestGrammarBuilder_Build(t *testing.T) {
	g := buildTestGrammar(t, testGeoGrammar)
	genSym := newTestSymbolGenerator(t, g.SymbolTable())
	genKey := newTestKeyGenerator(t, genSym)

	if g.Name() != "geo" {
		t.Fatalf("unexpected name; want: geo, got: %v", g.Name())
	}
	if !g.AugmentedStartSymbol().IsStart() || g.AugmentedStartSymbol() != genSym("QUERY'") {
		t.Fatalf("unexpected augmented start symbol: %v", g.AugmentedStartSymbol())
	}
	if g.StartSymbol() != genSym("QUERY") {
		t.Fatalf("unexpected start symbol: %v", g.StartSymbol())
	}
	if g.CountNonterminals() != 5 {
		t.Fatalf("unexpected non-terminal count; want: 5, got: %v", g.CountNonterminals())
	}
	if types := g.Types(); len(types) != 2 || types[0] != "city" || types[1] != "state" {
		t.Fatalf("unexpected types: %v", types)
	}

	tests := []struct {
		name     string
		isAC     bool
		isDummy  bool
		isOrig   bool
		varCount int
		children int
		den      Denotation
	}{
		{name: "answer", isOrig: true, varCount: 1, children: 1, den: UniversalDenotation()},
		{name: "state", isOrig: true, varCount: 1, den: NewDenotation(NewTypeTuple(2))},
		{name: "city", isOrig: true, varCount: 1, den: NewDenotation(NewTypeTuple(1))},
		{name: "and", isAC: true, isOrig: true, varCount: 1, children: 2, den: UniversalDenotation()},
		{name: "loc", isOrig: true, varCount: 1, children: 1, den: UniversalDenotation()},
		{name: "place", isDummy: true, isOrig: true, children: 1, den: UniversalDenotation()},
		{name: "QUERY'", isDummy: true, children: 1, den: UniversalDenotation()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prod, ok := g.Production(tt.name)
			if !ok {
				t.Fatalf("production was not found: %v", tt.name)
			}
			if prod.IsAC != tt.isAC || prod.IsDummy != tt.isDummy || prod.IsOrig != tt.isOrig {
				t.Fatalf("unexpected flags; want: ac=%v dummy=%v orig=%v, got: ac=%v dummy=%v orig=%v", tt.isAC, tt.isDummy, tt.isOrig, prod.IsAC, prod.IsDummy, prod.IsOrig)
			}
			if prod.VarCount != tt.varCount {
				t.Fatalf("unexpected variable count; want: %v, got: %v", tt.varCount, prod.VarCount)
			}
			if prod.ChildCount() != tt.children {
				t.Fatalf("unexpected child count; want: %v, got: %v", tt.children, prod.ChildCount())
			}
			if !prod.Denotation.Equal(tt.den) {
				t.Fatalf("unexpected denotation; want: %v, got: %v", tt.den, prod.Denotation)
			}
		})
	}

	named, _ := g.Production("named")
	if !named.HasWildcard() || named.Wildcard() != symbol.SymbolWildcardID {
		t.Fatalf("named must have the identifier wildcard")
	}

	axiom := g.Axiom()
	if axiom == nil || !axiom.IsAxiom() || !axiom.IsUnit() {
		t.Fatalf("unexpected axiom: %v", axiom)
	}
	if err := axiom.SetActive(false); err == nil {
		t.Fatalf("the axiom must not be deactivated")
	}

	answers := g.RulesWithLHS(genKey("QUERY", 0))
	if len(answers) != 2 {
		t.Fatalf("unexpected rule count; want: 2, got: %v", len(answers))
	}
	r := answers[0]
	if r.Weight != 0.5 {
		t.Fatalf("unexpected weight; want: 0.5, got: %v", r.Weight)
	}
	if len(r.NL) != 2 || r.NL[0].Symbol != genSym("what") || r.NL[1].Link != 1 || r.NL[1].Symbol != genSym("FORM") {
		t.Fatalf("unexpected NL side: %v", r)
	}
	if len(r.Gaps) != 3 || r.Gaps[0] != 0 || r.Gaps[1] != 1 || r.Gaps[2] != 0 {
		t.Fatalf("unexpected gaps: %v", r.Gaps)
	}
	if r.MaxVarID != 0 || r.FreeVarCount != 1 {
		t.Fatalf("unexpected variable counts; max: %v, free: %v", r.MaxVarID, r.FreeVarCount)
	}
	if r.Equals(answers[1]) || r.Hash() == answers[1].Hash() {
		t.Fatalf("rules with different NL sides must differ")
	}
	if err := r.SetActive(false); err != nil || r.Active() {
		t.Fatalf("a rule must be deactivatable: %v", err)
	}
}

func TestGrammar_Relations(t *testing.T) {
	g := buildTestGrammar(t, testGeoGrammar)
	genSym := newTestSymbolGenerator(t, g.SymbolTable())
	genKey := newTestKeyGenerator(t, genSym)

	query := genKey("QUERY", 0)
	form := genKey("FORM", 1)
	place := genKey("PLACE", 0)
	name := genKey("NAME", 0)

	if desc := g.DummyDescendants(place); len(desc) != 1 || desc[0] != name {
		t.Fatalf("unexpected dummy descendants: %v", desc)
	}
	if anc := g.DummyAncestors(name); len(anc) != 1 || anc[0] != place {
		t.Fatalf("unexpected dummy ancestors: %v", anc)
	}

	// The axiom is a unit rule of QUERY' over QUERY.
	if g.UnitRank(query) >= g.UnitRank(genKey("QUERY'", 0)) {
		t.Fatalf("QUERY must precede QUERY' in the unit order")
	}

	lcTests := []struct {
		a, b NonterminalKey
		ok   bool
	}{
		{a: query, b: query, ok: true},
		{a: form, b: form, ok: true},
		{a: form, b: query, ok: false},
		{a: place, b: name, ok: true},
		{a: query, b: form, ok: false},
	}
	for _, tt := range lcTests {
		if got := g.IsLeftCorner(tt.a, tt.b); got != tt.ok {
			t.Fatalf("unexpected left-corner relation of %v and %v; want: %v, got: %v", tt.a, tt.b, tt.ok, got)
		}
	}

	ruleOf := func(name string) *Rule {
		t.Helper()
		for _, r := range g.Rules() {
			if r.Production.Name == name {
				return r
			}
		}
		t.Fatalf("rule was not found: %v", name)
		return nil
	}

	beginTests := []struct {
		rule  string
		word  string
		class symbol.WordClass
		ok    bool
	}{
		{rule: "answer", word: "what", ok: true},
		{rule: "answer", word: "states", ok: false},
		{rule: "and", word: "states", ok: true},
		{rule: "and", word: "in", ok: true},
		{rule: "and", word: "what", ok: false},
		{rule: "named", word: "x1", class: symbol.WordClassIdentifier, ok: true},
		{rule: "named", word: "austin", class: symbol.WordClassOther, ok: false},
		{rule: "loc", word: "in", ok: true},
	}
	for _, tt := range beginTests {
		if got := g.CanBegin(ruleOf(tt.rule), g.Terminal(tt.word), tt.class); got != tt.ok {
			t.Fatalf("unexpected result of CanBegin(%v, %v); want: %v, got: %v", tt.rule, tt.word, tt.ok, got)
		}
	}
}

func TestGrammarBuilder_SemanticErrors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		errs    []*SemanticError
	}{
		{
			caption: "a grammar needs a name",
			src: `
%start S;
production s : S -> s ;
`,
			errs: []*SemanticError{semErrNoGrammarName},
		},
		{
			caption: "a grammar needs a start symbol",
			src: `
%name test;
production s : S -> s ;
`,
			errs: []*SemanticError{semErrNoStartSymbol},
		},
		{
			caption: "the start symbol must be defined",
			src: `
%name test;
%start T;
production s : S -> s ;
`,
			errs: []*SemanticError{semErrUndefinedStart},
		},
		{
			caption: "the start symbol cannot take arguments",
			src: `
%name test;
%start S;
production s : S[$x] -> s ( $x ) ;
`,
			errs: []*SemanticError{semErrStartWithArgs},
		},
		{
			caption: "an unknown directive is an error",
			src: `
%name test;
%start S;
%foo;
production s : S -> s ;
`,
			errs: []*SemanticError{semErrDirInvalidName},
		},
		{
			caption: "structurally equal productions cannot be defined twice",
			src: `
%name test;
%start S;
production s1 : S -> s ;
production s2 : S -> s ;
`,
			errs: []*SemanticError{semErrDuplicateProduction},
		},
		{
			caption: "production names must be unique",
			src: `
%name test;
%start S;
production s : S -> s ;
production s : S -> t ;
`,
			errs: []*SemanticError{semErrDuplicateProductionName},
		},
		{
			caption: "a referenced non-terminal must be defined with the same arity",
			src: `
%name test;
%start S;
production s : S -> s ( F[$x] ) ;
production f : F -> f ;
`,
			errs: []*SemanticError{semErrUndefinedNonTerminal},
		},
		{
			caption: "an AC production needs identical non-terminals",
			src: `
%name test;
%start S;
production s   : S -> s ( F[$x] , G[$x] ) %ac ;
production f   : F[$x] -> f ( $x ) ;
production g   : G[$x] -> g ( $x ) ;
`,
			errs: []*SemanticError{semErrInvalidAC},
		},
		{
			caption: "an AC production needs identical separators",
			src: `
%name test;
%start S;
production s : S -> s ( F , F and F ) %ac ;
production f : F -> f ;
`,
			errs: []*SemanticError{semErrInvalidAC},
		},
		{
			caption: "a wildcard can appear only in a leaf production",
			src: `
%name test;
%start S;
production s : S -> s ( *n , F ) ;
production f : F -> f ;
`,
			errs: []*SemanticError{semErrWildcardInNonLeaf},
		},
		{
			caption: "a dummy production must pass its arguments through",
			src: `
%name test;
%start S;
production s : S -> s ( $x , F[$x] ) ;
production f : F[$x] -> G[$y] ;
production g : G[$x] -> g ( $x ) ;
`,
			errs: []*SemanticError{semErrDummyArgs},
		},
		{
			caption: "a dummy production cannot have rules",
			src: `
%name test;
%start S;
production s : S -> F ;
production f : F -> f ;
rule s : "s" F#1 ;
`,
			errs: []*SemanticError{semErrRuleOfDummy},
		},
		{
			caption: "a rule must refer to a production",
			src: `
%name test;
%start S;
production s : S -> s ;
rule t : "t" ;
`,
			errs: []*SemanticError{semErrUndefinedProduction},
		},
		{
			caption: "a link must refer to an existing child",
			src: `
%name test;
%start S;
production s : S -> s ( F ) ;
production f : F -> f ;
rule s : "s" F#2 ;
`,
			errs: []*SemanticError{semErrInvalidLink, semErrUnlinkedChild},
		},
		{
			caption: "a linked symbol must match the child",
			src: `
%name test;
%start S;
production s : S -> s ( F , G ) ;
production f : F -> f ;
production g : G -> g ;
rule s : G#1 F#2 ;
`,
			errs: []*SemanticError{semErrLinkMismatch, semErrLinkMismatch, semErrUnlinkedChild, semErrUnlinkedChild},
		},
		{
			caption: "a child can be linked only once",
			src: `
%name test;
%start S;
production s : S -> s ( F ) ;
production f : F -> f ;
rule s : F#1 F#1 ;
`,
			errs: []*SemanticError{semErrDuplicateLink},
		},
		{
			caption: "a gap cannot begin a rule",
			src: `
%name test;
%start S;
production s : S -> s ;
rule s : ~1 "s" ;
`,
			errs: []*SemanticError{semErrGapPosition},
		},
		{
			caption: "a gap cannot end a rule",
			src: `
%name test;
%start S;
production s : S -> s ;
rule s : "s" ~1 ;
`,
			errs: []*SemanticError{semErrGapPosition},
		},
		{
			caption: "a rule of a wildcard production needs the same wildcard",
			src: `
%name test;
%start S;
production s : S -> *n ;
rule s : "s" ;
`,
			errs: []*SemanticError{semErrWildcardMismatch},
		},
		{
			caption: "a rule cannot contain a wildcard its production lacks",
			src: `
%name test;
%start S;
production s : S -> s ;
rule s : * ;
`,
			errs: []*SemanticError{semErrUnexpectedWildcard},
		},
		{
			caption: "identical rules cannot be defined twice",
			src: `
%name test;
%start S;
production s : S -> s ;
rule s : "s" ;
rule s : "s" %weight 1 ;
`,
			errs: []*SemanticError{semErrDuplicateRule},
		},
		{
			caption: "an undeclared type is an error",
			src: `
%name test;
%start S;
%types city;
production s : S -> s ( $x , F[$x] ) ;
production f : F[$x] -> f ( $x ) %types (state) ;
`,
			errs: []*SemanticError{semErrUndefinedType},
		},
		{
			caption: "unit rules cannot form a cycle",
			src: `
%name test;
%start S;
production s : S -> s ( F ) ;
production f : F -> f ( G ) ;
production g : G -> g ( F ) ;
rule s : F#1 ;
rule f : G#1 ;
rule g : F#1 ;
`,
			errs: []*SemanticError{semErrUnitCycle},
		},
		{
			caption: "dummy productions cannot form a cycle",
			src: `
%name test;
%start S;
production s : S -> s ( F ) ;
production f : F -> G ;
production g : G -> F ;
`,
			errs: []*SemanticError{semErrDummyCycle},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			ast, err := spec.Parse(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}

			b := GrammarBuilder{
				AST: ast,
			}
			_, err = b.Build()
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

package grammar

import (
	"fmt"
	"strconv"

	verr "github.com/nihei9/synchart/error"
	"github.com/nihei9/synchart/grammar/symbol"
	"github.com/nihei9/synchart/spec"
)

const typeNameUnconstrained = "_"

// Grammar is an immutable synchronous grammar. Only the mutable fields of the
// rules (weights, accumulators, and activation) change after a build.
type Grammar struct {
	name                 string
	symbolTable          *symbol.SymbolTable
	productionSet        *productionSet
	rules                []*Rule
	lhs2Rules            map[NonterminalKey][]*Rule
	axiom                *Rule
	startSymbol          symbol.Symbol
	augmentedStartSymbol symbol.Symbol
	types                []string
	keys                 []NonterminalKey
	dummyDescendants     map[NonterminalKey][]NonterminalKey
	dummyAncestors       map[NonterminalKey][]NonterminalKey
	unitRanks            map[NonterminalKey]int
	leftCorners          *leftCornerSet
	first                *firstSet
}

func (g *Grammar) Name() string {
	return g.name
}

func (g *Grammar) SymbolTable() *symbol.SymbolTableReader {
	return g.symbolTable.Reader()
}

func (g *Grammar) StartSymbol() symbol.Symbol {
	return g.startSymbol
}

func (g *Grammar) AugmentedStartSymbol() symbol.Symbol {
	return g.augmentedStartSymbol
}

// Productions returns every production including the augmented one.
func (g *Grammar) Productions() []*Production {
	return g.productionSet.getAllProductions()
}

func (g *Grammar) Production(name string) (*Production, bool) {
	return g.productionSet.findByName(name)
}

// Rules returns every rule including the axiom.
func (g *Grammar) Rules() []*Rule {
	return g.rules
}

func (g *Grammar) RulesWithLHS(key NonterminalKey) []*Rule {
	return g.lhs2Rules[key]
}

func (g *Grammar) Axiom() *Rule {
	return g.axiom
}

// Types returns the declared type names. The code of the type Types()[i] is i+1.
func (g *Grammar) Types() []string {
	return g.types
}

func (g *Grammar) CountNonterminals() int {
	return g.symbolTable.Reader().NonTerminalCount()
}

// NonterminalKeys returns every (symbol, arity) pair that is the LHS of some
// production.
func (g *Grammar) NonterminalKeys() []NonterminalKey {
	return g.keys
}

// Terminal returns the terminal symbol of a word. A word the grammar doesn't
// know has no symbol.
func (g *Grammar) Terminal(text string) symbol.Symbol {
	sym, ok := g.symbolTable.Reader().ToSymbol(text)
	if !ok || !sym.IsTerminal() || sym.IsWildcard() {
		return symbol.SymbolNil
	}
	return sym
}

// IsLeftCorner reports whether b is a left corner of a.
func (g *Grammar) IsLeftCorner(a, b NonterminalKey) bool {
	return g.leftCorners.has(a, b)
}

// DummyDescendants returns the non-terminals the key reaches through one or
// more dummy productions.
func (g *Grammar) DummyDescendants(key NonterminalKey) []NonterminalKey {
	return g.dummyDescendants[key]
}

// DummyAncestors returns the non-terminals reaching the key through one or
// more dummy productions.
func (g *Grammar) DummyAncestors(key NonterminalKey) []NonterminalKey {
	return g.dummyAncestors[key]
}

// UnitRank orders non-terminals so that when a unit rule of A can consume a
// complete item of B, B has a lower rank than A.
func (g *Grammar) UnitRank(key NonterminalKey) int {
	return g.unitRanks[key]
}

// CanBegin reports whether the NL side of the rule can begin with the word.
func (g *Grammar) CanBegin(rule *Rule, word symbol.Symbol, class symbol.WordClass) bool {
	head := rule.NL[0]
	if head.IsNonTerminal() {
		child := rule.Production.Child(head.Link - 1).Key()
		return g.first.findByKey(child).accepts(word, class)
	}
	if head.Symbol.IsWildcard() {
		return head.Symbol.MatchesClass(class)
	}
	return head.Symbol == word
}

type GrammarBuilder struct {
	AST *spec.RootNode

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build() (*Grammar, error) {
	dirs := b.readTopLevelDirectives()
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	if len(b.AST.Productions) == 0 {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrNoProduction,
		})
		return nil, b.errs
	}

	lhsNames := map[string]struct{}{}
	for _, prod := range b.AST.Productions {
		lhsNames[prod.LHS.Name] = struct{}{}
	}
	if _, ok := lhsNames[dirs.start]; !ok {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUndefinedStart,
			Detail: dirs.start,
			Row:    dirs.startPos.Row,
			Col:    dirs.startPos.Col,
		})
		return nil, b.errs
	}

	symTab := symbol.NewSymbolTable()
	w := symTab.Writer()
	augStartSym, err := w.RegisterStartSymbol(dirs.start + "'")
	if err != nil {
		return nil, err
	}
	for _, prod := range b.AST.Productions {
		_, err := w.RegisterNonTerminalSymbol(prod.LHS.Name)
		if err != nil {
			return nil, err
		}
	}
	startSym, _ := w.ToSymbol(dirs.start)

	prods := newProductionSet()
	for _, prodNode := range b.AST.Productions {
		prod := b.genProduction(prodNode, w, lhsNames, dirs.typeCodes)
		if prod == nil {
			continue
		}
		if _, ok := prods.findByName(prod.Name); ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateProductionName,
				Detail: prod.Name,
				Row:    prodNode.Pos.Row,
				Col:    prodNode.Pos.Col,
			})
			continue
		}
		if dup, ok := prods.findByID(prod.id); ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateProduction,
				Detail: fmt.Sprintf("%v and %v", dup.Name, prod.Name),
				Row:    prodNode.Pos.Row,
				Col:    prodNode.Pos.Col,
			})
			continue
		}
		prods.append(prod)
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	b.checkNonterminalReferences(prods, symTab.Reader(), startSym)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	augProd, err := newProduction(dirs.start+"'", &Nonterminal{
		Symbol: augStartSym,
	}, []MRSymbol{
		{
			Symbol: startSym,
			Var:    -1,
		},
	}, 0)
	if err != nil {
		return nil, err
	}
	augProd.IsOrig = false
	prods.append(augProd)

	g := &Grammar{
		name:                 dirs.name,
		symbolTable:          symTab,
		productionSet:        prods,
		lhs2Rules:            map[NonterminalKey][]*Rule{},
		startSymbol:          startSym,
		augmentedStartSymbol: augStartSym,
		types:                dirs.types,
	}

	axiom, err := newRule(augProd, []NLSymbol{
		{
			Symbol: startSym,
			Link:   1,
		},
	}, []int{0, 0})
	if err != nil {
		return nil, err
	}
	axiom.isAxiom = true
	g.axiom = axiom
	g.appendRule(axiom)

	ruleIDs := map[ruleID]struct{}{
		axiom.id: {},
	}
	for _, ruleNode := range b.AST.Rules {
		rule := b.genRule(ruleNode, w, prods)
		if rule == nil {
			continue
		}
		if _, ok := ruleIDs[rule.id]; ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateRule,
				Detail: ruleNode.Name,
				Row:    ruleNode.Pos.Row,
				Col:    ruleNode.Pos.Col,
			})
			continue
		}
		ruleIDs[rule.id] = struct{}{}
		g.appendRule(rule)
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	b.genNonterminalRelations(g)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	return g, nil
}

func (g *Grammar) appendRule(rule *Rule) {
	rule.Num = len(g.rules)
	g.rules = append(g.rules, rule)
	key := rule.LHS.Key()
	g.lhs2Rules[key] = append(g.lhs2Rules[key], rule)
}

type topLevelDirectives struct {
	name      string
	start     string
	startPos  spec.Position
	types     []string
	typeCodes map[string]int
}

func (b *GrammarBuilder) readTopLevelDirectives() *topLevelDirectives {
	dirs := &topLevelDirectives{
		typeCodes: map[string]int{
			typeNameUnconstrained: 0,
		},
	}
	for _, dir := range b.AST.Directives {
		switch dir.Name {
		case "name":
			if len(dir.Parameters) != 1 || dir.Parameters[0].ID == "" {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDirInvalidParam,
					Detail: "'name' takes just one ID parameter",
					Row:    dir.Pos.Row,
					Col:    dir.Pos.Col,
				})
				continue
			}
			dirs.name = dir.Parameters[0].ID
		case "start":
			if len(dir.Parameters) != 1 || dir.Parameters[0].ID == "" {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDirInvalidParam,
					Detail: "'start' takes just one ID parameter",
					Row:    dir.Pos.Row,
					Col:    dir.Pos.Col,
				})
				continue
			}
			dirs.start = dir.Parameters[0].ID
			dirs.startPos = dir.Pos
		case "types":
			for _, param := range dir.Parameters {
				if param.ID == "" || param.ID == typeNameUnconstrained {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrDirInvalidParam,
						Detail: "'types' takes only ID parameters",
						Row:    param.Pos.Row,
						Col:    param.Pos.Col,
					})
					continue
				}
				if _, ok := dirs.typeCodes[param.ID]; ok {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrDuplicateType,
						Detail: param.ID,
						Row:    param.Pos.Row,
						Col:    param.Pos.Col,
					})
					continue
				}
				if len(dirs.types) >= MaxTypes {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrTooManyTypes,
						Detail: param.ID,
						Row:    param.Pos.Row,
						Col:    param.Pos.Col,
					})
					continue
				}
				dirs.types = append(dirs.types, param.ID)
				dirs.typeCodes[param.ID] = len(dirs.types)
			}
		default:
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDirInvalidName,
				Detail: dir.Name,
				Row:    dir.Pos.Row,
				Col:    dir.Pos.Col,
			})
		}
	}
	if dirs.name == "" {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrNoGrammarName,
		})
	}
	if dirs.start == "" {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrNoStartSymbol,
		})
	}
	return dirs
}

// localVars numbers the variables of a production in order of their first
// appearance. The LHS arguments come first.
type localVars struct {
	slots map[string]int
}

func (v *localVars) slot(name string) int {
	if s, ok := v.slots[name]; ok {
		return s
	}
	s := len(v.slots)
	v.slots[name] = s
	return s
}

func (b *GrammarBuilder) genProduction(prodNode *spec.ProductionNode, w *symbol.SymbolTableWriter, lhsNames map[string]struct{}, typeCodes map[string]int) *Production {
	errCount := len(b.errs)
	vars := &localVars{
		slots: map[string]int{},
	}

	lhsSym, _ := w.ToSymbol(prodNode.LHS.Name)
	lhs := &Nonterminal{
		Symbol: lhsSym,
	}
	for _, arg := range prodNode.LHS.Args {
		if _, ok := vars.slots[arg]; ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateArg,
				Detail: arg,
				Row:    prodNode.LHS.Pos.Row,
				Col:    prodNode.LHS.Pos.Col,
			})
			continue
		}
		lhs.Args = append(lhs.Args, vars.slot(arg))
	}

	var rhs []MRSymbol
	wildcards := 0
	for _, elem := range prodNode.RHS {
		switch {
		case elem.Variable != "":
			rhs = append(rhs, MRSymbol{
				Var: vars.slot(elem.Variable),
			})
		case elem.Wildcard != "":
			sym, _ := w.ToSymbol(elem.Wildcard)
			rhs = append(rhs, MRSymbol{
				Symbol: sym,
				Var:    -1,
			})
			wildcards++
		case elem.ID != "":
			if _, ok := lhsNames[elem.ID]; ok {
				sym, _ := w.ToSymbol(elem.ID)
				args := make([]int, 0, len(elem.Args))
				for _, arg := range elem.Args {
					args = append(args, vars.slot(arg))
				}
				rhs = append(rhs, MRSymbol{
					Symbol: sym,
					Args:   args,
					Var:    -1,
				})
				continue
			}
			if len(elem.Args) > 0 {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUndefinedNonTerminal,
					Detail: elem.ID,
					Row:    elem.Pos.Row,
					Col:    elem.Pos.Col,
				})
				continue
			}
			rhs = append(rhs, b.genMRTerminal(w, elem.ID, elem.Pos))
		default:
			rhs = append(rhs, b.genMRTerminal(w, elem.Terminal, elem.Pos))
		}
	}
	if len(vars.slots) > MaxLocalVariables {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrTooManyVars,
			Detail: prodNode.Name,
			Row:    prodNode.Pos.Row,
			Col:    prodNode.Pos.Col,
		})
	}
	if len(b.errs) > errCount {
		return nil
	}

	prod, err := newProduction(prodNode.Name, lhs, rhs, len(vars.slots))
	if err != nil {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrDirInvalidParam,
			Detail: err.Error(),
			Row:    prodNode.Pos.Row,
			Col:    prodNode.Pos.Col,
		})
		return nil
	}

	for _, dir := range prodNode.Directives {
		switch dir.Name {
		case "ac":
			if len(dir.Parameters) > 0 {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDirInvalidParam,
					Detail: "'ac' takes no parameter",
					Row:    dir.Pos.Row,
					Col:    dir.Pos.Col,
				})
				continue
			}
			prod.IsAC = true
		case "types":
			den, ok := b.genDenotation(dir, prod, typeCodes)
			if !ok {
				continue
			}
			prod.Denotation = den
		default:
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDirInvalidName,
				Detail: dir.Name,
				Row:    dir.Pos.Row,
				Col:    dir.Pos.Col,
			})
		}
	}

	if prod.IsAC && !isValidAC(prod) {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrInvalidAC,
			Detail: prod.Name,
			Row:    prodNode.Pos.Row,
			Col:    prodNode.Pos.Col,
		})
	}
	if wildcards > 1 {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrMultipleWildcards,
			Detail: prod.Name,
			Row:    prodNode.Pos.Row,
			Col:    prodNode.Pos.Col,
		})
	}
	if prod.HasWildcard() && !prod.IsLeaf() {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrWildcardInNonLeaf,
			Detail: prod.Name,
			Row:    prodNode.Pos.Row,
			Col:    prodNode.Pos.Col,
		})
	}
	if prod.IsDummy && !prod.Child(0).Equals(&Nonterminal{Symbol: prod.Child(0).Symbol, Args: prod.LHSSlots()}) {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrDummyArgs,
			Detail: prod.Name,
			Row:    prodNode.Pos.Row,
			Col:    prodNode.Pos.Col,
		})
	}
	if len(b.errs) > errCount {
		return nil
	}

	return prod
}

func (b *GrammarBuilder) genMRTerminal(w *symbol.SymbolTableWriter, text string, pos spec.Position) MRSymbol {
	sym, err := w.RegisterTerminalSymbol(text)
	if err != nil {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrDuplicateName,
			Detail: text,
			Row:    pos.Row,
			Col:    pos.Col,
		})
	}
	return MRSymbol{
		Symbol: sym,
		Var:    -1,
	}
}

func (b *GrammarBuilder) genDenotation(dir *spec.DirectiveNode, prod *Production, typeCodes map[string]int) (Denotation, bool) {
	if len(dir.Parameters) == 0 {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrDirInvalidParam,
			Detail: "'types' takes at least one type tuple",
			Row:    dir.Pos.Row,
			Col:    dir.Pos.Col,
		})
		return Denotation{}, false
	}
	var tuples []TypeTuple
	for _, param := range dir.Parameters {
		if param.Tuple == nil || len(param.Tuple) > prod.VarCount {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDirInvalidParam,
				Detail: fmt.Sprintf("'types' takes tuples of at most %v types", prod.VarCount),
				Row:    param.Pos.Row,
				Col:    param.Pos.Col,
			})
			return Denotation{}, false
		}
		types := make([]int, 0, len(param.Tuple))
		for _, name := range param.Tuple {
			code, ok := typeCodes[name]
			if !ok {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUndefinedType,
					Detail: name,
					Row:    param.Pos.Row,
					Col:    param.Pos.Col,
				})
				return Denotation{}, false
			}
			types = append(types, code)
		}
		tuples = append(tuples, NewTypeTuple(types...))
	}
	return NewDenotation(tuples...), true
}

// isValidAC reports whether the non-terminals of an AC production are at
// least two, syntactically equal, and separated by identical symbol runs.
func isValidAC(prod *Production) bool {
	if prod.ChildCount() < 2 {
		return false
	}
	first := prod.Child(0)
	for k := 1; k < prod.ChildCount(); k++ {
		if !prod.Child(k).Equals(first) {
			return false
		}
	}
	sep := prod.RHS[prod.ChildPosition(0)+1 : prod.ChildPosition(1)]
	for k := 2; k < prod.ChildCount(); k++ {
		s := prod.RHS[prod.ChildPosition(k-1)+1 : prod.ChildPosition(k)]
		if len(s) != len(sep) {
			return false
		}
		for i, sym := range s {
			if sym.Symbol != sep[i].Symbol || sym.Var != sep[i].Var {
				return false
			}
		}
	}
	return true
}

func (b *GrammarBuilder) checkNonterminalReferences(prods *productionSet, r *symbol.SymbolTableReader, startSym symbol.Symbol) {
	for _, prodNode := range b.AST.Productions {
		prod, ok := prods.findByName(prodNode.Name)
		if !ok {
			continue
		}
		if prod.LHS.Symbol == startSym && prod.LHS.Arity() > 0 {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrStartWithArgs,
				Detail: prod.Name,
				Row:    prodNode.LHS.Pos.Row,
				Col:    prodNode.LHS.Pos.Col,
			})
		}
		for k := 0; k < prod.ChildCount(); k++ {
			child := prod.Child(k)
			if _, ok := prods.findByLHS(child.Key()); ok {
				continue
			}
			text, _ := r.ToText(child.Symbol)
			elem := prodNode.RHS[prod.ChildPosition(k)]
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrUndefinedNonTerminal,
				Detail: fmt.Sprintf("%v/%v", text, child.Arity()),
				Row:    elem.Pos.Row,
				Col:    elem.Pos.Col,
			})
		}
	}
}

func (b *GrammarBuilder) genRule(ruleNode *spec.RuleNode, w *symbol.SymbolTableWriter, prods *productionSet) *Rule {
	errCount := len(b.errs)
	prod, ok := prods.findByName(ruleNode.Name)
	if !ok || !prod.IsOrig {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUndefinedProduction,
			Detail: ruleNode.Name,
			Row:    ruleNode.Pos.Row,
			Col:    ruleNode.Pos.Col,
		})
		return nil
	}
	if prod.IsDummy {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrRuleOfDummy,
			Detail: ruleNode.Name,
			Row:    ruleNode.Pos.Row,
			Col:    ruleNode.Pos.Col,
		})
		return nil
	}

	var nl []NLSymbol
	gaps := []int{0}
	linked := make([]bool, prod.ChildCount())
	var wildcards []symbol.Symbol
	for _, elem := range ruleNode.Elements {
		switch {
		case elem.Gap > 0:
			if len(nl) == 0 || gaps[len(nl)] > 0 {
				b.errs = append(b.errs, &verr.SpecError{
					Cause: semErrGapPosition,
					Row:   elem.Pos.Row,
					Col:   elem.Pos.Col,
				})
				continue
			}
			gaps[len(nl)] = elem.Gap
			continue
		case elem.Word != "":
			sym, err := w.RegisterTerminalSymbol(elem.Word)
			if err != nil {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDuplicateName,
					Detail: elem.Word,
					Row:    elem.Pos.Row,
					Col:    elem.Pos.Col,
				})
				continue
			}
			nl = append(nl, NLSymbol{
				Symbol: sym,
			})
		case elem.Wildcard != "":
			sym, _ := w.ToSymbol(elem.Wildcard)
			nl = append(nl, NLSymbol{
				Symbol: sym,
			})
			wildcards = append(wildcards, sym)
		default:
			if elem.Link > prod.ChildCount() {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrInvalidLink,
					Detail: fmt.Sprintf("%v#%v", elem.NonTerminal, elem.Link),
					Row:    elem.Pos.Row,
					Col:    elem.Pos.Col,
				})
				continue
			}
			child := prod.Child(elem.Link - 1)
			sym, ok := w.ToSymbol(elem.NonTerminal)
			if !ok || sym != child.Symbol {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrLinkMismatch,
					Detail: fmt.Sprintf("%v#%v", elem.NonTerminal, elem.Link),
					Row:    elem.Pos.Row,
					Col:    elem.Pos.Col,
				})
				continue
			}
			if linked[elem.Link-1] {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDuplicateLink,
					Detail: fmt.Sprintf("%v#%v", elem.NonTerminal, elem.Link),
					Row:    elem.Pos.Row,
					Col:    elem.Pos.Col,
				})
				continue
			}
			linked[elem.Link-1] = true
			nl = append(nl, NLSymbol{
				Symbol: sym,
				Link:   elem.Link,
			})
		}
		gaps = append(gaps, 0)
	}
	if len(nl) > 0 && gaps[len(nl)] > 0 {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrGapPosition,
			Row:   ruleNode.Pos.Row,
			Col:   ruleNode.Pos.Col,
		})
	}
	for k, ok := range linked {
		if ok {
			continue
		}
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUnlinkedChild,
			Detail: fmt.Sprintf("#%v", k+1),
			Row:    ruleNode.Pos.Row,
			Col:    ruleNode.Pos.Col,
		})
	}
	switch {
	case prod.HasWildcard():
		if len(wildcards) != 1 || wildcards[0] != prod.Wildcard() {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrWildcardMismatch,
				Detail: ruleNode.Name,
				Row:    ruleNode.Pos.Row,
				Col:    ruleNode.Pos.Col,
			})
		}
	case len(wildcards) > 0:
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUnexpectedWildcard,
			Detail: ruleNode.Name,
			Row:    ruleNode.Pos.Row,
			Col:    ruleNode.Pos.Col,
		})
	}
	if len(b.errs) > errCount {
		return nil
	}

	rule, err := newRule(prod, nl, gaps)
	if err != nil {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrGapPosition,
			Detail: err.Error(),
			Row:    ruleNode.Pos.Row,
			Col:    ruleNode.Pos.Col,
		})
		return nil
	}

	for _, dir := range ruleNode.Directives {
		switch dir.Name {
		case "weight":
			if len(dir.Parameters) != 1 || dir.Parameters[0].Number == "" {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDirInvalidParam,
					Detail: "'weight' takes just one number parameter",
					Row:    dir.Pos.Row,
					Col:    dir.Pos.Col,
				})
				continue
			}
			weight, err := strconv.ParseFloat(dir.Parameters[0].Number, 64)
			if err != nil {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDirInvalidParam,
					Detail: err.Error(),
					Row:    dir.Pos.Row,
					Col:    dir.Pos.Col,
				})
				continue
			}
			rule.Weight = weight
		default:
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDirInvalidName,
				Detail: dir.Name,
				Row:    dir.Pos.Row,
				Col:    dir.Pos.Col,
			})
		}
	}

	return rule
}

// genNonterminalRelations computes the dummy closure, the unit ranks, and the
// left corners. A cycle of dummy productions or unit rules is fatal because
// the completion order would be undefined.
func (b *GrammarBuilder) genNonterminalRelations(g *Grammar) {
	seen := map[NonterminalKey]struct{}{}
	for _, prod := range g.productionSet.getAllProductions() {
		key := prod.LHS.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		g.keys = append(g.keys, key)
	}

	dummies := newDirectedGraph()
	dummyChildren := map[NonterminalKey][]NonterminalKey{}
	for _, prod := range g.productionSet.getAllProductions() {
		if !prod.IsDummy || !prod.IsOrig {
			continue
		}
		dummies.add(prod.LHS.Key(), prod.Child(0).Key())
		dummyChildren[prod.LHS.Key()] = append(dummyChildren[prod.LHS.Key()], prod.Child(0).Key())
	}
	if _, cycle := dummies.topologicalOrder(); cycle != nil {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrDummyCycle,
			Detail: b.describeKeys(g, cycle),
		})
		return
	}
	g.dummyDescendants = map[NonterminalKey][]NonterminalKey{}
	g.dummyAncestors = map[NonterminalKey][]NonterminalKey{}
	for _, key := range g.keys {
		desc := dummies.reachable(key)
		if len(desc) == 0 {
			continue
		}
		g.dummyDescendants[key] = desc
		for _, d := range desc {
			g.dummyAncestors[d] = append(g.dummyAncestors[d], key)
		}
	}

	units := newDirectedGraph()
	for _, key := range g.keys {
		units.addVertex(key)
	}
	for _, rule := range g.rules {
		if !rule.IsUnit() {
			continue
		}
		child, _ := rule.ChildAt(0)
		units.add(rule.LHS.Key(), child.Key())
		for _, d := range g.dummyDescendants[child.Key()] {
			units.add(rule.LHS.Key(), d)
		}
	}
	order, cycle := units.topologicalOrder()
	if cycle != nil {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUnitCycle,
			Detail: b.describeKeys(g, cycle),
		})
		return
	}
	g.unitRanks = map[NonterminalKey]int{}
	for rank, key := range order {
		g.unitRanks[key] = rank
	}

	g.leftCorners, g.first = genLeftCorners(g.keys, g.lhs2Rules, dummyChildren)
}

func (b *GrammarBuilder) describeKeys(g *Grammar, keys []NonterminalKey) string {
	r := g.symbolTable.Reader()
	var s string
	for i, key := range keys {
		if i > 0 {
			s += ", "
		}
		text, _ := r.ToText(key.Symbol)
		s += fmt.Sprintf("%v/%v", text, key.Arity)
	}
	return s
}

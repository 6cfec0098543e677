package grammar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/nihei9/synchart/grammar/symbol"
)

// NLSymbol is an element of the natural-language side of a rule. Link is the
// 1-origin index of the production child a non-terminal stands for, and 0 for
// a terminal.
type NLSymbol struct {
	Symbol symbol.Symbol
	Link   int
}

func (s NLSymbol) IsNonTerminal() bool {
	return s.Link > 0
}

type ruleID [32]byte

func (id ruleID) String() string {
	return hex.EncodeToString(id[:])
}

func genRuleID(lhs *Nonterminal, nl []NLSymbol, gaps []int, prod *Production) ruleID {
	seq := lhs.Symbol.Byte()
	seq = append(seq, byte(len(lhs.Args)))
	for i, sym := range nl {
		seq = append(seq, sym.Symbol.Byte()...)
		seq = append(seq, byte(sym.Link), byte(gaps[i]))
	}
	seq = append(seq, byte(gaps[len(nl)]))
	seq = append(seq, prod.id[:]...)
	return ruleID(sha256.Sum256(seq))
}

// Rule pairs a natural-language symbol string with a production. The identity
// of a rule consists of its LHS, its NL side, its gap budgets, and its
// production. Weight and the accumulators are not a part of it.
type Rule struct {
	id         ruleID
	Num        int
	LHS        *Nonterminal
	NL         []NLSymbol
	Production *Production

	// Gaps[d] is the number of words the parser may skip while the dot is at d.
	// Only positions strictly between two NL symbols can have a budget.
	Gaps []int

	MaxVarID     int
	FreeVarCount int
	Denotation   Denotation

	Weight     float64
	OuterScore float64
	Count      float64

	active  bool
	isAxiom bool
}

func newRule(prod *Production, nl []NLSymbol, gaps []int) (*Rule, error) {
	if len(nl) == 0 {
		return nil, fmt.Errorf("a rule needs at least one NL symbol; production: %v", prod.Name)
	}
	if len(gaps) != len(nl)+1 {
		return nil, fmt.Errorf("the length of gap budgets must be the length of NL symbols + 1; production: %v", prod.Name)
	}
	if gaps[0] != 0 || gaps[len(nl)] != 0 {
		return nil, fmt.Errorf("a gap budget is allowed only between NL symbols; production: %v", prod.Name)
	}
	return &Rule{
		id:           genRuleID(prod.LHS, nl, gaps, prod),
		LHS:          prod.LHS,
		NL:           nl,
		Gaps:         gaps,
		Production:   prod,
		MaxVarID:     prod.VarCount - 1,
		FreeVarCount: prod.VarCount - prod.LHS.Arity(),
		Denotation:   prod.Denotation,
		OuterScore:   math.Inf(-1),
		active:       true,
	}, nil
}

func (r *Rule) Equals(s *Rule) bool {
	return s.id == r.id
}

// Hash returns the hex representation of the rule identity.
func (r *Rule) Hash() string {
	return r.id.String()
}

func (r *Rule) Len() int {
	return len(r.NL)
}

func (r *Rule) IsAxiom() bool {
	return r.isAxiom
}

// IsUnit reports whether the NL side consists of one non-terminal.
func (r *Rule) IsUnit() bool {
	return len(r.NL) == 1 && r.NL[0].IsNonTerminal()
}

func (r *Rule) Active() bool {
	return r.active
}

func (r *Rule) SetActive(active bool) error {
	if r.isAxiom && !active {
		return fmt.Errorf("the axiom rule cannot be deactivated")
	}
	r.active = active
	return nil
}

// ChildAt returns the production child the non-terminal at dot stands for.
func (r *Rule) ChildAt(dot int) (*Nonterminal, bool) {
	if dot < 0 || dot >= len(r.NL) || !r.NL[dot].IsNonTerminal() {
		return nil, false
	}
	return r.Production.Child(r.NL[dot].Link - 1), true
}

// AddOuterScore accumulates a log-space score.
func (r *Rule) AddOuterScore(logScore float64) {
	r.OuterScore = LogAdd(r.OuterScore, logScore)
}

func (r *Rule) ResetOuterScore() {
	r.OuterScore = math.Inf(-1)
}

// Expectation returns the expected count accumulated by AddOuterScore.
func (r *Rule) Expectation() float64 {
	return math.Exp(r.OuterScore)
}

func (r *Rule) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v:", r.Production.Name)
	for i, sym := range r.NL {
		if r.Gaps[i] > 0 {
			fmt.Fprintf(&b, " ~%v", r.Gaps[i])
		}
		if sym.IsNonTerminal() {
			fmt.Fprintf(&b, " %v#%v", sym.Symbol, sym.Link)
			continue
		}
		fmt.Fprintf(&b, " %v", sym.Symbol)
	}
	return b.String()
}

// LogAdd returns log(exp(x) + exp(y)).
func LogAdd(x, y float64) float64 {
	if math.IsInf(x, -1) {
		return y
	}
	if math.IsInf(y, -1) {
		return x
	}
	if x < y {
		x, y = y, x
	}
	return x + math.Log1p(math.Exp(y-x))
}

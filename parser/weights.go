package parser

import (
	"github.com/nihei9/synchart/grammar"
)

// Weights scores the events of a parse in log space. The score of a
// derivation is the sum of the scores of its events.
type Weights interface {
	Predict(sent *Sentence, rule *grammar.Rule, pos int) float64
	Scan(sent *Sentence, item *Item, pos int) float64
	Skip(sent *Sentence, item *Item, pos int) float64
	Complete(sent *Sentence, waiting, complete *Item) float64
}

// OuterSink receives the expected counts computed by the outside pass. The
// score is the log of the expected number of uses of the rule.
type OuterSink interface {
	AddOuterScore(rule *grammar.Rule, logScore float64)
}

// RuleWeights scores a derivation by the weights of its rules and penalizes
// each skipped word.
type RuleWeights struct {
	GapPenalty float64
}

func (w *RuleWeights) Predict(sent *Sentence, rule *grammar.Rule, pos int) float64 {
	return rule.Weight
}

func (w *RuleWeights) Scan(sent *Sentence, item *Item, pos int) float64 {
	return 0
}

func (w *RuleWeights) Skip(sent *Sentence, item *Item, pos int) float64 {
	return -w.GapPenalty
}

func (w *RuleWeights) Complete(sent *Sentence, waiting, complete *Item) float64 {
	return 0
}

type ruleSink struct{}

func (ruleSink) AddOuterScore(rule *grammar.Rule, logScore float64) {
	rule.AddOuterScore(logScore)
}

// RuleExpectation is the expected count of a rule accumulated by the outside
// passes since the last reset.
type RuleExpectation struct {
	Rule  *grammar.Rule
	Count float64
}

// RuleExpectations returns the expected counts the default sink accumulated in
// the rules, skipping the rules that were never used.
func RuleExpectations(g *grammar.Grammar) []*RuleExpectation {
	var exps []*RuleExpectation
	for _, rule := range g.Rules() {
		if rule.IsAxiom() {
			continue
		}
		count := rule.Expectation()
		if count == 0 {
			continue
		}
		exps = append(exps, &RuleExpectation{
			Rule:  rule,
			Count: count,
		})
	}
	return exps
}

// ResetExpectations clears the accumulators of every rule.
func ResetExpectations(g *grammar.Grammar) {
	for _, rule := range g.Rules() {
		rule.ResetOuterScore()
	}
}

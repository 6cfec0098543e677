package parser

import (
	"fmt"
	"math"

	"github.com/nihei9/synchart/grammar"
)

type historyKind int

const (
	historyPredict historyKind = iota
	historyScan
	historySkip
	historyComplete
)

func (k historyKind) String() string {
	switch k {
	case historyPredict:
		return "predict"
	case historyScan:
		return "scan"
	case historySkip:
		return "skip"
	}
	return "complete"
}

// history is one way an item was derived. prev is the item the dot moved from,
// and comp is the complete item consumed by a completion. Ranks select a
// history of prev and comp in k-best mode.
type history struct {
	kind     historyKind
	prev     *Item
	prevRank int
	comp     *Item
	compRank int
	word     int
	local    float64

	// score is the score of the best derivation through this history, and
	// inside is the log-sum over all derivations through it.
	score  float64
	inside float64
}

// Item is a dotted synchronous rule spanning the words [start, current).
type Item struct {
	rule      *grammar.Rule
	dot       int
	gap       int
	start     int
	current   int
	cov       *Coverage
	varTypes  grammar.Denotation
	inner     float64
	outer     float64
	timestamp int
	seq       int
	hists     []*history
	popped    bool
}

func newItem(rule *grammar.Rule, dot, gap, start, current int, cov *Coverage, varTypes grammar.Denotation) *Item {
	return &Item{
		rule:     rule,
		dot:      dot,
		gap:      gap,
		start:    start,
		current:  current,
		cov:      cov,
		varTypes: varTypes,
		inner:    math.Inf(-1),
		outer:    math.Inf(-1),
	}
}

func (it *Item) Rule() *grammar.Rule {
	return it.rule
}

func (it *Item) Dot() int {
	return it.dot
}

func (it *Item) Gap() int {
	return it.gap
}

func (it *Item) Start() int {
	return it.start
}

func (it *Item) Current() int {
	return it.current
}

func (it *Item) Coverage() *Coverage {
	return it.cov
}

func (it *Item) VarTypes() grammar.Denotation {
	return it.varTypes
}

func (it *Item) Inner() float64 {
	return it.inner
}

func (it *Item) Outer() float64 {
	return it.outer
}

func (it *Item) IsComplete() bool {
	return it.dot == len(it.rule.NL)
}

// next returns the NL symbol right after the dot.
func (it *Item) next() (grammar.NLSymbol, bool) {
	if it.IsComplete() {
		return grammar.NLSymbol{}, false
	}
	return it.rule.NL[it.dot], true
}

// waitingKey returns the non-terminal the item waits for.
func (it *Item) waitingKey() (grammar.NonterminalKey, bool) {
	child, ok := it.rule.ChildAt(it.dot)
	if !ok {
		return grammar.NonterminalKey{}, false
	}
	return child.Key(), true
}

func (it *Item) equal(jt *Item) bool {
	return it.rule == jt.rule &&
		it.dot == jt.dot &&
		it.gap == jt.gap &&
		it.start == jt.start &&
		it.current == jt.current &&
		it.cov.Equal(jt.cov) &&
		it.varTypes.Equal(jt.varTypes)
}

// addHistory inserts a history keeping the histories sorted by score in
// descending order. capacity <= 0 means no limit. It reports whether the
// history was kept.
func (it *Item) addHistory(h *history, capacity int) bool {
	pos := len(it.hists)
	for i, g := range it.hists {
		if h.score > g.score {
			pos = i
			break
		}
	}
	if capacity > 0 && pos >= capacity {
		return false
	}
	it.hists = append(it.hists, nil)
	copy(it.hists[pos+1:], it.hists[pos:])
	it.hists[pos] = h
	if capacity > 0 && len(it.hists) > capacity {
		it.hists = it.hists[:capacity]
	}
	return true
}

// updateInner recomputes the inner score. Under marginal scoring, it is the
// log-sum of every history; otherwise, the score of the best one.
func (it *Item) updateInner(marginal bool) {
	if len(it.hists) == 0 {
		it.inner = math.Inf(-1)
		return
	}
	if !marginal {
		it.inner = it.hists[0].score
		return
	}
	inner := math.Inf(-1)
	for _, h := range it.hists {
		inner = grammar.LogAdd(inner, h.inside)
	}
	it.inner = inner
}

func (it *Item) String() string {
	return fmt.Sprintf("[%v, %v] %v @%v ~%v cov: %v types: %v inner: %.4f", it.start, it.current, it.rule, it.dot, it.gap, it.cov, it.varTypes, it.inner)
}

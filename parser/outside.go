package parser

import (
	"container/heap"
	"math"

	"github.com/nihei9/synchart/grammar"
	"github.com/pkg/errors"
)

// outsideHeap pops the most recently updated item first. An item is updated
// for the last time before any item derived from it, so the outer score of an
// item is final when it is popped.
type outsideHeap []*Item

func (h outsideHeap) Len() int {
	return len(h)
}

func (h outsideHeap) Less(i, j int) bool {
	return h[i].timestamp > h[j].timestamp
}

func (h outsideHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *outsideHeap) Push(x interface{}) {
	*h = append(*h, x.(*Item))
}

func (h *outsideHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// Outside computes the outer scores of the items of the last parse and feeds
// the expected count of every rule to the outer sink. When checkCoverage is
// true, only the accepted items covering the whole target meaning are the
// roots of the pass. It returns the log of the total score of the roots, or
// -Inf when there is no root. The pass needs the inner scores summed over all
// derivations, so the parser must be built with FullMarginal.
func (p *Parser) Outside(checkCoverage bool) (logZ float64, retErr error) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		err, ok := v.(error)
		if !ok {
			panic(v)
		}
		logZ = math.Inf(-1)
		retErr = err
	}()

	p.mustBeParsed()
	if p.mode != scoringMarginal {
		return math.Inf(-1), errors.New("the outside pass needs the full-marginal mode")
	}

	items := p.chart.allItems()
	for _, it := range items {
		it.outer = math.Inf(-1)
	}

	logZ = math.Inf(-1)
	for _, it := range p.accepted {
		if checkCoverage && (p.m == nil || !it.cov.Complete(p.m)) {
			continue
		}
		it.outer = 0
		logZ = grammar.LogAdd(logZ, it.inner)
	}
	if math.IsInf(logZ, -1) {
		return logZ, nil
	}

	h := make(outsideHeap, len(items))
	copy(h, items)
	heap.Init(&h)
	for h.Len() > 0 {
		it := heap.Pop(&h).(*Item)
		if math.IsInf(it.outer, -1) {
			continue
		}
		for _, hist := range it.hists {
			switch hist.kind {
			case historyPredict:
				p.sink.AddOuterScore(it.rule, it.outer+hist.local-logZ)
			case historyScan, historySkip:
				hist.prev.outer = grammar.LogAdd(hist.prev.outer, it.outer+hist.local)
			case historyComplete:
				hist.prev.outer = grammar.LogAdd(hist.prev.outer, it.outer+hist.local+hist.comp.inner)
				hist.comp.outer = grammar.LogAdd(hist.comp.outer, it.outer+hist.local+hist.prev.inner)
			}
		}
	}
	return logZ, nil
}

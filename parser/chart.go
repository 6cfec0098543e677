package parser

import (
	"container/heap"

	"github.com/nihei9/synchart/grammar"
	"github.com/pkg/errors"
)

type scoringMode int

const (
	scoringKBest scoringMode = iota
	scoringMarginal
)

type itemKey struct {
	start   int
	rule    int
	dot     int
	gap     int
	covHash uint64
	denHash uint64
}

func keyOf(it *Item) itemKey {
	return itemKey{
		start:   it.start,
		rule:    it.rule.Num,
		dot:     it.dot,
		gap:     it.gap,
		covHash: it.cov.Hash(),
		denHash: it.varTypes.Hash(),
	}
}

// completionHeap pops complete items with the largest start first. Items with
// the same start come out in the unit order of their LHS so that a unit rule
// consumes a complete item only after the item has got all its histories.
type completionHeap struct {
	items []*Item
	rank  func(it *Item) int
}

func (h *completionHeap) Len() int {
	return len(h.items)
}

func (h *completionHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.start != b.start {
		return a.start > b.start
	}
	ra, rb := h.rank(a), h.rank(b)
	if ra != rb {
		return ra < rb
	}
	return a.seq < b.seq
}

func (h *completionHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *completionHeap) Push(x interface{}) {
	h.items = append(h.items, x.(*Item))
}

func (h *completionHeap) Pop() interface{} {
	n := len(h.items)
	it := h.items[n-1]
	h.items[n-1] = nil
	h.items = h.items[:n-1]
	return it
}

type cell struct {
	items   []*Item
	index   map[itemKey][]*Item
	waiting map[grammar.NonterminalKey][]*Item
	heap    *completionHeap
}

// Chart holds the items of one parse. Cell i holds the items ending at the
// position i.
type Chart struct {
	g         *grammar.Grammar
	cells     []*cell
	keyNums   map[grammar.NonterminalKey]int
	predicted [][]uint64
	mode      scoringMode
	k         int
	dropEmpty bool
	clock     int
}

func newChart(g *grammar.Grammar, length int, mode scoringMode, k int, dropEmpty bool) *Chart {
	keyNums := map[grammar.NonterminalKey]int{}
	for i, key := range g.NonterminalKeys() {
		keyNums[key] = i
	}
	rank := func(it *Item) int {
		return g.UnitRank(it.rule.LHS.Key())
	}
	c := &Chart{
		g:         g,
		cells:     make([]*cell, length+1),
		keyNums:   keyNums,
		predicted: make([][]uint64, length+1),
		mode:      mode,
		k:         k,
		dropEmpty: dropEmpty,
	}
	for i := range c.cells {
		c.cells[i] = &cell{
			index:   map[itemKey][]*Item{},
			waiting: map[grammar.NonterminalKey][]*Item{},
			heap: &completionHeap{
				rank: rank,
			},
		}
		c.predicted[i] = make([]uint64, (len(keyNums)+63)/64)
	}
	return c
}

func (c *Chart) tick() int {
	c.clock++
	return c.clock
}

func (c *Chart) capacity() int {
	if c.mode == scoringMarginal {
		return 0
	}
	return c.k
}

// addItem stores a new item carrying its first histories, or merges the
// histories into an equal item already in the chart. It returns the stored
// item, or nil when the item was discarded.
func (c *Chart) addItem(it *Item) *Item {
	if c.dropEmpty && it.cov.IsEmpty() {
		return nil
	}

	cl := c.cells[it.current]
	key := keyOf(it)
	for _, jt := range cl.index[key] {
		if !jt.equal(it) {
			continue
		}
		if jt.popped {
			panic(errors.Errorf("an item got a new derivation after it had been completed; %v", jt))
		}
		changed := false
		for _, h := range it.hists {
			if jt.addHistory(h, c.capacity()) {
				changed = true
			}
		}
		if changed {
			jt.updateInner(c.mode == scoringMarginal)
			jt.timestamp = c.tick()
		}
		return jt
	}

	hists := it.hists
	it.hists = nil
	for _, h := range hists {
		it.addHistory(h, c.capacity())
	}
	it.updateInner(c.mode == scoringMarginal)
	it.timestamp = c.tick()
	it.seq = it.timestamp

	cl.items = append(cl.items, it)
	cl.index[key] = append(cl.index[key], it)
	if wk, ok := it.waitingKey(); ok {
		cl.waiting[wk] = append(cl.waiting[wk], it)
	}
	if it.IsComplete() {
		heap.Push(cl.heap, it)
	}
	return it
}

// popComplete returns the next complete item of the cell, or nil when none is
// left. A popped item never changes afterwards.
func (c *Chart) popComplete(pos int) *Item {
	cl := c.cells[pos]
	if cl.heap.Len() == 0 {
		return nil
	}
	it := heap.Pop(cl.heap).(*Item)
	it.popped = true
	return it
}

// waitingFor returns the items ending at pos that wait for the non-terminal or
// for a non-terminal deriving it through dummy productions.
func (c *Chart) waitingFor(pos int, key grammar.NonterminalKey) []*Item {
	cl := c.cells[pos]
	items := cl.waiting[key]
	ancestors := c.g.DummyAncestors(key)
	if len(ancestors) == 0 {
		return items
	}
	all := make([]*Item, 0, len(items))
	all = append(all, items...)
	for _, a := range ancestors {
		all = append(all, cl.waiting[a]...)
	}
	return all
}

func (c *Chart) isPredicted(pos int, key grammar.NonterminalKey) bool {
	n, ok := c.keyNums[key]
	if !ok {
		return true
	}
	return c.predicted[pos][n/64]&(uint64(1)<<uint(n%64)) != 0
}

func (c *Chart) predict(pos int, key grammar.NonterminalKey) {
	n, ok := c.keyNums[key]
	if !ok {
		return
	}
	c.predicted[pos][n/64] |= uint64(1) << uint(n%64)
}

// Items returns the items ending at the position.
func (c *Chart) Items(pos int) []*Item {
	return c.cells[pos].items
}

func (c *Chart) Len() int {
	return len(c.cells) - 1
}

// allItems returns every item of the chart.
func (c *Chart) allItems() []*Item {
	var items []*Item
	for _, cl := range c.cells {
		items = append(items, cl.items...)
	}
	return items
}

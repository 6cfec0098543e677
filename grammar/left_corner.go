package grammar

import (
	"github.com/nihei9/synchart/grammar/symbol"
)

// firstEntry holds the terminals, including wildcards, a non-terminal can
// begin with on the NL side. No rule derives the empty string, so an entry
// has no empty flag.
type firstEntry struct {
	symbols map[symbol.Symbol]struct{}
}

func newFirstEntry() *firstEntry {
	return &firstEntry{
		symbols: map[symbol.Symbol]struct{}{},
	}
}

func (e *firstEntry) add(sym symbol.Symbol) bool {
	if _, ok := e.symbols[sym]; ok {
		return false
	}
	e.symbols[sym] = struct{}{}
	return true
}

func (e *firstEntry) merge(target *firstEntry) bool {
	if target == nil {
		return false
	}
	changed := false
	for sym := range target.symbols {
		added := e.add(sym)
		if added {
			changed = true
		}
	}
	return changed
}

// accepts reports whether a word of the symbol and the class can begin the
// non-terminal.
func (e *firstEntry) accepts(word symbol.Symbol, class symbol.WordClass) bool {
	if e == nil {
		return false
	}
	if !word.IsNil() {
		if _, ok := e.symbols[word]; ok {
			return true
		}
	}
	for _, wc := range []symbol.Symbol{symbol.SymbolWildcardAny, symbol.SymbolWildcardNumber, symbol.SymbolWildcardID} {
		if _, ok := e.symbols[wc]; ok && wc.MatchesClass(class) {
			return true
		}
	}
	return false
}

type firstSet struct {
	set map[NonterminalKey]*firstEntry
}

func (fst *firstSet) findByKey(key NonterminalKey) *firstEntry {
	return fst.set[key]
}

// leftCornerSet is the reflexive-transitive closure of the left-corner
// relation. A non-terminal B is a left corner of A when A can derive, on the
// NL side, a string beginning with B. A dummy production passes its left
// corner through.
type leftCornerSet struct {
	index map[NonterminalKey]int
	rows  [][]uint64
}

func (lc *leftCornerSet) has(a, b NonterminalKey) bool {
	i, ok := lc.index[a]
	if !ok {
		return false
	}
	j, ok := lc.index[b]
	if !ok {
		return false
	}
	return lc.rows[i][j/64]&(uint64(1)<<uint(j%64)) != 0
}

func (lc *leftCornerSet) set(i, j int) bool {
	if lc.rows[i][j/64]&(uint64(1)<<uint(j%64)) != 0 {
		return false
	}
	lc.rows[i][j/64] |= uint64(1) << uint(j%64)
	return true
}

func (lc *leftCornerSet) mergeRow(i, j int) bool {
	changed := false
	for w, bits := range lc.rows[j] {
		if lc.rows[i][w]|bits != lc.rows[i][w] {
			lc.rows[i][w] |= bits
			changed = true
		}
	}
	return changed
}

// genLeftCorners computes both the left-corner closure and the FIRST sets by
// iterating until neither changes.
func genLeftCorners(keys []NonterminalKey, lhs2Rules map[NonterminalKey][]*Rule, dummyChildren map[NonterminalKey][]NonterminalKey) (*leftCornerSet, *firstSet) {
	lc := &leftCornerSet{
		index: map[NonterminalKey]int{},
		rows:  make([][]uint64, len(keys)),
	}
	fst := &firstSet{
		set: map[NonterminalKey]*firstEntry{},
	}
	width := (len(keys) + 63) / 64
	for i, key := range keys {
		lc.index[key] = i
		lc.rows[i] = make([]uint64, width)
		lc.set(i, i)
		fst.set[key] = newFirstEntry()
	}

	for {
		more := false
		for i, key := range keys {
			acc := fst.findByKey(key)
			for _, rule := range lhs2Rules[key] {
				head := rule.NL[0]
				if !head.IsNonTerminal() {
					if acc.add(head.Symbol) {
						more = true
					}
					continue
				}
				child := rule.Production.Child(head.Link - 1).Key()
				if changed := mergeLeftCorner(lc, fst, acc, i, child); changed {
					more = true
				}
			}
			for _, child := range dummyChildren[key] {
				if changed := mergeLeftCorner(lc, fst, acc, i, child); changed {
					more = true
				}
			}
		}
		if !more {
			break
		}
	}
	return lc, fst
}

func mergeLeftCorner(lc *leftCornerSet, fst *firstSet, acc *firstEntry, i int, child NonterminalKey) bool {
	j, ok := lc.index[child]
	if !ok {
		return false
	}
	changed := lc.set(i, j)
	if lc.mergeRow(i, j) {
		changed = true
	}
	if acc.merge(fst.findByKey(child)) {
		changed = true
	}
	return changed
}

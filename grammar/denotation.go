package grammar

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

const (
	// MaxTypes is the number of types a grammar can declare. The type code 0
	// means "unconstrained".
	MaxTypes = 15

	typeBits = 4
	typeMask = uint32(0xf)
)

// TypeTuple assigns a type code to each of the eight local variable slots of a
// production.
type TypeTuple uint32

func NewTypeTuple(types ...int) TypeTuple {
	var t TypeTuple
	for slot, ty := range types {
		t = t.with(slot, ty)
	}
	return t
}

func (t TypeTuple) Type(slot int) int {
	return int((uint32(t) >> uint(slot*typeBits)) & typeMask)
}

func (t TypeTuple) with(slot, ty int) TypeTuple {
	if slot < 0 || slot >= MaxLocalVariables || ty < 0 || ty > MaxTypes {
		panic(fmt.Errorf("a type tuple element is out of range; slot: %v, type: %v", slot, ty))
	}
	shift := uint(slot * typeBits)
	return TypeTuple(uint32(t)&^(typeMask<<shift) | uint32(ty)<<shift)
}

func meetType(x, y int) (int, bool) {
	switch {
	case x == 0:
		return y, true
	case y == 0:
		return x, true
	case x == y:
		return x, true
	}
	return 0, false
}

// Denotation is a set of admissible type tuples. The empty denotation admits
// nothing, and the universal denotation consists of the all-zero tuple.
type Denotation struct {
	tuples []TypeTuple
}

func NewDenotation(tuples ...TypeTuple) Denotation {
	return newDenotation(tuples)
}

func UniversalDenotation() Denotation {
	return Denotation{
		tuples: []TypeTuple{0},
	}
}

func newDenotation(tuples []TypeTuple) Denotation {
	if len(tuples) == 0 {
		return Denotation{}
	}
	ts := make([]TypeTuple, len(tuples))
	copy(ts, tuples)
	sort.Slice(ts, func(i, j int) bool {
		return ts[i] < ts[j]
	})
	n := 1
	for _, t := range ts[1:] {
		if t == ts[n-1] {
			continue
		}
		ts[n] = t
		n++
	}
	return Denotation{
		tuples: ts[:n],
	}
}

func (d Denotation) Tuples() []TypeTuple {
	return d.tuples
}

func (d Denotation) IsEmpty() bool {
	return len(d.tuples) == 0
}

func (d Denotation) Equal(e Denotation) bool {
	if len(d.tuples) != len(e.tuples) {
		return false
	}
	for i, t := range d.tuples {
		if e.tuples[i] != t {
			return false
		}
	}
	return true
}

func (d Denotation) Hash() uint64 {
	h := fnv.New64a()
	var buf [4]byte
	for _, t := range d.tuples {
		buf[0] = byte(t)
		buf[1] = byte(t >> 8)
		buf[2] = byte(t >> 16)
		buf[3] = byte(t >> 24)
		h.Write(buf[:])
	}
	return h.Sum64()
}

func (d Denotation) Union(e Denotation) Denotation {
	ts := make([]TypeTuple, 0, len(d.tuples)+len(e.tuples))
	ts = append(ts, d.tuples...)
	ts = append(ts, e.tuples...)
	return newDenotation(ts)
}

// Intersect returns the slot-wise meets of every compatible pair of tuples.
func (d Denotation) Intersect(e Denotation) Denotation {
	var ts []TypeTuple
	for _, t := range d.tuples {
		for _, u := range e.tuples {
			if m, ok := meetTuple(t, u); ok {
				ts = append(ts, m)
			}
		}
	}
	return newDenotation(ts)
}

func meetTuple(t, u TypeTuple) (TypeTuple, bool) {
	var m TypeTuple
	for slot := 0; slot < MaxLocalVariables; slot++ {
		ty, ok := meetType(t.Type(slot), u.Type(slot))
		if !ok {
			return 0, false
		}
		m = m.with(slot, ty)
	}
	return m, true
}

// Project re-indexes every tuple so that the slot i of a result holds the type
// of slots[i].
func (d Denotation) Project(slots []int) Denotation {
	ts := make([]TypeTuple, 0, len(d.tuples))
	for _, t := range d.tuples {
		var p TypeTuple
		for i, slot := range slots {
			p = p.with(i, t.Type(slot))
		}
		ts = append(ts, p)
	}
	return newDenotation(ts)
}

// Restrict keeps the tuples whose slots are compatible with some tuple of e,
// where the slot i of e corresponds to slots[i]. The kept tuples are refined
// by the meets.
func (d Denotation) Restrict(slots []int, e Denotation) Denotation {
	var ts []TypeTuple
	for _, t := range d.tuples {
		for _, u := range e.tuples {
			r := t
			ok := true
			for i, slot := range slots {
				ty, compatible := meetType(t.Type(slot), u.Type(i))
				if !compatible {
					ok = false
					break
				}
				r = r.with(slot, ty)
			}
			if ok {
				ts = append(ts, r)
			}
		}
	}
	return newDenotation(ts)
}

func (d Denotation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "{")
	for i, t := range d.tuples {
		if i > 0 {
			fmt.Fprintf(&b, " ")
		}
		fmt.Fprintf(&b, "%08x", uint32(t))
	}
	fmt.Fprintf(&b, "}")
	return b.String()
}

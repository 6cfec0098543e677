package grammar

import (
	"fmt"
	"math/bits"
	"strings"
)

const (
	// MaxMeaningVariables is the number of variables a meaning can contain.
	MaxMeaningVariables = 64

	// MaxLocalVariables is the number of variable slots a production can use.
	MaxLocalVariables = 8

	slotBits  = 8
	slotMask  = uint64(0xff)
	slotLimit = 0xff
)

// VariableSet is a set of meaning-level variable ids.
type VariableSet uint64

func NewVariableSet(vars ...int) VariableSet {
	var s VariableSet
	for _, v := range vars {
		s = s.Add(v)
	}
	return s
}

func (s VariableSet) Add(v int) VariableSet {
	if v < 0 || v >= MaxMeaningVariables {
		panic(fmt.Errorf("a variable id is out of range; id: %v", v))
	}
	return s | VariableSet(1)<<uint(v)
}

func (s VariableSet) Has(v int) bool {
	if v < 0 || v >= MaxMeaningVariables {
		return false
	}
	return s&(VariableSet(1)<<uint(v)) != 0
}

func (s VariableSet) Union(t VariableSet) VariableSet {
	return s | t
}

func (s VariableSet) Intersect(t VariableSet) VariableSet {
	return s & t
}

func (s VariableSet) Minus(t VariableSet) VariableSet {
	return s &^ t
}

func (s VariableSet) IsSubsetOf(t VariableSet) bool {
	return s&^t == 0
}

func (s VariableSet) IsEmpty() bool {
	return s == 0
}

func (s VariableSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Vars returns the members in ascending order.
func (s VariableSet) Vars() []int {
	vars := make([]int, 0, s.Len())
	for r := uint64(s); r != 0; r &= r - 1 {
		vars = append(vars, bits.TrailingZeros64(r))
	}
	return vars
}

func (s VariableSet) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "{")
	for i, v := range s.Vars() {
		if i > 0 {
			fmt.Fprintf(&b, " ")
		}
		fmt.Fprintf(&b, "%v", v)
	}
	fmt.Fprintf(&b, "}")
	return b.String()
}

// VariableAssignment maps the local variable slots of a production to
// meaning-level variables. Each of the eight slots occupies eight bits; zero
// means the slot is unbound, and v+1 means the slot is bound to the variable v.
type VariableAssignment uint64

func (a VariableAssignment) Bind(slot, v int) VariableAssignment {
	if slot < 0 || slot >= MaxLocalVariables {
		panic(fmt.Errorf("a slot is out of range; slot: %v", slot))
	}
	if v < 0 || v >= slotLimit {
		panic(fmt.Errorf("a variable id is out of range; id: %v", v))
	}
	shift := uint(slot * slotBits)
	return VariableAssignment(uint64(a)&^(slotMask<<shift) | uint64(v+1)<<shift)
}

func (a VariableAssignment) Lookup(slot int) (int, bool) {
	if slot < 0 || slot >= MaxLocalVariables {
		return 0, false
	}
	x := (uint64(a) >> uint(slot*slotBits)) & slotMask
	if x == 0 {
		return 0, false
	}
	return int(x) - 1, true
}

// Unify merges two assignments. It fails when a slot is bound to different
// variables on each side.
func (a VariableAssignment) Unify(b VariableAssignment) (VariableAssignment, bool) {
	for slot := 0; slot < MaxLocalVariables; slot++ {
		x, okX := a.Lookup(slot)
		y, okY := b.Lookup(slot)
		if okX && okY && x != y {
			return 0, false
		}
	}
	// A bound slot is non-zero on at least one side and equal when bound on both,
	// so OR-ing the slots yields the merged assignment.
	return a | b, true
}

// Compose moves the binding of slot i to slots[i]. Slots beyond len(slots) are
// dropped.
func (a VariableAssignment) Compose(slots []int) VariableAssignment {
	var c VariableAssignment
	for i, to := range slots {
		if v, ok := a.Lookup(i); ok {
			c = c.Bind(to, v)
		}
	}
	return c
}

// Image returns the variables the slots are bound to.
func (a VariableAssignment) Image(slots []int) VariableSet {
	var s VariableSet
	for _, slot := range slots {
		if v, ok := a.Lookup(slot); ok {
			s = s.Add(v)
		}
	}
	return s
}

func (a VariableAssignment) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[")
	first := true
	for slot := 0; slot < MaxLocalVariables; slot++ {
		v, ok := a.Lookup(slot)
		if !ok {
			continue
		}
		if !first {
			fmt.Fprintf(&b, " ")
		}
		first = false
		fmt.Fprintf(&b, "%v:%v", slot, v)
	}
	fmt.Fprintf(&b, "]")
	return b.String()
}

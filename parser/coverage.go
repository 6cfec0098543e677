package parser

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/bits"
	"sort"
	"strings"

	"github.com/nihei9/synchart/grammar"
	"github.com/nihei9/synchart/meaning"
	"github.com/pkg/errors"
)

// rootAxiom is the root of an option that doesn't cover any meaning node yet.
// The parse axiom starts with it.
const rootAxiom = -1

// Option is one way an item covers a fragment of the target meaning. Bits is a
// bitset over the meaning nodes, Root is the node the production of the item
// stands for, Assign binds the local slots of the production to meaning
// variables, and Free holds the variables the covered nodes introduce.
type Option struct {
	Bits   []uint64
	Root   int
	Assign grammar.VariableAssignment
	Free   grammar.VariableSet
}

func newBits(width int) []uint64 {
	return make([]uint64, (width+63)/64)
}

func (o *Option) has(i int) bool {
	return o.Bits[i/64]&(uint64(1)<<uint(i%64)) != 0
}

// saturated reports whether the nodes [from, to] are all covered.
func (o *Option) saturated(from, to int) bool {
	for i := from; i <= to; i++ {
		if !o.has(i) {
			return false
		}
	}
	return true
}

func (o *Option) count() int {
	n := 0
	for _, w := range o.Bits {
		n += bits.OnesCount64(w)
	}
	return n
}

func (o *Option) equal(p *Option) bool {
	if o.Root != p.Root || o.Assign != p.Assign || o.Free != p.Free || len(o.Bits) != len(p.Bits) {
		return false
	}
	for i, w := range o.Bits {
		if p.Bits[i] != w {
			return false
		}
	}
	return true
}

func (o *Option) less(p *Option) bool {
	if o.Root != p.Root {
		return o.Root < p.Root
	}
	if o.Assign != p.Assign {
		return o.Assign < p.Assign
	}
	if o.Free != p.Free {
		return o.Free < p.Free
	}
	for i, w := range o.Bits {
		if p.Bits[i] != w {
			return w < p.Bits[i]
		}
	}
	return false
}

func (o *Option) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "{root: %v, nodes: [", o.Root)
	first := true
	for i := 0; i < len(o.Bits)*64; i++ {
		if !o.has(i) {
			continue
		}
		if !first {
			fmt.Fprintf(&b, " ")
		}
		first = false
		fmt.Fprintf(&b, "%v", i)
	}
	fmt.Fprintf(&b, "], assign: %v, free: %v}", o.Assign, o.Free)
	return b.String()
}

// combineOptions merges two options covering disjoint fragments. It fails when
// the assignments don't unify. The root of a is kept unless a has no root yet.
func combineOptions(a, b *Option) (*Option, bool) {
	if len(a.Bits) != len(b.Bits) {
		panic(errors.Errorf("coverage widths mismatch; %v and %v", len(a.Bits)*64, len(b.Bits)*64))
	}
	assign, ok := a.Assign.Unify(b.Assign)
	if !ok {
		return nil, false
	}
	bs := make([]uint64, len(a.Bits))
	for i := range bs {
		bs[i] = a.Bits[i] | b.Bits[i]
	}
	root := a.Root
	if root == rootAxiom {
		root = b.Root
	}
	return &Option{
		Bits:   bs,
		Root:   root,
		Assign: assign,
		Free:   a.Free.Union(b.Free),
	}, true
}

// Coverage is a set of alternative options. A nil *Coverage means the parser
// has no target meaning, and a non-nil coverage without options means no
// consistent way to cover the meaning exists.
type Coverage struct {
	opts []*Option
	hash uint64
}

// newCoverage removes duplicate options and sorts the rest so that equal
// coverages have equal hashes.
func newCoverage(opts ...*Option) *Coverage {
	sorted := make([]*Option, len(opts))
	copy(sorted, opts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].less(sorted[j])
	})
	uniq := make([]*Option, 0, len(sorted))
	for _, o := range sorted {
		if len(uniq) > 0 && uniq[len(uniq)-1].equal(o) {
			continue
		}
		uniq = append(uniq, o)
	}

	h := fnv.New64a()
	var buf [8]byte
	for _, o := range uniq {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(o.Root)))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(o.Assign))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(o.Free))
		h.Write(buf[:])
		for _, w := range o.Bits {
			binary.LittleEndian.PutUint64(buf[:], w)
			h.Write(buf[:])
		}
	}

	return &Coverage{
		opts: uniq,
		hash: h.Sum64(),
	}
}

func (c *Coverage) Options() []*Option {
	if c == nil {
		return nil
	}
	return c.opts
}

func (c *Coverage) Len() int {
	if c == nil {
		return 0
	}
	return len(c.opts)
}

// IsEmpty reports whether the coverage has no option. A nil coverage is not
// empty.
func (c *Coverage) IsEmpty() bool {
	return c != nil && len(c.opts) == 0
}

func (c *Coverage) Hash() uint64 {
	if c == nil {
		return 0
	}
	return c.hash
}

func (c *Coverage) Equal(d *Coverage) bool {
	if c == nil || d == nil {
		return c == nil && d == nil
	}
	if c.hash != d.hash || len(c.opts) != len(d.opts) {
		return false
	}
	for i, o := range c.opts {
		if !o.equal(d.opts[i]) {
			return false
		}
	}
	return true
}

// Product combines every pair of options. A pair whose assignments don't unify
// is dropped.
func (c *Coverage) Product(d *Coverage) *Coverage {
	if c == nil {
		return d
	}
	if d == nil {
		return c
	}
	var opts []*Option
	for _, a := range c.opts {
		for _, b := range d.opts {
			o, ok := combineOptions(a, b)
			if !ok {
				continue
			}
			opts = append(opts, o)
		}
	}
	return newCoverage(opts...)
}

// Intersect keeps the options that are exactly equal to some option of d.
func (c *Coverage) Intersect(d *Coverage) *Coverage {
	if c == nil {
		return d
	}
	if d == nil {
		return c
	}
	var opts []*Option
	for _, a := range c.opts {
		for _, b := range d.opts {
			if len(a.Bits) != len(b.Bits) {
				panic(errors.Errorf("coverage widths mismatch; %v and %v", len(a.Bits)*64, len(b.Bits)*64))
			}
			if a.equal(b) {
				opts = append(opts, a)
				break
			}
		}
	}
	return newCoverage(opts...)
}

func (c *Coverage) Union(d *Coverage) *Coverage {
	if c == nil {
		return d
	}
	if d == nil {
		return c
	}
	opts := make([]*Option, 0, len(c.opts)+len(d.opts))
	opts = append(opts, c.opts...)
	opts = append(opts, d.opts...)
	return newCoverage(opts...)
}

// IsSaturated reports whether some option covers the whole subtree of the node.
func (c *Coverage) IsSaturated(node int, m *meaning.Meaning) bool {
	if c == nil {
		return false
	}
	for _, o := range c.opts {
		if o.saturated(node, m.LastDescendant[node]) {
			return true
		}
	}
	return false
}

// Complete reports whether some option covers every node of the meaning.
func (c *Coverage) Complete(m *meaning.Meaning) bool {
	if c == nil {
		return false
	}
	for _, o := range c.opts {
		if o.count() == m.Len() {
			return true
		}
	}
	return false
}

func (c *Coverage) String() string {
	if c == nil {
		return "none"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[")
	for i, o := range c.opts {
		if i > 0 {
			fmt.Fprintf(&b, " ")
		}
		fmt.Fprintf(&b, "%v", o)
	}
	fmt.Fprintf(&b, "]")
	return b.String()
}

package grammar

import (
	"testing"
)

func TestVariableSet(t *testing.T) {
	s := NewVariableSet(0, 3, 63)
	for _, v := range []int{0, 3, 63} {
		if !s.Has(v) {
			t.Fatalf("a set must have %v: %v", v, s)
		}
	}
	if s.Has(1) || s.Has(64) || s.Has(-1) {
		t.Fatalf("a set has an unexpected member: %v", s)
	}
	if s.Len() != 3 {
		t.Fatalf("unexpected length; want: 3, got: %v", s.Len())
	}
	vars := s.Vars()
	if len(vars) != 3 || vars[0] != 0 || vars[1] != 3 || vars[2] != 63 {
		t.Fatalf("unexpected members: %v", vars)
	}

	u := NewVariableSet(3, 5)
	if got := s.Union(u); got != NewVariableSet(0, 3, 5, 63) {
		t.Fatalf("unexpected union: %v", got)
	}
	if got := s.Intersect(u); got != NewVariableSet(3) {
		t.Fatalf("unexpected intersection: %v", got)
	}
	if got := s.Minus(u); got != NewVariableSet(0, 63) {
		t.Fatalf("unexpected difference: %v", got)
	}
	if !NewVariableSet(3).IsSubsetOf(s) || u.IsSubsetOf(s) {
		t.Fatalf("unexpected subset relation")
	}
	if !NewVariableSet().IsEmpty() {
		t.Fatalf("a set without members must be empty")
	}
}

func TestVariableAssignment(t *testing.T) {
	var a VariableAssignment
	a = a.Bind(0, 2).Bind(3, 0)
	if v, ok := a.Lookup(0); !ok || v != 2 {
		t.Fatalf("unexpected binding of slot 0; want: 2, got: %v (%v)", v, ok)
	}
	if v, ok := a.Lookup(3); !ok || v != 0 {
		t.Fatalf("unexpected binding of slot 3; want: 0, got: %v (%v)", v, ok)
	}
	if _, ok := a.Lookup(1); ok {
		t.Fatalf("slot 1 must be unbound")
	}
	if b := a.Bind(0, 5); func() int { v, _ := b.Lookup(0); return v }() != 5 {
		t.Fatalf("Bind must overwrite a binding")
	}

	tests := []struct {
		caption string
		a       VariableAssignment
		b       VariableAssignment
		ok      bool
		unified VariableAssignment
	}{
		{
			caption: "disjoint assignments unify",
			a:       VariableAssignment(0).Bind(0, 1),
			b:       VariableAssignment(0).Bind(1, 2),
			ok:      true,
			unified: VariableAssignment(0).Bind(0, 1).Bind(1, 2),
		},
		{
			caption: "assignments agreeing on a shared slot unify",
			a:       VariableAssignment(0).Bind(0, 1).Bind(2, 4),
			b:       VariableAssignment(0).Bind(0, 1),
			ok:      true,
			unified: VariableAssignment(0).Bind(0, 1).Bind(2, 4),
		},
		{
			caption: "a slot bound to two variables fails",
			a:       VariableAssignment(0).Bind(0, 1),
			b:       VariableAssignment(0).Bind(0, 2),
			ok:      false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			unified, ok := tt.a.Unify(tt.b)
			if ok != tt.ok {
				t.Fatalf("unexpected result; want: %v, got: %v", tt.ok, ok)
			}
			if ok && unified != tt.unified {
				t.Fatalf("unexpected assignment; want: %v, got: %v", tt.unified, unified)
			}
		})
	}

	c := VariableAssignment(0).Bind(0, 7).Bind(1, 8).Compose([]int{2, 5})
	if v, ok := c.Lookup(2); !ok || v != 7 {
		t.Fatalf("unexpected binding of slot 2; want: 7, got: %v", c)
	}
	if v, ok := c.Lookup(5); !ok || v != 8 {
		t.Fatalf("unexpected binding of slot 5; want: 8, got: %v", c)
	}
	if _, ok := c.Lookup(0); ok {
		t.Fatalf("slot 0 must be unbound after Compose: %v", c)
	}
	if img := c.Image([]int{2, 3, 5}); img != NewVariableSet(7, 8) {
		t.Fatalf("unexpected image: %v", img)
	}
}

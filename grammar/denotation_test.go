package grammar

import (
	"testing"
)

func TestDenotation(t *testing.T) {
	const (
		tyCity  = 1
		tyState = 2
	)
	city := NewTypeTuple(tyCity)
	state := NewTypeTuple(tyState)

	tests := []struct {
		caption  string
		got      Denotation
		expected Denotation
	}{
		{
			caption:  "the universal denotation meets any tuple",
			got:      UniversalDenotation().Intersect(NewDenotation(city)),
			expected: NewDenotation(city),
		},
		{
			caption:  "incompatible tuples have no meet",
			got:      NewDenotation(city).Intersect(NewDenotation(state)),
			expected: NewDenotation(),
		},
		{
			caption:  "a union removes duplicate tuples",
			got:      NewDenotation(city, state).Union(NewDenotation(state)),
			expected: NewDenotation(state, city),
		},
		{
			caption:  "a projection re-indexes slots",
			got:      NewDenotation(NewTypeTuple(0, tyState, tyCity)).Project([]int{2, 1}),
			expected: NewDenotation(NewTypeTuple(tyCity, tyState)),
		},
		{
			caption:  "a restriction refines compatible tuples",
			got:      NewDenotation(NewTypeTuple(0, tyCity), NewTypeTuple(tyState, tyState)).Restrict([]int{0}, NewDenotation(city)),
			expected: NewDenotation(NewTypeTuple(tyCity, tyCity)),
		},
		{
			caption:  "a restriction by an incompatible denotation is empty",
			got:      NewDenotation(state).Restrict([]int{0}, NewDenotation(city)),
			expected: NewDenotation(),
		},
		{
			caption:  "a restriction by the universal denotation changes nothing",
			got:      NewDenotation(city, state).Restrict([]int{0}, UniversalDenotation()),
			expected: NewDenotation(city, state),
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			if !tt.got.Equal(tt.expected) {
				t.Fatalf("unexpected denotation; want: %v, got: %v", tt.expected, tt.got)
			}
			if tt.got.Hash() != tt.expected.Hash() {
				t.Fatalf("equal denotations must have the same hash")
			}
		})
	}

	if !NewDenotation().IsEmpty() || UniversalDenotation().IsEmpty() {
		t.Fatalf("unexpected emptiness")
	}
}

package meaning

import (
	"strings"
	"testing"

	verr "github.com/nihei9/synchart/error"
)

func TestParse(t *testing.T) {
	n, err := Parse(strings.NewReader(`answer[A](loc[A](place(named{'new york'})), named{42})`))
	if err != nil {
		t.Fatal(err)
	}
	if n.Production != "answer" || len(n.Vars) != 1 || n.Vars[0] != "A" || len(n.Children) != 2 {
		t.Fatalf("unexpected root: %+v", n)
	}
	if n.Pos.Row != 1 || n.Pos.Col != 1 {
		t.Fatalf("unexpected position: %+v", n.Pos)
	}
	loc := n.Children[0]
	if loc.Production != "loc" || len(loc.Children) != 1 || loc.Pos.Col != 11 {
		t.Fatalf("unexpected child: %+v", loc)
	}
	named := loc.Children[0].Children[0]
	if named.Production != "named" || named.Literal != "new york" || named.Vars != nil {
		t.Fatalf("unexpected leaf: %+v", named)
	}
	if n.Children[1].Literal != "42" {
		t.Fatalf("unexpected literal: %v", n.Children[1].Literal)
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		synErr  *SyntaxError
	}{
		{
			caption: "a meaning must begin with a production name",
			src:     `[A]`,
			synErr:  synErrNoProductionName,
		},
		{
			caption: "a variable list must be closed",
			src:     `answer[A`,
			synErr:  synErrUnclosedVars,
		},
		{
			caption: "a variable must be an identifier",
			src:     `answer[(]`,
			synErr:  synErrInvalidVar,
		},
		{
			caption: "a literal must not be empty",
			src:     `named{}`,
			synErr:  synErrEmptyLiteral,
		},
		{
			caption: "a quoted literal must not be empty",
			src:     `named{''}`,
			synErr:  synErrEmptyLiteral,
		},
		{
			caption: "a literal must be closed",
			src:     `named{foo`,
			synErr:  synErrUnclosedLiteral,
		},
		{
			caption: "a literal must be an identifier, a number, or a quoted string",
			src:     `named{,}`,
			synErr:  synErrInvalidLiteral,
		},
		{
			caption: "a child list must not be empty",
			src:     `answer()`,
			synErr:  synErrEmptyChildren,
		},
		{
			caption: "a child list must be closed",
			src:     `answer(state`,
			synErr:  synErrUnclosedChildren,
		},
		{
			caption: "a meaning must end after its root",
			src:     `answer(state) foo`,
			synErr:  synErrUnexpectedTrailing,
		},
		{
			caption: "an invalid token is an error",
			src:     `answer#`,
			synErr:  synErrInvalidToken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			if err == nil {
				t.Fatalf("an error must occur")
			}
			specErrs, ok := err.(verr.SpecErrors)
			if !ok {
				t.Fatalf("unexpected error type; want: verr.SpecErrors, got: %T (%v)", err, err)
			}
			if specErrs[0].Cause != tt.synErr {
				t.Fatalf("unexpected error; want: %v, got: %v", tt.synErr, specErrs[0].Cause)
			}
		})
	}
}

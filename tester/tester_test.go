package tester

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nihei9/synchart/grammar"
	"github.com/nihei9/synchart/spec"
)

const testGrammar = `
%name animal;
%start NP;

production np  : NP -> np ( N ) ;
production big : N -> big ( N ) ;
production cat : N -> cat ;
production dog : N -> dog ;

rule np  : "the" N#1 ;
rule big : "big" N#1 ;
rule cat : "cat" ;
rule dog : "dog" ;
rule dog : "cat" %weight -1 ;
`

func TestTester_Run(t *testing.T) {
	ast, err := spec.Parse(strings.NewReader(testGrammar))
	if err != nil {
		t.Fatal(err)
	}
	b := grammar.GrammarBuilder{
		AST: ast,
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	err = os.WriteFile(filepath.Join(dir, "a.test"), []byte(`# animals
the cat	np(cat)
the big dog	np(big(dog))

the cat	np(dog)
the dog	np(cat)
`), 0600)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(dir, "b.test"), []byte("the cat\tnp(cow)\nthe cow\tnp(cat)\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}

	files := ListTestFiles(dir)
	if len(files) != 2 {
		t.Fatalf("unexpected file count; want: 2, got: %v", len(files))
	}
	for _, f := range files {
		if f.Error != nil {
			t.Fatal(f.Error)
		}
	}

	tr := &Tester{
		Grammar: g,
		Files:   files,
	}
	rs, err := tr.Run()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		caption   string
		passed    bool
		reachable bool
	}{
		{caption: "the best parse yields the meaning", passed: true, reachable: true},
		{caption: "a nested meaning", passed: true, reachable: true},
		{caption: "a worse parse yields the meaning", reachable: true},
		{caption: "no parse yields the meaning", reachable: false},
		{caption: "an undefined production in the meaning"},
		{caption: "a sentence with an unknown word"},
	}
	if len(rs) != len(tests) {
		t.Fatalf("unexpected result count; want: %v, got: %v", len(tests), len(rs))
	}
	for i, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			r := rs[i]
			if tt.passed != (r.Error == nil) {
				t.Fatalf("unexpected result: %v", r)
			}
			if r.Reachable != tt.reachable {
				t.Fatalf("unexpected reachability: %v", r)
			}
		})
	}
}

func TestListTestFiles_InvalidCase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.test")
	err := os.WriteFile(path, []byte("the cat np(cat)\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}
	files := ListTestFiles(path)
	if len(files) != 1 || files[0].Error == nil {
		t.Fatalf("an error must occur")
	}
}

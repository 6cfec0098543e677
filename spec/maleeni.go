package spec

import (
	"fmt"
	"io"
	"strings"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

// Token is a token produced by a maleeni lexer. Row and Col are 1-origin.
type Token struct {
	Kind    string
	Text    string
	Row     int
	Col     int
	EOF     bool
	Invalid bool
}

// LexEntry is a pair of a kind name and a pattern. When Literal is true, the
// pattern is escaped before it is compiled.
type LexEntry struct {
	Kind    string
	Pattern string
	Literal bool
}

// CompileLexSpec compiles lexical entries into a maleeni lexical specification.
// Entries listed earlier take precedence when two patterns match the same length.
func CompileLexSpec(name string, entries []*LexEntry) (*mlspec.CompiledLexSpec, error) {
	lexSpec := &mlspec.LexSpec{
		Name: name,
	}
	for _, e := range entries {
		pat := e.Pattern
		if e.Literal {
			pat = mlspec.EscapePattern(pat)
		}
		lexSpec.Entries = append(lexSpec.Entries, &mlspec.LexEntry{
			Kind:    mlspec.LexKindName(e.Kind),
			Pattern: mlspec.LexPattern(pat),
		})
	}

	clspec, err, cErrs := mlcompiler.Compile(lexSpec, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			writeCompileError(&b, cErrs[0])
			for _, cerr := range cErrs[1:] {
				fmt.Fprintf(&b, "\n")
				writeCompileError(&b, cerr)
			}
			return nil, fmt.Errorf("%v", b.String())
		}
		return nil, err
	}
	return clspec, nil
}

func writeCompileError(w io.Writer, cErr *mlcompiler.CompileError) {
	if cErr.Fragment {
		fmt.Fprintf(w, "fragment ")
	}
	fmt.Fprintf(w, "%v: %v", cErr.Kind, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}

// Lexer is a thin wrapper of a maleeni lexer that reports kind names instead of kind IDs.
type Lexer struct {
	s *mlspec.CompiledLexSpec
	d *mldriver.Lexer
}

func NewLexer(s *mlspec.CompiledLexSpec, src io.Reader) (*Lexer, error) {
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(s), src)
	if err != nil {
		return nil, err
	}
	return &Lexer{
		s: s,
		d: d,
	}, nil
}

func (l *Lexer) Next() (*Token, error) {
	tok, err := l.d.Next()
	if err != nil {
		return nil, err
	}
	if tok.EOF {
		return &Token{
			EOF: true,
			Row: tok.Row + 1,
			Col: tok.Col + 1,
		}, nil
	}
	if tok.Invalid {
		return &Token{
			Invalid: true,
			Text:    string(tok.Lexeme),
			Row:     tok.Row + 1,
			Col:     tok.Col + 1,
		}, nil
	}
	return &Token{
		Kind: l.s.KindNames[tok.KindID].String(),
		Text: string(tok.Lexeme),
		Row:  tok.Row + 1,
		Col:  tok.Col + 1,
	}, nil
}

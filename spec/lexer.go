package spec

import (
	"io"
	"strconv"
	"strings"
	"sync"

	mlspec "github.com/nihei9/maleeni/spec"
	verr "github.com/nihei9/synchart/error"
)

type tokenKind string

const (
	tokenKindKWProduction = tokenKind("production")
	tokenKindKWRule       = tokenKind("rule")
	tokenKindID           = tokenKind("id")
	tokenKindVariable     = tokenKind("variable")
	tokenKindLink         = tokenKind("#")
	tokenKindGap          = tokenKind("~")
	tokenKindWildcard     = tokenKind("wildcard")
	tokenKindWord         = tokenKind("word")
	tokenKindQuoted       = tokenKind("quoted")
	tokenKindNumber       = tokenKind("number")
	tokenKindDirective    = tokenKind("%")
	tokenKindArrow        = tokenKind("->")
	tokenKindColon        = tokenKind(":")
	tokenKindSemicolon    = tokenKind(";")
	tokenKindComma        = tokenKind(",")
	tokenKindLParen       = tokenKind("(")
	tokenKindRParen       = tokenKind(")")
	tokenKindLBracket     = tokenKind("[")
	tokenKindRBracket     = tokenKind("]")
	tokenKindEOF          = tokenKind("eof")
	tokenKindInvalid      = tokenKind("invalid")
)

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	num  int
	pos  Position
}

func newSymbolToken(kind tokenKind, pos Position) *token {
	return &token{
		kind: kind,
		pos:  pos,
	}
}

func newTextToken(kind tokenKind, text string, pos Position) *token {
	return &token{
		kind: kind,
		text: text,
		pos:  pos,
	}
}

func newNumToken(kind tokenKind, num int, pos Position) *token {
	return &token{
		kind: kind,
		num:  num,
		pos:  pos,
	}
}

func newEOFToken(pos Position) *token {
	return &token{
		kind: tokenKindEOF,
		pos:  pos,
	}
}

func newInvalidToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindInvalid,
		text: text,
		pos:  pos,
	}
}

const (
	patWhiteSpace = `[\u{0009}\u{000A}\u{000D}\u{0020}]+`
	patIdentifier = `[A-Za-z_][0-9A-Za-z_]*`
	patNumber     = `[0-9]+`
)

var grammarLexEntries = []*LexEntry{
	{Kind: "white_space", Pattern: patWhiteSpace},
	{Kind: "line_comment", Pattern: mlspec.EscapePattern("//") + `[^\u{000A}]*`},
	{Kind: "kw_production", Pattern: "production", Literal: true},
	{Kind: "kw_rule", Pattern: "rule", Literal: true},
	{Kind: "identifier", Pattern: patIdentifier},
	{Kind: "variable", Pattern: mlspec.EscapePattern("$") + patIdentifier},
	{Kind: "link", Pattern: mlspec.EscapePattern("#") + patNumber},
	{Kind: "gap", Pattern: mlspec.EscapePattern("~") + patNumber},
	{Kind: "wildcard", Pattern: mlspec.EscapePattern("*") + `(n|id)?`},
	{Kind: "word", Pattern: `"[^"]*"`},
	{Kind: "quoted", Pattern: `'[^']*'`},
	{Kind: "number", Pattern: `-?` + patNumber + `(` + mlspec.EscapePattern(".") + patNumber + `)?`},
	{Kind: "directive", Pattern: mlspec.EscapePattern("%") + `[a-z]+`},
	{Kind: "arrow", Pattern: "->", Literal: true},
	{Kind: "colon", Pattern: ":", Literal: true},
	{Kind: "semicolon", Pattern: ";", Literal: true},
	{Kind: "comma", Pattern: ",", Literal: true},
	{Kind: "l_paren", Pattern: "(", Literal: true},
	{Kind: "r_paren", Pattern: ")", Literal: true},
	{Kind: "l_bracket", Pattern: "[", Literal: true},
	{Kind: "r_bracket", Pattern: "]", Literal: true},
}

var (
	grammarLexSpecOnce sync.Once
	grammarLexSpec     *mlspec.CompiledLexSpec
	grammarLexSpecErr  error
)

func compiledGrammarLexSpec() (*mlspec.CompiledLexSpec, error) {
	grammarLexSpecOnce.Do(func() {
		grammarLexSpec, grammarLexSpecErr = CompileLexSpec("synchart_grammar", grammarLexEntries)
	})
	return grammarLexSpec, grammarLexSpecErr
}

type lexer struct {
	d *Lexer
}

func newLexer(src io.Reader) (*lexer, error) {
	s, err := compiledGrammarLexSpec()
	if err != nil {
		return nil, err
	}
	d, err := NewLexer(s, src)
	if err != nil {
		return nil, err
	}
	return &lexer{
		d: d,
	}, nil
}

func (l *lexer) next() (*token, error) {
	var tok *Token
	for {
		var err error
		tok, err = l.d.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			return newEOFToken(newPosition(tok.Row, tok.Col)), nil
		}
		if tok.Invalid {
			return newInvalidToken(tok.Text, newPosition(tok.Row, tok.Col)), nil
		}
		switch tok.Kind {
		case "white_space", "line_comment":
			continue
		}

		break
	}

	pos := newPosition(tok.Row, tok.Col)
	switch tok.Kind {
	case "kw_production":
		return newSymbolToken(tokenKindKWProduction, pos), nil
	case "kw_rule":
		return newSymbolToken(tokenKindKWRule, pos), nil
	case "identifier":
		return newTextToken(tokenKindID, tok.Text, pos), nil
	case "variable":
		return newTextToken(tokenKindVariable, tok.Text, pos), nil
	case "link", "gap":
		// Remove the '#' or '~' character and convert to an integer.
		num, err := strconv.Atoi(tok.Text[1:])
		if err != nil {
			return nil, err
		}
		if num == 0 {
			cause := synErrZeroLink
			if tok.Kind == "gap" {
				cause = synErrZeroGap
			}
			return nil, &verr.SpecError{
				Cause: cause,
				Row:   pos.Row,
				Col:   pos.Col,
			}
		}
		if tok.Kind == "gap" {
			return newNumToken(tokenKindGap, num, pos), nil
		}
		return newNumToken(tokenKindLink, num, pos), nil
	case "wildcard":
		return newTextToken(tokenKindWildcard, tok.Text, pos), nil
	case "word":
		// Remove the double quotes.
		w := tok.Text[1 : len(tok.Text)-1]
		if strings.TrimSpace(w) == "" || strings.ContainsAny(w, " \t\r\n") {
			return nil, &verr.SpecError{
				Cause:  synErrInvalidWord,
				Detail: tok.Text,
				Row:    pos.Row,
				Col:    pos.Col,
			}
		}
		return newTextToken(tokenKindWord, w, pos), nil
	case "quoted":
		if len(tok.Text) <= 2 {
			return nil, &verr.SpecError{
				Cause: synErrEmptyQuoted,
				Row:   pos.Row,
				Col:   pos.Col,
			}
		}
		return newTextToken(tokenKindQuoted, tok.Text, pos), nil
	case "number":
		return newTextToken(tokenKindNumber, tok.Text, pos), nil
	case "directive":
		// Remove the '%' character.
		return newTextToken(tokenKindDirective, tok.Text[1:], pos), nil
	case "arrow":
		return newSymbolToken(tokenKindArrow, pos), nil
	case "colon":
		return newSymbolToken(tokenKindColon, pos), nil
	case "semicolon":
		return newSymbolToken(tokenKindSemicolon, pos), nil
	case "comma":
		return newSymbolToken(tokenKindComma, pos), nil
	case "l_paren":
		return newSymbolToken(tokenKindLParen, pos), nil
	case "r_paren":
		return newSymbolToken(tokenKindRParen, pos), nil
	case "l_bracket":
		return newSymbolToken(tokenKindLBracket, pos), nil
	case "r_bracket":
		return newSymbolToken(tokenKindRBracket, pos), nil
	default:
		return newInvalidToken(tok.Text, pos), nil
	}
}

package meaning

import (
	"io"
	"sync"

	mlspec "github.com/nihei9/maleeni/spec"
	verr "github.com/nihei9/synchart/error"
	"github.com/nihei9/synchart/spec"
)

// Node is a meaning tree as written in the meaning notation:
//
//	answer[A](and[A](state[A], loc[A](place(named{austin}))))
//
// Vars names the local variable slots of the production in slot order. Literal
// is the value of the wildcard of a wildcard production.
type Node struct {
	Production string
	Vars       []string
	Literal    string
	Children   []*Node
	Pos        spec.Position
}

var notationLexEntries = []*spec.LexEntry{
	{Kind: "white_space", Pattern: `[\u{0009}\u{000A}\u{000D}\u{0020}]+`},
	{Kind: "identifier", Pattern: `[A-Za-z_][0-9A-Za-z_]*`},
	{Kind: "number", Pattern: `-?[0-9]+(\.[0-9]+)?`},
	{Kind: "quoted", Pattern: `'[^']*'`},
	{Kind: "l_bracket", Pattern: "[", Literal: true},
	{Kind: "r_bracket", Pattern: "]", Literal: true},
	{Kind: "l_brace", Pattern: "{", Literal: true},
	{Kind: "r_brace", Pattern: "}", Literal: true},
	{Kind: "l_paren", Pattern: "(", Literal: true},
	{Kind: "r_paren", Pattern: ")", Literal: true},
	{Kind: "comma", Pattern: ",", Literal: true},
}

var (
	notationLexSpecOnce sync.Once
	notationLexSpec     *mlspec.CompiledLexSpec
	notationLexSpecErr  error
)

func compiledNotationLexSpec() (*mlspec.CompiledLexSpec, error) {
	notationLexSpecOnce.Do(func() {
		notationLexSpec, notationLexSpecErr = spec.CompileLexSpec("synchart_meaning", notationLexEntries)
	})
	return notationLexSpec, notationLexSpecErr
}

func raiseSyntaxError(synErr *SyntaxError) {
	panic(synErr)
}

// Parse reads a meaning tree written in the meaning notation.
func Parse(src io.Reader) (*Node, error) {
	s, err := compiledNotationLexSpec()
	if err != nil {
		return nil, err
	}
	lex, err := spec.NewLexer(s, src)
	if err != nil {
		return nil, err
	}
	p := &notationParser{
		lex: lex,
	}
	return p.parse()
}

type notationParser struct {
	lex    *spec.Lexer
	peeked *spec.Token
	last   *spec.Token
	pos    spec.Position
}

func (p *notationParser) parse() (root *Node, retErr error) {
	defer func() {
		err := recover()
		if err == nil {
			return
		}
		synErr, ok := err.(*SyntaxError)
		if !ok {
			if e, ok := err.(error); ok {
				retErr = e
				return
			}
			panic(err)
		}
		retErr = verr.SpecErrors{
			&verr.SpecError{
				Cause: synErr,
				Row:   p.pos.Row,
				Col:   p.pos.Col,
			},
		}
	}()

	root = p.parseNode()
	if !p.consume("") {
		p.next()
		raiseSyntaxError(synErrUnexpectedTrailing)
	}
	return root, nil
}

func (p *notationParser) parseNode() *Node {
	if !p.consume("identifier") {
		p.next()
		raiseSyntaxError(synErrNoProductionName)
	}
	n := &Node{
		Production: p.last.Text,
		Pos:        spec.Position{Row: p.last.Row, Col: p.last.Col},
	}

	if p.consume("l_bracket") {
		n.Vars = []string{}
		if !p.consume("r_bracket") {
			for {
				if !p.consume("identifier") {
					if p.consume("") {
						raiseSyntaxError(synErrUnclosedVars)
					}
					p.next()
					raiseSyntaxError(synErrInvalidVar)
				}
				n.Vars = append(n.Vars, p.last.Text)
				if p.consume("r_bracket") {
					break
				}
				if !p.consume("comma") {
					raiseSyntaxError(synErrUnclosedVars)
				}
			}
		}
	}

	if p.consume("l_brace") {
		switch {
		case p.consume("identifier"), p.consume("number"):
			n.Literal = p.last.Text
		case p.consume("quoted"):
			// Remove the single quotes.
			n.Literal = p.last.Text[1 : len(p.last.Text)-1]
			if n.Literal == "" {
				raiseSyntaxError(synErrEmptyLiteral)
			}
		case p.consume("r_brace"):
			raiseSyntaxError(synErrEmptyLiteral)
		default:
			p.next()
			raiseSyntaxError(synErrInvalidLiteral)
		}
		if !p.consume("r_brace") {
			raiseSyntaxError(synErrUnclosedLiteral)
		}
	}

	if p.consume("l_paren") {
		if p.consume("r_paren") {
			raiseSyntaxError(synErrEmptyChildren)
		}
		for {
			n.Children = append(n.Children, p.parseNode())
			if p.consume("r_paren") {
				break
			}
			if !p.consume("comma") {
				raiseSyntaxError(synErrUnclosedChildren)
			}
		}
	}

	return n
}

func (p *notationParser) read() *spec.Token {
	if p.peeked != nil {
		tok := p.peeked
		p.peeked = nil
		return tok
	}
	for {
		tok, err := p.lex.Next()
		if err != nil {
			panic(err)
		}
		if tok.Kind == "white_space" {
			continue
		}
		return tok
	}
}

func (p *notationParser) next() {
	tok := p.read()
	p.pos = spec.Position{Row: tok.Row, Col: tok.Col}
	p.last = tok
}

// consume reads the next token when it has the kind. The empty kind stands
// for EOF.
func (p *notationParser) consume(kind string) bool {
	tok := p.read()
	p.pos = spec.Position{Row: tok.Row, Col: tok.Col}
	if tok.Invalid {
		raiseSyntaxError(synErrInvalidToken)
	}
	if (kind == "" && tok.EOF) || (kind != "" && !tok.EOF && tok.Kind == kind) {
		p.last = tok
		return true
	}
	p.peeked = tok
	return false
}

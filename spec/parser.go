package spec

import (
	"io"

	verr "github.com/nihei9/synchart/error"
)

type RootNode struct {
	Directives  []*DirectiveNode
	Productions []*ProductionNode
	Rules       []*RuleNode
}

type DirectiveNode struct {
	Name       string
	Parameters []*ParameterNode
	Pos        Position
}

// ParameterNode is a parameter of a directive. Exactly one of ID, Number, and
// Tuple is set.
type ParameterNode struct {
	ID     string
	Number string
	Tuple  []string
	Pos    Position
}

type ProductionNode struct {
	Name       string
	LHS        *NonTerminalNode
	RHS        []*MRElementNode
	Directives []*DirectiveNode
	Pos        Position
}

type NonTerminalNode struct {
	Name string
	Args []string
	Pos  Position
}

// MRElementNode is an element of the meaning side of a production. ID is a
// name that becomes a non-terminal when some production defines it as its LHS,
// or an MR terminal otherwise. Terminal holds a token that is always a
// terminal, such as a parenthesis or a quoted token.
type MRElementNode struct {
	ID       string
	Args     []string
	Terminal string
	Variable string
	Wildcard string
	Pos      Position
}

type RuleNode struct {
	Name       string
	Elements   []*NLElementNode
	Directives []*DirectiveNode
	Pos        Position
}

// NLElementNode is an element of the natural-language side of a rule. Gap
// elements carry the number of words the parser may skip at their position.
type NLElementNode struct {
	Word        string
	Wildcard    string
	NonTerminal string
	Link        int
	Gap         int
	Pos         Position
}

func raiseSyntaxError(synErr *SyntaxError) {
	panic(synErr)
}

func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	return root, nil
}

type parser struct {
	lex       *lexer
	peekedTok *token
	lastTok   *token
	pos       Position
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	defer func() {
		err := recover()
		if err == nil {
			return
		}
		switch e := err.(type) {
		case *SyntaxError:
			retErr = verr.SpecErrors{
				&verr.SpecError{
					Cause: e,
					Row:   p.pos.Row,
					Col:   p.pos.Col,
				},
			}
		case *verr.SpecError:
			retErr = verr.SpecErrors{e}
		case error:
			retErr = e
		default:
			panic(err)
		}
	}()
	return p.parseRoot(), nil
}

func (p *parser) parseRoot() *RootNode {
	root := &RootNode{}
	for {
		switch {
		case p.consume(tokenKindEOF):
			return root
		case p.consume(tokenKindDirective):
			dir := p.parseDirectiveBody()
			if !p.consume(tokenKindSemicolon) {
				raiseSyntaxError(synErrNoSemicolon)
			}
			root.Directives = append(root.Directives, dir)
		case p.consume(tokenKindKWProduction):
			root.Productions = append(root.Productions, p.parseProduction())
		case p.consume(tokenKindKWRule):
			root.Rules = append(root.Rules, p.parseRule())
		default:
			p.next()
			raiseSyntaxError(synErrUnexpectedStatement)
		}
	}
}

// parseDirectiveBody parses the name and the parameters of a directive. The
// directive token itself has already been consumed.
func (p *parser) parseDirectiveBody() *DirectiveNode {
	dir := &DirectiveNode{
		Name: p.lastTok.text,
		Pos:  p.lastTok.pos,
	}
	if dir.Name == "" {
		raiseSyntaxError(synErrNoDirectiveName)
	}
	for {
		switch {
		case p.consume(tokenKindID):
			dir.Parameters = append(dir.Parameters, &ParameterNode{
				ID:  p.lastTok.text,
				Pos: p.lastTok.pos,
			})
		case p.consume(tokenKindNumber):
			dir.Parameters = append(dir.Parameters, &ParameterNode{
				Number: p.lastTok.text,
				Pos:    p.lastTok.pos,
			})
		case p.consume(tokenKindLParen):
			param := &ParameterNode{
				Tuple: []string{},
				Pos:   p.lastTok.pos,
			}
			for !p.consume(tokenKindRParen) {
				switch {
				case p.consume(tokenKindID):
					param.Tuple = append(param.Tuple, p.lastTok.text)
				case p.consume(tokenKindComma):
				case p.consume(tokenKindSemicolon), p.consume(tokenKindEOF):
					raiseSyntaxError(synErrUnclosedTuple)
				default:
					p.next()
					raiseSyntaxError(synErrInvalidTupleElem)
				}
			}
			dir.Parameters = append(dir.Parameters, param)
		default:
			return dir
		}
	}
}

func (p *parser) parseProduction() *ProductionNode {
	pos := p.lastTok.pos
	if !p.consume(tokenKindID) {
		raiseSyntaxError(synErrNoProductionName)
	}
	name := p.lastTok.text
	if !p.consume(tokenKindColon) {
		raiseSyntaxError(synErrNoColon)
	}
	if !p.consume(tokenKindID) {
		raiseSyntaxError(synErrNoLHS)
	}
	lhs := &NonTerminalNode{
		Name: p.lastTok.text,
		Pos:  p.lastTok.pos,
	}
	if p.consume(tokenKindLBracket) {
		lhs.Args = p.parseArgs()
	}
	if !p.consume(tokenKindArrow) {
		raiseSyntaxError(synErrNoArrow)
	}

	var rhs []*MRElementNode
	for {
		elem := p.parseMRElement()
		if elem == nil {
			break
		}
		rhs = append(rhs, elem)
	}
	if len(rhs) == 0 {
		raiseSyntaxError(synErrEmptyRHS)
	}

	dirs := p.parseTrailingDirectives()

	return &ProductionNode{
		Name:       name,
		LHS:        lhs,
		RHS:        rhs,
		Directives: dirs,
		Pos:        pos,
	}
}

func (p *parser) parseMRElement() *MRElementNode {
	switch {
	case p.consume(tokenKindID):
		elem := &MRElementNode{
			ID:  p.lastTok.text,
			Pos: p.lastTok.pos,
		}
		if p.consume(tokenKindLBracket) {
			elem.Args = p.parseArgs()
		}
		return elem
	case p.consume(tokenKindVariable):
		return &MRElementNode{
			Variable: p.lastTok.text,
			Pos:      p.lastTok.pos,
		}
	case p.consume(tokenKindWildcard):
		return &MRElementNode{
			Wildcard: p.lastTok.text,
			Pos:      p.lastTok.pos,
		}
	case p.consume(tokenKindQuoted):
		return &MRElementNode{
			Terminal: p.lastTok.text,
			Pos:      p.lastTok.pos,
		}
	case p.consume(tokenKindNumber):
		return &MRElementNode{
			Terminal: p.lastTok.text,
			Pos:      p.lastTok.pos,
		}
	case p.consume(tokenKindLParen):
		return &MRElementNode{
			Terminal: "(",
			Pos:      p.lastTok.pos,
		}
	case p.consume(tokenKindRParen):
		return &MRElementNode{
			Terminal: ")",
			Pos:      p.lastTok.pos,
		}
	case p.consume(tokenKindComma):
		return &MRElementNode{
			Terminal: ",",
			Pos:      p.lastTok.pos,
		}
	}
	return nil
}

// parseArgs parses an argument list following '['.
func (p *parser) parseArgs() []string {
	var args []string
	for {
		if !p.consume(tokenKindVariable) {
			if p.consume(tokenKindSemicolon) || p.consume(tokenKindEOF) {
				raiseSyntaxError(synErrUnclosedArgs)
			}
			p.next()
			raiseSyntaxError(synErrInvalidArg)
		}
		args = append(args, p.lastTok.text)
		if p.consume(tokenKindRBracket) {
			return args
		}
		if !p.consume(tokenKindComma) {
			raiseSyntaxError(synErrUnclosedArgs)
		}
	}
}

func (p *parser) parseRule() *RuleNode {
	pos := p.lastTok.pos
	if !p.consume(tokenKindID) {
		raiseSyntaxError(synErrNoRuleName)
	}
	name := p.lastTok.text
	if !p.consume(tokenKindColon) {
		raiseSyntaxError(synErrNoColon)
	}

	var elems []*NLElementNode
	for {
		elem := p.parseNLElement()
		if elem == nil {
			break
		}
		elems = append(elems, elem)
	}
	if len(elems) == 0 {
		raiseSyntaxError(synErrEmptyNL)
	}

	dirs := p.parseTrailingDirectives()

	return &RuleNode{
		Name:       name,
		Elements:   elems,
		Directives: dirs,
		Pos:        pos,
	}
}

func (p *parser) parseNLElement() *NLElementNode {
	switch {
	case p.consume(tokenKindWord):
		return &NLElementNode{
			Word: p.lastTok.text,
			Pos:  p.lastTok.pos,
		}
	case p.consume(tokenKindWildcard):
		return &NLElementNode{
			Wildcard: p.lastTok.text,
			Pos:      p.lastTok.pos,
		}
	case p.consume(tokenKindGap):
		return &NLElementNode{
			Gap: p.lastTok.num,
			Pos: p.lastTok.pos,
		}
	case p.consume(tokenKindID):
		elem := &NLElementNode{
			NonTerminal: p.lastTok.text,
			Pos:         p.lastTok.pos,
		}
		if !p.consume(tokenKindLink) {
			raiseSyntaxError(synErrNonTerminalNoLink)
		}
		elem.Link = p.lastTok.num
		return elem
	case p.consume(tokenKindLink):
		raiseSyntaxError(synErrLinkWithoutSymbol)
	}
	return nil
}

func (p *parser) parseTrailingDirectives() []*DirectiveNode {
	var dirs []*DirectiveNode
	for p.consume(tokenKindDirective) {
		dirs = append(dirs, p.parseDirectiveBody())
	}
	if !p.consume(tokenKindSemicolon) {
		raiseSyntaxError(synErrNoSemicolon)
	}
	return dirs
}

// next consumes a token regardless of its kind so that an error points at it.
func (p *parser) next() {
	if p.peekedTok != nil {
		p.pos = p.peekedTok.pos
		p.lastTok = p.peekedTok
		p.peekedTok = nil
		return
	}
	tok, err := p.lex.next()
	if err != nil {
		panic(err)
	}
	p.pos = tok.pos
	p.lastTok = tok
}

func (p *parser) consume(expected tokenKind) bool {
	var tok *token
	var err error
	if p.peekedTok != nil {
		tok = p.peekedTok
		p.peekedTok = nil
	} else {
		tok, err = p.lex.next()
		if err != nil {
			panic(err)
		}
	}
	p.pos = tok.pos
	if tok.kind == tokenKindInvalid {
		raiseSyntaxError(synErrInvalidToken)
	}
	if tok.kind == expected {
		p.lastTok = tok
		return true
	}
	p.peekedTok = tok

	return false
}

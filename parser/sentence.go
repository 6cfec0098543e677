package parser

import (
	"strings"
	"sync"

	mlspec "github.com/nihei9/maleeni/spec"
	"github.com/nihei9/synchart/grammar"
	"github.com/nihei9/synchart/grammar/symbol"
	"github.com/nihei9/synchart/spec"
)

var wordLexEntries = []*spec.LexEntry{
	{Kind: "white_space", Pattern: `[\u{0009}\u{000A}\u{000D}\u{0020}]+`},
	{Kind: "number", Pattern: `[0-9]+(\.[0-9]+)?`},
	{Kind: "identifier", Pattern: `[A-Za-z]+[0-9_][0-9A-Za-z_]*`},
	{Kind: "word", Pattern: `[^\u{0009}\u{000A}\u{000D}\u{0020}]+`},
}

var (
	wordLexSpecOnce sync.Once
	wordLexSpec     *mlspec.CompiledLexSpec
	wordLexSpecErr  error
)

func compiledWordLexSpec() (*mlspec.CompiledLexSpec, error) {
	wordLexSpecOnce.Do(func() {
		wordLexSpec, wordLexSpecErr = spec.CompileLexSpec("synchart_sentence", wordLexEntries)
	})
	return wordLexSpec, wordLexSpecErr
}

// Sentence is a tokenized natural-language sentence. Symbols[i] is the
// terminal of Words[i], or symbol.SymbolNil when the grammar doesn't know the
// word.
type Sentence struct {
	Words   []string
	Classes []symbol.WordClass
	Symbols []symbol.Symbol
}

// NewSentence splits a text at white spaces and classifies each word.
func NewSentence(g *grammar.Grammar, text string) (*Sentence, error) {
	s, err := compiledWordLexSpec()
	if err != nil {
		return nil, err
	}
	lex, err := spec.NewLexer(s, strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	sent := &Sentence{}
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			break
		}
		var class symbol.WordClass
		switch tok.Kind {
		case "white_space":
			continue
		case "number":
			class = symbol.WordClassNumber
		case "identifier":
			class = symbol.WordClassIdentifier
		default:
			class = symbol.WordClassOther
		}
		sent.Words = append(sent.Words, tok.Text)
		sent.Classes = append(sent.Classes, class)
		sent.Symbols = append(sent.Symbols, g.Terminal(tok.Text))
	}
	return sent, nil
}

func (s *Sentence) Len() int {
	return len(s.Words)
}

func (s *Sentence) String() string {
	return strings.Join(s.Words, " ")
}

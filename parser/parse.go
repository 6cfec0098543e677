package parser

import (
	"fmt"
	"io"

	"github.com/nihei9/synchart/grammar"
	"github.com/nihei9/synchart/meaning"
)

// Parse is an accepted derivation of a sentence.
type Parse struct {
	g     *grammar.Grammar
	sent  *Sentence
	item  *Item
	rank  int
	score float64
	deriv *Derivation
}

func newParse(p *Parser, it *Item, rank int, score float64) *Parse {
	return &Parse{
		g:     p.g,
		sent:  p.sent,
		item:  it,
		rank:  rank,
		score: score,
	}
}

// Score returns the score of the derivation. Under marginal scoring, it is the
// total score of every derivation of the parse.
func (p *Parse) Score() float64 {
	return p.score
}

func (p *Parse) Item() *Item {
	return p.item
}

// Derivation returns the derivation tree rooted at the rule of the start
// symbol.
func (p *Parse) Derivation() *Derivation {
	if p.deriv == nil {
		axiom := derive(p.sent, p.item, p.rank)
		p.deriv = axiom.Children[0]
	}
	return p.deriv
}

// Term returns the meaning the derivation yields. Variables the derivation
// introduces are numbered in pre-order.
func (p *Parse) Term() *meaning.Term {
	fresh := 0
	var build func(d *Derivation, args []int) *meaning.Term
	build = func(d *Derivation, args []int) *meaning.Term {
		prod := d.Rule.Production
		vars := make([]int, prod.VarCount)
		for s := range vars {
			if s < len(args) {
				vars[s] = args[s]
				continue
			}
			vars[s] = fresh
			fresh++
		}
		t := &meaning.Term{
			Production: prod,
			Vars:       vars,
			Literal:    d.Literal,
		}
		for k, c := range d.Children {
			childArgs := prod.Child(k).Args
			cargs := make([]int, len(childArgs))
			for i, a := range childArgs {
				cargs[i] = vars[a]
			}
			t.Children = append(t.Children, build(c, cargs))
		}
		return t
	}
	return build(p.Derivation(), nil)
}

// MR returns the canonical string of the meaning.
func (p *Parse) MR() string {
	return p.Term().Render(p.g.SymbolTable())
}

// Rules returns the rules of the derivation in pre-order.
func (p *Parse) Rules() []*grammar.Rule {
	var rules []*grammar.Rule
	var walk func(d *Derivation)
	walk = func(d *Derivation) {
		rules = append(rules, d.Rule)
		for _, c := range d.Children {
			walk(c)
		}
	}
	walk(p.Derivation())
	return rules
}

// Derivation is a node of a derivation tree. Children[k] derives the k-th
// child of the production of the rule.
type Derivation struct {
	Rule     *grammar.Rule
	Start    int
	End      int
	Words    []string
	Skipped  []string
	Literal  string
	Children []*Derivation
}

func derive(sent *Sentence, it *Item, rank int) *Derivation {
	d := &Derivation{
		Rule:     it.rule,
		Start:    it.start,
		End:      it.current,
		Children: make([]*Derivation, it.rule.Production.ChildCount()),
	}
	cur, r := it, rank
	for {
		h := cur.hists[r]
		switch h.kind {
		case historyPredict:
			return d
		case historyScan:
			d.Words = append([]string{sent.Words[h.word]}, d.Words...)
			if h.prev.rule.NL[h.prev.dot].Symbol.IsWildcard() {
				d.Literal = sent.Words[h.word]
			}
		case historySkip:
			d.Skipped = append([]string{sent.Words[h.word]}, d.Skipped...)
		case historyComplete:
			link := h.prev.rule.NL[h.prev.dot].Link
			d.Children[link-1] = derive(sent, h.comp, h.compRank)
		}
		cur, r = h.prev, h.prevRank
	}
}

// PrintDerivation writes a derivation tree with ruled lines.
func PrintDerivation(w io.Writer, d *Derivation) {
	printDerivation(w, d, "", "")
}

func printDerivation(w io.Writer, d *Derivation, ruledLine string, childRuledLinePrefix string) {
	if d == nil {
		return
	}

	fmt.Fprintf(w, "%v%v [%v, %v)", ruledLine, d.Rule.Production.Name, d.Start, d.End)
	if len(d.Words) > 0 {
		fmt.Fprintf(w, " %q", d.Words)
	}
	if len(d.Skipped) > 0 {
		fmt.Fprintf(w, " skipped: %q", d.Skipped)
	}
	fmt.Fprintf(w, "\n")

	num := len(d.Children)
	for i, child := range d.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printDerivation(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

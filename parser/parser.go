package parser

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/nihei9/synchart/grammar"
	"github.com/nihei9/synchart/meaning"
	"github.com/pkg/errors"
)

const (
	DefaultGapPenalty = 1.0
	DefaultMaxResults = 10
)

type ParserOption func(p *Parser) error

// KBest keeps the k best derivations of each item. KBest(1) is Viterbi
// scoring, which is the default.
func KBest(k int) ParserOption {
	return func(p *Parser) error {
		if k < 1 {
			return fmt.Errorf("k must be greater than or equal to 1; k: %v", k)
		}
		p.mode = scoringKBest
		p.k = k
		return nil
	}
}

// FullMarginal sums the scores of all derivations of each item. Outside works
// only in this mode.
func FullMarginal() ParserOption {
	return func(p *Parser) error {
		p.mode = scoringMarginal
		return nil
	}
}

// DropEmptyCoverage controls whether the chart discards items that cannot
// cover the target meaning in any way. It is enabled by default.
func DropEmptyCoverage(drop bool) ParserOption {
	return func(p *Parser) error {
		p.dropEmptyCoverage = drop
		return nil
	}
}

// LeftCornerPruning controls whether the parser predicts only the rules that
// can begin with the next word. It is enabled by default.
func LeftCornerPruning(prune bool) ParserOption {
	return func(p *Parser) error {
		p.leftCornerPruning = prune
		return nil
	}
}

// GapPenalty sets the penalty of a skipped word used by the default weights.
func GapPenalty(penalty float64) ParserOption {
	return func(p *Parser) error {
		if penalty < 0 {
			return fmt.Errorf("a gap penalty must be non-negative; penalty: %v", penalty)
		}
		p.gapPenalty = penalty
		return nil
	}
}

// MaxResults limits the number of parses Parse returns. 0 means no limit.
func MaxResults(n int) ParserOption {
	return func(p *Parser) error {
		if n < 0 {
			return fmt.Errorf("the number of results must be non-negative; n: %v", n)
		}
		p.maxResults = n
		return nil
	}
}

func Logger(logger *slog.Logger) ParserOption {
	return func(p *Parser) error {
		p.logger = logger
		return nil
	}
}

func WithWeights(w Weights) ParserOption {
	return func(p *Parser) error {
		p.weights = w
		return nil
	}
}

func WithOuterSink(sink OuterSink) ParserOption {
	return func(p *Parser) error {
		p.sink = sink
		return nil
	}
}

// Parser is a synchronous chart parser. It parses a sentence alone to decode
// its meanings, or together with a target meaning to find the derivations
// yielding exactly that meaning. A Parser keeps the chart of the last parse
// for the outside pass and must not be used concurrently.
type Parser struct {
	g                 *grammar.Grammar
	mode              scoringMode
	k                 int
	dropEmptyCoverage bool
	leftCornerPruning bool
	gapPenalty        float64
	maxResults        int
	logger            *slog.Logger
	weights           Weights
	sink              OuterSink

	sent     *Sentence
	m        *meaning.Meaning
	covs     *coverageTable
	chart    *Chart
	accepted []*Item
}

func NewParser(g *grammar.Grammar, opts ...ParserOption) (*Parser, error) {
	p := &Parser{
		g:                 g,
		mode:              scoringKBest,
		k:                 1,
		dropEmptyCoverage: true,
		leftCornerPruning: true,
		gapPenalty:        DefaultGapPenalty,
		maxResults:        DefaultMaxResults,
	}
	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if p.weights == nil {
		p.weights = &RuleWeights{
			GapPenalty: p.gapPenalty,
		}
	}
	if p.sink == nil {
		p.sink = ruleSink{}
	}
	return p, nil
}

// Chart returns the chart of the last parse.
func (p *Parser) Chart() *Chart {
	return p.chart
}

// Parse parses a sentence. When m is not nil, only the derivations yielding m
// are accepted. An unparseable sentence results in no parse and no error. An
// error means a broken invariant, that is, a grammar and a meaning that don't
// fit together.
func (p *Parser) Parse(sent *Sentence, m *meaning.Meaning) (parses []*Parse, retErr error) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		err, ok := v.(error)
		if !ok {
			panic(v)
		}
		parses = nil
		retErr = err
	}()

	p.sent = sent
	p.m = m
	p.covs = nil
	if m != nil {
		p.covs = newCoverageTable(m)
	}
	p.chart = newChart(p.g, sent.Len(), p.mode, p.k, p.dropEmptyCoverage)
	p.accepted = nil

	p.seed()
	for i := 0; i <= sent.Len(); i++ {
		p.complete(i)
		if i < sent.Len() {
			p.predictAndScan(i)
		}
		p.logger.Debug("chart", "position", i, "items", len(p.chart.Items(i)))
	}

	axiom := p.g.Axiom()
	for _, it := range p.chart.Items(sent.Len()) {
		if it.rule != axiom || it.start != 0 || !it.IsComplete() {
			continue
		}
		if m != nil && !it.cov.Complete(m) {
			continue
		}
		p.accepted = append(p.accepted, it)
	}
	p.logger.Debug("parsed", "sentence", sent.String(), "accepted", len(p.accepted))

	return p.results(), nil
}

func (p *Parser) seed() {
	axiom := p.g.Axiom()
	var cov *Coverage
	if p.covs != nil {
		cov = p.covs.axiom()
	}
	it := newItem(axiom, 0, 0, 0, 0, cov, axiom.Denotation)
	local := p.weights.Predict(p.sent, axiom, 0)
	it.hists = []*history{
		{
			kind:   historyPredict,
			word:   -1,
			local:  local,
			score:  local,
			inside: local,
		},
	}
	p.chart.predict(0, axiom.LHS.Key())
	p.chart.addItem(it)
}

func (p *Parser) complete(pos int) {
	for {
		c := p.chart.popComplete(pos)
		if c == nil {
			return
		}
		for _, w := range p.chart.waitingFor(c.start, c.rule.LHS.Key()) {
			p.completeInto(w, c, pos)
		}
	}
}

func (p *Parser) completeInto(w, c *Item, pos int) {
	link := w.rule.NL[w.dot].Link
	childArgs := w.rule.Production.Child(link - 1).Args
	varTypes := w.varTypes.Restrict(childArgs, c.varTypes.Project(c.rule.Production.LHSSlots()))
	if varTypes.IsEmpty() {
		return
	}

	var cov *Coverage
	if p.covs != nil {
		cov = p.covs.combine(w, c)
	}

	local := p.weights.Complete(p.sent, w, c)
	succ := newItem(w.rule, w.dot+1, 0, w.start, pos, cov, varTypes)
	if p.mode == scoringMarginal {
		succ.hists = []*history{
			{
				kind:   historyComplete,
				prev:   w,
				comp:   c,
				word:   -1,
				local:  local,
				score:  w.hists[0].score + c.hists[0].score + local,
				inside: w.inner + c.inner + local,
			},
		}
	} else {
		for i, wh := range w.hists {
			for j, ch := range c.hists {
				succ.hists = append(succ.hists, &history{
					kind:     historyComplete,
					prev:     w,
					prevRank: i,
					comp:     c,
					compRank: j,
					word:     -1,
					local:    local,
					score:    wh.score + ch.score + local,
					inside:   wh.score + ch.score + local,
				})
			}
		}
	}
	p.chart.addItem(succ)
}

func (p *Parser) predictAndScan(pos int) {
	cl := p.chart.cells[pos]
	for i := 0; i < len(cl.items); i++ {
		it := cl.items[i]
		sym, ok := it.next()
		if !ok {
			continue
		}
		if sym.IsNonTerminal() {
			key, _ := it.waitingKey()
			p.predict(pos, key)
		} else {
			p.scan(it, pos)
		}
		p.skip(it, pos)
	}
}

// predict adds the rules of the non-terminal and of the non-terminals it
// derives through dummy productions.
func (p *Parser) predict(pos int, key grammar.NonterminalKey) {
	keys := append([]grammar.NonterminalKey{key}, p.g.DummyDescendants(key)...)
	for _, k := range keys {
		if p.chart.isPredicted(pos, k) {
			continue
		}
		p.chart.predict(pos, k)
		for _, rule := range p.g.RulesWithLHS(k) {
			if !rule.Active() {
				continue
			}
			if p.leftCornerPruning && !p.g.CanBegin(rule, p.sent.Symbols[pos], p.sent.Classes[pos]) {
				continue
			}
			var cov *Coverage
			if p.covs != nil {
				cov = p.covs.forProduction(rule.Production)
			}
			local := p.weights.Predict(p.sent, rule, pos)
			it := newItem(rule, 0, 0, pos, pos, cov, rule.Denotation)
			it.hists = []*history{
				{
					kind:   historyPredict,
					word:   -1,
					local:  local,
					score:  local,
					inside: local,
				},
			}
			p.chart.addItem(it)
		}
	}
}

func (p *Parser) scan(it *Item, pos int) {
	sym := it.rule.NL[it.dot].Symbol
	cov := it.cov
	if sym.IsWildcard() {
		if !sym.MatchesClass(p.sent.Classes[pos]) {
			return
		}
		if p.covs != nil {
			cov = cov.Intersect(p.covs.forLiteral(it.rule.Production, p.sent.Words[pos]))
		}
	} else if sym != p.sent.Symbols[pos] {
		return
	}

	local := p.weights.Scan(p.sent, it, pos)
	succ := newItem(it.rule, it.dot+1, 0, it.start, pos+1, cov, it.varTypes)
	succ.hists = p.chain(historyScan, it, pos, local)
	p.chart.addItem(succ)
}

// skip skips the word at pos when the gap budget at the dot remains.
func (p *Parser) skip(it *Item, pos int) {
	if it.dot == 0 || it.dot >= len(it.rule.NL) || it.gap >= it.rule.Gaps[it.dot] {
		return
	}
	local := p.weights.Skip(p.sent, it, pos)
	succ := newItem(it.rule, it.dot, it.gap+1, it.start, pos+1, it.cov, it.varTypes)
	succ.hists = p.chain(historySkip, it, pos, local)
	p.chart.addItem(succ)
}

// chain returns the histories of a successor consuming one word.
func (p *Parser) chain(kind historyKind, prev *Item, pos int, local float64) []*history {
	if p.mode == scoringMarginal {
		return []*history{
			{
				kind:   kind,
				prev:   prev,
				word:   pos,
				local:  local,
				score:  prev.hists[0].score + local,
				inside: prev.inner + local,
			},
		}
	}
	hists := make([]*history, 0, len(prev.hists))
	for r, h := range prev.hists {
		hists = append(hists, &history{
			kind:     kind,
			prev:     prev,
			prevRank: r,
			word:     pos,
			local:    local,
			score:    h.score + local,
			inside:   h.score + local,
		})
	}
	return hists
}

func (p *Parser) results() []*Parse {
	var parses []*Parse
	for _, it := range p.accepted {
		if p.mode == scoringMarginal {
			parses = append(parses, newParse(p, it, 0, it.inner))
			continue
		}
		for r, h := range it.hists {
			parses = append(parses, newParse(p, it, r, h.score))
		}
	}
	sort.SliceStable(parses, func(i, j int) bool {
		return parses[i].score > parses[j].score
	})
	limit := p.maxResults
	if p.mode == scoringKBest && (limit == 0 || p.k < limit) {
		limit = p.k
	}
	if limit > 0 && len(parses) > limit {
		parses = parses[:limit]
	}
	return parses
}

func (p *Parser) mustBeParsed() {
	if p.chart == nil {
		panic(errors.New("no sentence has been parsed"))
	}
}

package tester

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/synchart/grammar"
	"github.com/nihei9/synchart/meaning"
	"github.com/nihei9/synchart/parser"
)

type TestResult struct {
	FilePath string
	Row      int
	Sentence string
	Expected string
	Actual   string

	// Reachable reports whether some derivation of the sentence yields the
	// expected meaning.
	Reachable bool
	Error     error
}

func (r *TestResult) String() string {
	if r.Error != nil {
		const indent = "    "

		msgLines := strings.Split(r.Error.Error(), "\n")
		msg := fmt.Sprintf("Failed %v:%v: %v\n%v%v", r.FilePath, r.Row, r.Sentence, indent, strings.Join(msgLines, "\n"+indent))
		if r.Expected == "" {
			return msg
		}
		lines := []string{
			fmt.Sprintf("expected: %v", r.Expected),
			fmt.Sprintf("actual:   %v", r.Actual),
		}
		if !r.Reachable {
			lines = append(lines, "no derivation yields the expected meaning")
		}
		return fmt.Sprintf("%v\n%v%v", msg, indent, strings.Join(lines, "\n"+indent))
	}
	return fmt.Sprintf("Passed %v:%v: %v", r.FilePath, r.Row, r.Sentence)
}

// TestCase is a sentence paired with the meaning notation of its expected
// meaning.
type TestCase struct {
	Sentence string
	Meaning  string
	Row      int
}

type TestFile struct {
	FilePath string
	Cases    []*TestCase
	Error    error
}

// ListTestFiles reads a test file, or every test file under a directory. A
// test file consists of lines of the form "sentence<TAB>meaning". Empty lines
// and lines beginning with '#' are ignored.
func ListTestFiles(testPath string) []*TestFile {
	fi, err := os.Stat(testPath)
	if err != nil {
		return []*TestFile{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	if !fi.IsDir() {
		cs, err := readTestFile(testPath)
		return []*TestFile{
			{
				FilePath: testPath,
				Cases:    cs,
				Error:    err,
			},
		}
	}

	es, err := os.ReadDir(testPath)
	if err != nil {
		return []*TestFile{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	var files []*TestFile
	for _, e := range es {
		fs := ListTestFiles(filepath.Join(testPath, e.Name()))
		files = append(files, fs...)
	}
	return files
}

func readTestFile(path string) ([]*TestCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cs []*TestCase
	s := bufio.NewScanner(f)
	for row := 1; s.Scan(); row++ {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sentence, notation, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("%v: a test case needs a sentence and a meaning separated by a tab", row)
		}
		cs = append(cs, &TestCase{
			Sentence: strings.TrimSpace(sentence),
			Meaning:  strings.TrimSpace(notation),
			Row:      row,
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return cs, nil
}

// Tester checks whether the best parse of each sentence yields its expected
// meaning.
type Tester struct {
	Grammar *grammar.Grammar
	Options []parser.ParserOption
	Files   []*TestFile
}

func (t *Tester) Run() ([]*TestResult, error) {
	p, err := parser.NewParser(t.Grammar, t.Options...)
	if err != nil {
		return nil, err
	}
	var rs []*TestResult
	for _, f := range t.Files {
		for _, c := range f.Cases {
			r := runTest(t.Grammar, p, c)
			r.FilePath = f.FilePath
			rs = append(rs, r)
		}
	}
	return rs, nil
}

func runTest(g *grammar.Grammar, p *parser.Parser, c *TestCase) *TestResult {
	r := &TestResult{
		Row:      c.Row,
		Sentence: c.Sentence,
	}

	n, err := meaning.Parse(strings.NewReader(c.Meaning))
	if err != nil {
		r.Error = err
		return r
	}
	m, err := meaning.Build(g, n)
	if err != nil {
		r.Error = err
		return r
	}
	r.Expected = meaning.FromMeaning(m).Render(g.SymbolTable())

	sent, err := parser.NewSentence(g, c.Sentence)
	if err != nil {
		r.Error = err
		return r
	}
	parses, err := p.Parse(sent, nil)
	if err != nil {
		r.Error = err
		return r
	}
	if len(parses) > 0 {
		r.Actual = parses[0].MR()
	}
	if r.Actual == r.Expected {
		r.Reachable = true
		return r
	}

	gold, err := p.Parse(sent, m)
	if err != nil {
		r.Error = err
		return r
	}
	r.Reachable = len(gold) > 0
	if len(parses) == 0 {
		r.Error = fmt.Errorf("no parse")
	} else {
		r.Error = fmt.Errorf("output mismatch")
	}
	return r
}

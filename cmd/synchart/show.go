package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/nihei9/synchart/grammar"
	"github.com/nihei9/synchart/grammar/symbol"
	"github.com/spf13/cobra"
)

var showFlags = struct {
	leftCorners *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "show <grammar file path>",
		Short:   "Print a grammar in a readable format",
		Example: `  synchart show geo.synchart`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	showFlags.leftCorners = cmd.Flags().Bool("left-corners", false, "print the left corners of each non-terminal")
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) (retErr error) {
	defer recoverPanic(&retErr)

	gram, err := readGrammar(args[0])
	if err != nil {
		return err
	}

	return writeGrammar(os.Stdout, gram, *showFlags.leftCorners)
}

const grammarTemplate = `# Grammar {{ .Grammar.Name }}

start: {{ .Start }}
{{- if .Grammar.Types }}
types: {{ join .Grammar.Types ", " }}
{{- end }}

# Productions

{{ range .Grammar.Productions -}}
{{ printProduction . }}
{{ end }}
# Rules

{{ range .Grammar.Rules -}}
{{ if not .IsAxiom }}{{ printRule . }}
{{ end }}
{{- end }}
{{- if .LeftCorners }}
# Left Corners

{{ range .Grammar.NonterminalKeys -}}
{{ printLeftCorners . }}
{{ end }}
{{- end }}`

func writeGrammar(w io.Writer, gram *grammar.Grammar, leftCorners bool) error {
	symTab := gram.SymbolTable()

	keyText := func(key grammar.NonterminalKey) string {
		text, _ := symTab.ToText(key.Symbol)
		if key.Arity == 0 {
			return text
		}
		return fmt.Sprintf("%v/%v", text, key.Arity)
	}

	nonterminalText := func(n *grammar.Nonterminal) string {
		text, _ := symTab.ToText(n.Symbol)
		if len(n.Args) == 0 {
			return text
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%v[", text)
		for i, a := range n.Args {
			if i > 0 {
				fmt.Fprintf(&b, ", ")
			}
			fmt.Fprintf(&b, "$%v", a)
		}
		fmt.Fprintf(&b, "]")
		return b.String()
	}

	fns := template.FuncMap{
		"join": strings.Join,
		"printProduction": func(prod *grammar.Production) string {
			var b strings.Builder
			fmt.Fprintf(&b, "%4v %v: %v →", prod.Num(), prod.Name, nonterminalText(prod.LHS))
			for _, sym := range prod.RHS {
				switch {
				case sym.IsVariable():
					fmt.Fprintf(&b, " $%v", sym.Var)
				case sym.IsNonTerminal():
					fmt.Fprintf(&b, " %v", nonterminalText(&grammar.Nonterminal{Symbol: sym.Symbol, Args: sym.Args}))
				default:
					text, _ := symTab.ToText(sym.Symbol)
					fmt.Fprintf(&b, " %v", text)
				}
			}
			var attrs []string
			if prod.IsAC {
				attrs = append(attrs, "ac")
			}
			if prod.IsDummy {
				attrs = append(attrs, "dummy")
			}
			if len(attrs) > 0 {
				fmt.Fprintf(&b, " (%v)", strings.Join(attrs, ", "))
			}
			return b.String()
		},
		"printRule": func(rule *grammar.Rule) string {
			return fmt.Sprintf("%4v %v", rule.Num, ruleText(symTab, rule))
		},
		"printLeftCorners": func(key grammar.NonterminalKey) string {
			var corners []string
			for _, k := range gram.NonterminalKeys() {
				if gram.IsLeftCorner(key, k) {
					corners = append(corners, keyText(k))
				}
			}
			return fmt.Sprintf("%v: %v", keyText(key), strings.Join(corners, ", "))
		},
	}

	tmpl, err := template.New("").Funcs(fns).Parse(grammarTemplate)
	if err != nil {
		return err
	}

	start, _ := symTab.ToText(gram.StartSymbol())
	err = tmpl.Execute(w, struct {
		Grammar     *grammar.Grammar
		Start       string
		LeftCorners bool
	}{
		Grammar:     gram,
		Start:       start,
		LeftCorners: leftCorners,
	})
	if err != nil {
		return err
	}

	return nil
}

func ruleText(symTab *symbol.SymbolTableReader, rule *grammar.Rule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v:", rule.Production.Name)
	for i, sym := range rule.NL {
		if rule.Gaps[i] > 0 {
			fmt.Fprintf(&b, " ~%v", rule.Gaps[i])
		}
		text, _ := symTab.ToText(sym.Symbol)
		switch {
		case sym.IsNonTerminal():
			fmt.Fprintf(&b, " %v#%v", text, sym.Link)
		case sym.Symbol.IsWildcard():
			fmt.Fprintf(&b, " %v", text)
		default:
			fmt.Fprintf(&b, " %q", text)
		}
	}
	if rule.Weight != 0 {
		fmt.Fprintf(&b, " (weight: %v)", rule.Weight)
	}
	if !rule.Active() {
		fmt.Fprintf(&b, " (inactive)")
	}
	return b.String()
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oxhq/stottr/internal/rdf"
	"github.com/oxhq/stottr/internal/sparql"
	"github.com/oxhq/stottr/internal/template"
)

// newQueryCmd runs a basic-graph-pattern SELECT against the store built from
// the expanded input. Full SPARQL text parsing is an external collaborator
// per this module's scope, so patterns are given directly as flags (one
// `--pattern "?s ex:name ?o"` per triple pattern) rather than parsed from a
// query string.
func newQueryCmd() *cobra.Command {
	f := &inputFlags{}
	var patterns []string
	var selectVars []string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a basic graph pattern SELECT against the expanded store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(patterns) == 0 {
				return fmt.Errorf("at least one --pattern is required")
			}
			b, err := expandInput(f)
			if err != nil {
				return err
			}

			tps := make([]sparql.TriplePattern, len(patterns))
			for i, p := range patterns {
				tp, err := parsePattern(p, b.dataset)
				if err != nil {
					return fmt.Errorf("--pattern %q: %w", p, err)
				}
				tps[i] = tp
			}

			var algebra sparql.Algebra = sparql.BGPNode{Patterns: tps}
			if len(selectVars) > 0 {
				algebra = sparql.ProjectNode{Child: algebra, Vars: selectVars}
			}

			q := sparql.Query{Kind: sparql.QuerySelect, Select: algebra}
			sm, err := q.RunSelect(sparql.RootContext(), b.store)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			printSolutions(sm)
			return nil
		},
	}
	addInputFlags(cmd, f)
	cmd.Flags().StringArrayVar(&patterns, "pattern", nil, `Triple pattern "subject predicate object", e.g. "?s ex:name ?o" (repeatable)`)
	cmd.Flags().StringSliceVar(&selectVars, "select", nil, "Variables to project (default: all bound variables)")
	return cmd
}

// parsePattern splits "subject predicate object" into a TriplePattern. A
// token starting with '?' is a variable; a `prefix:local` token whose prefix
// is in the dataset's prefix map is resolved to that IRI; a token wrapped in
// <...> or containing "://" is taken as an IRI; anything else is treated as
// a plain xsd:string literal.
func parsePattern(s string, dataset template.Dataset) (sparql.TriplePattern, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return sparql.TriplePattern{}, fmt.Errorf("expected 3 whitespace-separated terms, got %d", len(fields))
	}
	subj, err := parseTerm(fields[0], dataset)
	if err != nil {
		return sparql.TriplePattern{}, err
	}
	pred, err := parseTerm(fields[1], dataset)
	if err != nil {
		return sparql.TriplePattern{}, err
	}
	obj, err := parseTerm(fields[2], dataset)
	if err != nil {
		return sparql.TriplePattern{}, err
	}
	return sparql.TriplePattern{Subject: subj, Predicate: pred, Object: obj}, nil
}

func parseTerm(tok string, dataset template.Dataset) (sparql.Term, error) {
	if strings.HasPrefix(tok, "?") {
		return sparql.Var(tok[1:]), nil
	}
	if iri, _, ok := dataset.ResolvePrefixed(tok); ok {
		return sparql.Const(rdf.IRITerm{IRI: iri}), nil
	}
	if strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">") {
		return sparql.Const(rdf.IRITerm{IRI: strings.TrimSuffix(strings.TrimPrefix(tok, "<"), ">")}), nil
	}
	if strings.Contains(tok, "://") {
		return sparql.Const(rdf.IRITerm{IRI: tok}), nil
	}
	return sparql.Const(rdf.LiteralTerm{Lexical: tok, Datatype: rdf.XSDString}), nil
}

func printSolutions(sm sparql.SolutionMappings) {
	names := sm.Batch.Names()
	fmt.Println(strings.Join(names, "\t"))
	for i := 0; i < sm.Batch.Height(); i++ {
		row := sm.Batch.Row(i, names)
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
}

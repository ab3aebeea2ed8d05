package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/stottr/internal/rdf"
	"github.com/oxhq/stottr/internal/sparql"
	"github.com/oxhq/stottr/internal/template"
)

func TestParseTermVariable(t *testing.T) {
	term, err := parseTerm("?s", template.Dataset{})
	require.NoError(t, err)
	require.Equal(t, sparql.TermVariable, term.Kind)
	require.Equal(t, "s", term.Variable)
}

func TestParseTermPrefixedIRI(t *testing.T) {
	dataset := template.Dataset{PrefixMap: map[string]string{"ex": "http://example.net/ns#"}}
	term, err := parseTerm("ex:name", dataset)
	require.NoError(t, err)
	require.Equal(t, sparql.TermConstant, term.Kind)
	require.Equal(t, rdf.IRITerm{IRI: "http://example.net/ns#name"}, term.Constant)
}

func TestParseTermPlainLiteral(t *testing.T) {
	term, err := parseTerm("Alice", template.Dataset{})
	require.NoError(t, err)
	require.Equal(t, sparql.TermConstant, term.Kind)
	require.Equal(t, rdf.LiteralTerm{Lexical: "Alice", Datatype: rdf.XSDString}, term.Constant)
}

func TestParsePatternRejectsWrongArity(t *testing.T) {
	_, err := parsePattern("?s ex:name", template.Dataset{})
	require.Error(t, err)
}

func TestParsePatternBuildsTriplePattern(t *testing.T) {
	dataset := template.Dataset{PrefixMap: map[string]string{"ex": "http://example.net/ns#"}}
	tp, err := parsePattern("?s ex:name ?o", dataset)
	require.NoError(t, err)
	require.Equal(t, sparql.TermVariable, tp.Subject.Kind)
	require.Equal(t, sparql.TermConstant, tp.Predicate.Kind)
	require.Equal(t, sparql.TermVariable, tp.Object.Kind)
}

package sparql

import (
	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/rdf"
)

// SolutionMappings is the unit flowing through the evaluator: a column
// batch of bindings, the set of variables it binds, and each variable's RDF
// node type.
type SolutionMappings struct {
	Batch   *column.Batch
	Columns map[string]bool
	Types   map[string]rdf.NodeType
	// LangTags maps a bound variable name to its language-tag column, for
	// variables bound from a Literal(xsd:string) object slot that carried
	// one. Absent entries mean "no language tag bound for this variable".
	LangTags map[string]*column.Column
}

// NewSolutionMappings wraps a batch, deriving Columns from its column
// names.
func NewSolutionMappings(batch *column.Batch, types map[string]rdf.NodeType) SolutionMappings {
	cols := map[string]bool{}
	for _, n := range batch.Names() {
		cols[n] = true
	}
	if types == nil {
		types = map[string]rdf.NodeType{}
	}
	return SolutionMappings{Batch: batch, Columns: cols, Types: types, LangTags: map[string]*column.Column{}}
}

func mergeTypesLeftWins(left, right map[string]rdf.NodeType) map[string]rdf.NodeType {
	out := make(map[string]rdf.NodeType, len(left)+len(right))
	for k, v := range right {
		out[k] = v
	}
	for k, v := range left {
		out[k] = v
	}
	return out
}

// TermKind tags a triple-pattern slot: either a bound variable or a
// concrete constant.
type TermKind int

const (
	TermVariable TermKind = iota
	TermConstant
)

// Term is one slot (subject, predicate, or object) of a triple pattern or a
// CONSTRUCT template triple.
type Term struct {
	Kind     TermKind
	Variable string
	Constant rdf.ConstantTerm
}

// Var builds a variable term.
func Var(name string) Term { return Term{Kind: TermVariable, Variable: name} }

// Const builds a constant term.
func Const(ct rdf.ConstantTerm) Term { return Term{Kind: TermConstant, Constant: ct} }

// TriplePattern is one BGP triple pattern.
type TriplePattern struct {
	Subject   Term
	Predicate Term
	Object    Term
}

package sparql

import (
	"fmt"

	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/rdf"
	"github.com/oxhq/stottr/internal/store"
)

// EvalBGP evaluates a basic graph pattern: each triple pattern is matched
// against the store's buckets independently, then the per-pattern solutions
// are joined left to right on their shared variables. An empty pattern list
// matches the single empty solution, per SPARQL's algebra.
func EvalBGP(ctx Context, st *store.Store, patterns []TriplePattern) (SolutionMappings, error) {
	if len(patterns) == 0 {
		return NewSolutionMappings(column.New(1), nil), nil
	}

	acc, err := evalPattern(ctx.PushIndexed("bgp", 0), st, patterns[0])
	if err != nil {
		return SolutionMappings{}, err
	}
	for i := 1; i < len(patterns); i++ {
		next, err := evalPattern(ctx.PushIndexed("bgp", i), st, patterns[i])
		if err != nil {
			return SolutionMappings{}, err
		}
		acc, err = JoinSolutions(acc, next, column.JoinInner)
		if err != nil {
			return SolutionMappings{}, err
		}
	}
	return acc, nil
}

// constantSlot reports a triple-pattern constant's RDF node type and its
// lexical/IRI/blank-id comparison value.
func constantSlot(ct rdf.ConstantTerm) (rdf.NodeType, string, error) {
	switch t := ct.(type) {
	case rdf.IRITerm:
		return rdf.TypeIRI, t.IRI, nil
	case rdf.BlankTerm:
		return rdf.TypeBlankNode, t.ID, nil
	case rdf.LiteralTerm:
		return rdf.Literal(t.Datatype), t.Lexical, nil
	default:
		return rdf.TypeUnknown, "", fmt.Errorf("sparql: %T cannot appear as a triple pattern term", ct)
	}
}

// evalPattern matches one triple pattern against every candidate bucket
// (filtered by predicate when it's a constant, and by object type when the
// object is a constant) and concatenates the per-bucket contributions.
func evalPattern(ctx Context, st *store.Store, p TriplePattern) (SolutionMappings, error) {
	var contributions []*column.Batch
	types := map[string]rdf.NodeType{}
	var langSource string // variable name bound to a string-literal object, if any

	for key, bucket := range st.Buckets() {
		if p.Predicate.Kind == TermConstant {
			predNT, predVal, err := constantSlot(p.Predicate.Constant)
			if err != nil {
				return SolutionMappings{}, err
			}
			if predNT.Kind != rdf.KindIRI || key.Predicate != predVal {
				continue
			}
		}
		if p.Object.Kind == TermConstant {
			objNT, _, err := constantSlot(p.Object.Constant)
			if err != nil {
				return SolutionMappings{}, err
			}
			if !objNT.Equal(key.ObjectType) {
				continue
			}
		}

		batch, err := st.BucketBatch(bucket)
		if err != nil {
			return SolutionMappings{}, err
		}
		contrib, err := bucketContribution(p, key, batch)
		if err != nil {
			return SolutionMappings{}, err
		}
		if contrib == nil {
			continue
		}
		contributions = append(contributions, contrib)

		if p.Object.Kind == TermVariable && key.ObjectType.IsStringLiteral() {
			langSource = p.Object.Variable
		}
		if p.Subject.Kind == TermVariable {
			types[p.Subject.Variable] = rdf.TypeIRI
		}
		if p.Predicate.Kind == TermVariable {
			types[p.Predicate.Variable] = rdf.TypeIRI
		}
		if p.Object.Kind == TermVariable {
			types[p.Object.Variable] = key.ObjectType
		}
	}

	merged := column.Concat(contributions...)
	sm := NewSolutionMappings(merged, types)
	if langSource != "" {
		if lc := merged.Column(langColumnName(langSource)); lc != nil {
			sm.LangTags[langSource] = lc
			sm.Batch = merged.Drop(langColumnName(langSource))
			sm.Columns = map[string]bool{}
			for _, n := range sm.Batch.Names() {
				sm.Columns[n] = true
			}
		}
	}
	return sm, nil
}

func langColumnName(variable string) string { return "__lang#" + variable }

// bucketContribution filters and projects one bucket's batch to the
// variables a triple pattern binds, applying every constant-slot filter and
// any same-variable-twice equality filter within the pattern. It returns nil
// when the pattern's constants rule out every row in this bucket.
func bucketContribution(p TriplePattern, key rdf.BucketKey, batch *column.Batch) (*column.Batch, error) {
	height := batch.Height()
	mask := make([]bool, height)
	for i := range mask {
		mask[i] = true
	}

	subject := batch.Column("subject")
	object := batch.Column("object")

	applyConstant := func(term Term, col *column.Column) error {
		if term.Kind != TermConstant || col == nil {
			return nil
		}
		_, val, err := constantSlot(term.Constant)
		if err != nil {
			return err
		}
		for i := range mask {
			if mask[i] && fmt.Sprint(col.Values[i]) != val {
				mask[i] = false
			}
		}
		return nil
	}
	if err := applyConstant(p.Subject, subject); err != nil {
		return nil, err
	}
	if err := applyConstant(p.Object, object); err != nil {
		return nil, err
	}

	// A variable repeated across slots within one pattern (e.g. ?x p ?x)
	// requires the two slots to agree.
	slotValue := func(term Term, col *column.Column, row int) (string, bool) {
		if term.Kind != TermVariable {
			return "", false
		}
		if col == nil {
			return "", false
		}
		return fmt.Sprint(col.Values[row]), true
	}
	if p.Subject.Kind == TermVariable && p.Object.Kind == TermVariable && p.Subject.Variable == p.Object.Variable {
		for i := range mask {
			if !mask[i] {
				continue
			}
			sv, sok := slotValue(p.Subject, subject, i)
			ov, ook := slotValue(p.Object, object, i)
			if sok && ook && sv != ov {
				mask[i] = false
			}
		}
	}

	filtered, err := batch.Filter(mask)
	if err != nil {
		return nil, err
	}
	if filtered.Height() == 0 {
		return nil, nil
	}

	var cols []*column.Column
	if p.Subject.Kind == TermVariable {
		c := filtered.Column("subject")
		cols = append(cols, &column.Column{Name: p.Subject.Variable, Type: c.Type, Values: c.Values})
	}
	if p.Predicate.Kind == TermVariable {
		vals := make([]any, filtered.Height())
		for i := range vals {
			vals[i] = key.Predicate
		}
		cols = append(cols, &column.Column{Name: p.Predicate.Variable, Type: rdf.TypeIRI, Values: vals})
	}
	if p.Object.Kind == TermVariable {
		c := filtered.Column("object")
		cols = append(cols, &column.Column{Name: p.Object.Variable, Type: c.Type, Values: c.Values})
		if key.ObjectType.IsStringLiteral() {
			lvals := make([]any, filtered.Height())
			if fl := filtered.Column("language_tag"); fl != nil {
				lvals = fl.Values
			}
			cols = append(cols, &column.Column{Name: langColumnName(p.Object.Variable), Type: rdf.Literal(rdf.XSDString), Values: lvals})
		}
	}
	return column.FromColumns(cols...)
}

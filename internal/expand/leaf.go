package expand

import (
	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/errs"
	"github.com/oxhq/stottr/internal/lower"
	"github.com/oxhq/stottr/internal/rdf"
)

// LeafEmission is a leaf's output: a triple-shaped batch plus the metadata
// the store needs to route and absorb it.
type LeafEmission struct {
	Batch           *column.Batch
	ObjectType      rdf.NodeType
	LanguageTag     *string
	StaticPredicate *string
	HasUniqueSubset bool
	// NonBlankViolationMask marks rows whose subject or object is a blank
	// node landing in a non_blank=true column; the store drops them at
	// absorption.
	NonBlankViolationMask []bool
}

// createTriples builds the final triple batch over a scope already remapped
// into the ottr:Triple parameter scope (subject, verb, object).
func createTriples(s scope) (LeafEmission, error) {
	height := s.batch.Height()

	var staticPredicate *string
	if lw, ok := s.static["verb"]; ok {
		iri, ok := lw.Term.(rdf.IRITerm)
		if !ok {
			return LeafEmission{}, &errs.InvalidPredicateConstantError{Constant: lw.Term.String()}
		}
		p := iri.IRI
		staticPredicate = &p
	}

	batch := s.batch
	for name, lw := range s.static {
		if name == "verb" {
			continue // predicate handled separately; never a physical column
		}
		col := lw.Broadcast(name, height)
		var err error
		batch, err = batch.WithColumn(col)
		if err != nil {
			return LeafEmission{}, err
		}
	}

	projectCols := []string{"subject", "object"}
	if staticPredicate == nil {
		projectCols = append(projectCols, "verb")
	}
	projected, err := batch.Project(projectCols)
	if err != nil {
		return LeafEmission{}, err
	}

	objType, lang := resolveType(s, "object")
	mask := nonBlankMask(s, projected)

	return LeafEmission{
		Batch:                 projected,
		ObjectType:            objType,
		LanguageTag:           lang,
		StaticPredicate:       staticPredicate,
		HasUniqueSubset:       len(s.uniqueSubsets) > 0,
		NonBlankViolationMask: mask,
	}, nil
}

func resolveType(s scope, name string) (rdf.NodeType, *string) {
	if info, ok := s.dynamic[name]; ok {
		return info.Type, info.LanguageTag
	}
	if lw, ok := s.static[name]; ok {
		return lw.Type, lw.LanguageTag
	}
	return rdf.TypeUnknown, nil
}

// nonBlankMask marks rows (true = violates) where a non_blank=true column
// holds a blank-node value, for subject and object.
func nonBlankMask(s scope, batch *column.Batch) []bool {
	height := batch.Height()
	mask := make([]bool, height)
	for _, name := range []string{"subject", "object"} {
		info, ok := s.dynamic[name]
		if !ok || !info.NonBlank || info.Type.Kind != rdf.KindBlankNode {
			continue
		}
		col := batch.Column(name)
		if col == nil {
			continue
		}
		for i, v := range col.Values {
			if v != nil {
				mask[i] = true
			}
		}
	}
	return mask
}

// Package validate implements the signature validator and column type
// inference: given a signature and an input batch, infer per-column RDF
// node types and language tags, and reject mismatches.
package validate

import (
	"time"

	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/errs"
	"github.com/oxhq/stottr/internal/lower"
	"github.com/oxhq/stottr/internal/rdf"
	"github.com/oxhq/stottr/internal/template"
)

// Options is the caller-supplied expansion configuration: language tag
// overrides, declared unique subsets, and columns explicitly tagged as IRI.
type Options struct {
	LanguageTags  map[string]string
	UniqueSubsets [][]string
	IRIColumns    map[string]bool
}

// ColumnInfo is the per-dynamic-column inference result.
type ColumnInfo struct {
	Type        rdf.NodeType
	LanguageTag *string
	// NonBlank records a non_blank=true parameter constraint; enforcement
	// happens at leaf emission, not here.
	NonBlank bool
}

// Result is the validator's output: per-column inference for dynamic
// (input-backed) and static (default-backed) parameters, plus the
// unique-subsets that survived (every member column present and bound).
type Result struct {
	Dynamic       map[string]ColumnInfo
	Static        map[string]lower.Lowered
	UniqueSubsets [][]string
}

// ValidateSignature checks `batch` against `sig`'s parameter list, inferring
// a type for every dynamic column and lowering every defaulted parameter.
func ValidateSignature(sig template.Signature, batch *column.Batch, opts Options) (Result, error) {
	res := Result{Dynamic: map[string]ColumnInfo{}, Static: map[string]lower.Lowered{}}

	for _, p := range sig.ParameterList {
		col := batch.Column(p.VariableName)
		if col == nil {
			if p.DefaultValue != nil {
				lw, err := lower.ConstantToExpr(p.DefaultValue, p.PType)
				if err != nil {
					return Result{}, err
				}
				res.Static[p.VariableName] = lw
				continue
			}
			return Result{}, &errs.MissingParameterColumnError{Param: p.VariableName}
		}

		inferred, lang := inferColumnType(p.VariableName, col, opts)

		if p.PType != nil {
			if err := checkPType(p.VariableName, inferred, p.PType); err != nil {
				return Result{}, err
			}
		}
		// p.NonBlank enforcement is deferred to leaf emission; nothing to do
		// here beyond having surfaced the inferred type.
		res.Dynamic[p.VariableName] = ColumnInfo{Type: inferred, LanguageTag: lang, NonBlank: p.NonBlank}
	}

	for _, subset := range opts.UniqueSubsets {
		allBound := true
		for _, c := range subset {
			if !batch.Has(c) {
				allBound = false
				break
			}
		}
		if allBound {
			res.UniqueSubsets = append(res.UniqueSubsets, subset)
		}
	}

	return res, nil
}

// inferColumnType derives an RDFNodeType from a column's physical type and
// per-call hints (IRI tagging, language-tag overrides).
func inferColumnType(name string, col *column.Column, opts Options) (rdf.NodeType, *string) {
	if opts.IRIColumns != nil && opts.IRIColumns[name] {
		return rdf.TypeIRI, nil
	}
	if col.Type.Kind == rdf.KindIRI || col.Type.Kind == rdf.KindBlankNode {
		return col.Type, nil
	}

	if tag, ok := opts.LanguageTags[name]; ok {
		t := tag
		return rdf.Literal(rdf.XSDString), &t
	}

	// Inspect the physical value of the first non-nil row.
	for _, v := range col.Values {
		if v == nil {
			continue
		}
		switch v.(type) {
		case int, int32, int64:
			return rdf.Literal(rdf.XSDInteger), nil
		case float32, float64:
			return rdf.Literal(rdf.XSDDouble), nil
		case bool:
			return rdf.Literal(rdf.XSDBoolean), nil
		case time.Time:
			return rdf.Literal(rdf.XSDDateTime), nil
		default:
			return rdf.Literal(rdf.XSDString), nil
		}
	}
	// All-null column: fall back to the column's declared type, else string.
	if col.Type.Kind != rdf.KindUnknown {
		return col.Type, nil
	}
	return rdf.Literal(rdf.XSDString), nil
}

// checkPType verifies the inferred type is compatible with a declared
// ptype: equal, or an allowed widening under Lub.
func checkPType(colName string, inferred rdf.NodeType, p *template.PType) error {
	switch p.Kind {
	case template.PTypeBasic:
		want := basicToNodeType(p)
		if !want.Equal(inferred) {
			return &errs.ColumnTypeMismatchError{Column: colName, Inferred: inferred.String(), Declared: want.String()}
		}
	case template.PTypeLub:
		if p.Inner != nil && p.Inner.Kind == template.PTypeBasic {
			want := basicToNodeType(p.Inner)
			if want.Kind != inferred.Kind {
				return &errs.ColumnTypeMismatchError{Column: colName, Inferred: inferred.String(), Declared: "Lub(" + want.String() + ")"}
			}
		}
	case template.PTypeList, template.PTypeNonEmptyList:
		// A list-typed parameter is only meaningful for a list-expanded
		// argument; the per-row column itself carries the element type,
		// which list expansion validates downstream.
	}
	return nil
}

func basicToNodeType(p *template.PType) rdf.NodeType {
	if p.IRI == "" || p.IRI == rdf.XSDAnyURI {
		return rdf.TypeIRI
	}
	return rdf.Literal(p.IRI)
}

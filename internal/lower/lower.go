// Package lower implements constant-term lowering: converting a template
// constant (IRI, literal, list, none) into a column expression carrying an
// RDF node type, honouring a parameter's declared PType when given.
package lower

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/errs"
	"github.com/oxhq/stottr/internal/rdf"
	"github.com/oxhq/stottr/internal/template"
)

// Lowered is the result of lowering a constant term: a scalar value plus its
// RDF type, ready to be broadcast into a column of any height.
type Lowered struct {
	Term        rdf.ConstantTerm
	Type        rdf.NodeType
	LanguageTag *string
	PTypeUsed   *template.PType
	// Value is the scalar physical value for a non-list, non-none term
	// (string for IRI/blank/literal lexical). For List it is nil; use Items.
	Value any
	Items []Lowered // populated for ListTerm
}

// ConstantToExpr lowers ct against an optional declared ptype, dispatching
// over the Iri/Literal/List/None constant kinds.
func ConstantToExpr(ct rdf.ConstantTerm, ptype *template.PType) (Lowered, error) {
	switch t := ct.(type) {
	case rdf.IRITerm:
		if err := checkBasicPType(ptype, rdf.TypeIRI); err != nil {
			return Lowered{}, err
		}
		return Lowered{Term: t, Type: rdf.TypeIRI, Value: t.IRI, PTypeUsed: ptype}, nil

	case rdf.BlankTerm:
		id := t.ID
		if id == "" {
			id = uuid.NewString()
		}
		if err := checkBasicPType(ptype, rdf.TypeBlankNode); err != nil {
			return Lowered{}, err
		}
		return Lowered{Term: rdf.BlankTerm{ID: id}, Type: rdf.TypeBlankNode, Value: id, PTypeUsed: ptype}, nil

	case rdf.LiteralTerm:
		nt := rdf.Literal(t.Datatype)
		if err := checkBasicPType(ptype, nt); err != nil {
			return Lowered{}, err
		}
		var lang *string
		if nt.IsStringLiteral() {
			lang = t.LanguageTag
		}
		return Lowered{Term: t, Type: nt, LanguageTag: lang, Value: t.Lexical, PTypeUsed: ptype}, nil

	case rdf.ListTerm:
		items := make([]Lowered, len(t.Items))
		var innerPType *template.PType
		if ptype != nil && (ptype.Kind == template.PTypeList || ptype.Kind == template.PTypeNonEmptyList) {
			innerPType = ptype.Inner
		}
		for i, it := range t.Items {
			lw, err := ConstantToExpr(it, innerPType)
			if err != nil {
				return Lowered{}, err
			}
			items[i] = lw
		}
		return Lowered{Term: t, Type: rdf.TypeUnknown, Items: items, PTypeUsed: ptype}, nil

	case rdf.NoneTerm:
		return Lowered{Term: t, Type: rdf.TypeUnknown, Value: nil, PTypeUsed: ptype}, nil

	default:
		return Lowered{}, fmt.Errorf("lower: unknown constant term %T", ct)
	}
}

// checkBasicPType verifies a basic (non-nested) ptype is compatible with the
// lowered node type; a Lub wrapper widens acceptance to any node type that
// shares the Lub's inner basic kind's literal-vs-IRI family.
func checkBasicPType(ptype *template.PType, got rdf.NodeType) error {
	if ptype == nil {
		return nil
	}
	switch ptype.Kind {
	case template.PTypeBasic:
		want := ptypeToNodeType(ptype)
		if !want.Equal(got) {
			return &errs.ConstantWrongTypeError{Constant: got.String(), Declared: want.String()}
		}
	case template.PTypeLub:
		// Lub widens: any literal/IRI is accepted as long as the coarse
		// kind (IRI vs Literal vs BlankNode) matches the inner basic type.
		if ptype.Inner != nil && ptype.Inner.Kind == template.PTypeBasic {
			want := ptypeToNodeType(ptype.Inner)
			if want.Kind != got.Kind {
				return &errs.ConstantWrongTypeError{Constant: got.String(), Declared: "Lub(" + want.String() + ")"}
			}
		}
	case template.PTypeList, template.PTypeNonEmptyList:
		// ct is a basic (non-list) constant but the parameter declares a
		// List/NonEmptyList ptype: a type mismatch, not a list constant
		// seen where list_expand isn't set (that's ListOutsideExpanderError,
		// raised elsewhere for the opposite situation).
		declared := "List"
		if ptype.Kind == template.PTypeNonEmptyList {
			declared = "NonEmptyList"
		}
		return &errs.ConstantWrongTypeError{Constant: got.String(), Declared: declared}
	}
	return nil
}

func ptypeToNodeType(p *template.PType) rdf.NodeType {
	if p == nil || p.Kind != template.PTypeBasic {
		return rdf.TypeUnknown
	}
	switch p.IRI {
	case "", rdf.XSDAnyURI:
		return rdf.TypeIRI
	default:
		return rdf.Literal(p.IRI)
	}
}

// Broadcast materializes a column of the given height where every row holds
// the same lowered scalar value (or, for a list term, the same list cell).
func (l Lowered) Broadcast(name string, height int) *column.Column {
	if len(l.Items) > 0 || (l.Term != nil && isListTerm(l.Term)) {
		cell := make([]any, len(l.Items))
		for i, it := range l.Items {
			cell[i] = it.Value
		}
		vals := make([]any, height)
		for i := range vals {
			vals[i] = cell
		}
		return &column.Column{Name: name, Type: rdf.TypeUnknown, Values: vals}
	}
	vals := make([]any, height)
	for i := range vals {
		vals[i] = l.Value
	}
	return &column.Column{Name: name, Type: l.Type, Values: vals}
}

func isListTerm(ct rdf.ConstantTerm) bool {
	_, ok := ct.(rdf.ListTerm)
	return ok
}

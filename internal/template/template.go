// Package template holds the pure data structures describing OTTR
// templates, signatures, parameters, and instances. This file contains only
// data types — no expansion logic lives here.
package template

import "github.com/oxhq/stottr/internal/rdf"

// PTypeKind tags a (possibly nested) parameter type expression.
type PTypeKind int

const (
	PTypeBasic PTypeKind = iota
	PTypeLub
	PTypeList
	PTypeNonEmptyList
)

// PType is a nested type expression:
// `Basic(iri, prefixed) | Lub(ptype) | List(ptype) | NonEmptyList(ptype)`.
type PType struct {
	Kind     PTypeKind
	IRI      string // meaningful for PTypeBasic
	Prefixed string // meaningful for PTypeBasic
	Inner    *PType // meaningful for Lub/List/NonEmptyList
}

// Basic builds a Basic(iri, prefixed) PType.
func Basic(iri, prefixed string) *PType {
	return &PType{Kind: PTypeBasic, IRI: iri, Prefixed: prefixed}
}

// Lub builds a Lub(ptype) PType.
func Lub(inner *PType) *PType { return &PType{Kind: PTypeLub, Inner: inner} }

// ListOf builds a List(ptype) PType.
func ListOf(inner *PType) *PType { return &PType{Kind: PTypeList, Inner: inner} }

// NonEmptyListOf builds a NonEmptyList(ptype) PType.
func NonEmptyListOf(inner *PType) *PType { return &PType{Kind: PTypeNonEmptyList, Inner: inner} }

// Parameter is a single formal parameter of a template signature.
type Parameter struct {
	VariableName string
	PType        *PType
	Optional     bool
	NonBlank     bool
	DefaultValue rdf.ConstantTerm
}

// Signature is a template's name, ordered parameter list, and optional
// annotations. Parameter order is load-bearing: arguments at a call site are
// matched positionally.
type Signature struct {
	TemplateName   string
	ParameterList  []Parameter
	AnnotationList []string
}

// ArgumentKind tags an Argument's term.
type ArgumentKind int

const (
	ArgVariable ArgumentKind = iota
	ArgConstant
	ArgList
)

// Argument is `{ term: Variable(name) | ConstantTerm(ct) | List(seq), list_expand }`.
type Argument struct {
	Kind       ArgumentKind
	Variable   string           // meaningful for ArgVariable
	Constant   rdf.ConstantTerm // meaningful for ArgConstant
	List       []Argument       // meaningful for ArgList
	ListExpand bool
}

// ListExpander selects the Cartesian/zip semantics across list-valued
// arguments of an instance.
type ListExpander int

const (
	ExpanderNone ListExpander = iota
	ExpanderCross
	ExpanderZipMin
	ExpanderZipMax
)

func (e ListExpander) String() string {
	switch e {
	case ExpanderCross:
		return "Cross"
	case ExpanderZipMin:
		return "ZipMin"
	case ExpanderZipMax:
		return "ZipMax"
	default:
		return "None"
	}
}

// Instance is a call to a template from within another template's body.
type Instance struct {
	TemplateName string
	ArgumentList []Argument
	ListExpander ListExpander
}

// Template is `{ signature, pattern_list }`. The built-in OTTRTriple template
// has three parameters (subject, verb, object) and an empty pattern list; it
// is the only terminal.
type Template struct {
	Signature   Signature
	PatternList []Instance
}

// IsLeaf reports whether this template is the ottr:Triple terminal.
func (t Template) IsLeaf() bool { return t.Signature.TemplateName == rdf.OTTRTriple }

// TripleTemplate is the distinguished terminal template.
var TripleTemplate = Template{
	Signature: Signature{
		TemplateName: rdf.OTTRTriple,
		ParameterList: []Parameter{
			{VariableName: "subject"},
			{VariableName: "verb"},
			{VariableName: "object"},
		},
	},
}

// Dataset is `{ templates, prefix_map }`, delivered by the external parser
// collaborator (stOTTR textual syntax, out of scope for this module).
type Dataset struct {
	Templates []Template
	PrefixMap map[string]string
}

// ResolvePrefixed splits `prefix:local` using the dataset's prefix map and
// returns the resolved IRI. ok is false when name has no ':' separator or
// its prefix is not in the prefix map.
func (d Dataset) ResolvePrefixed(name string) (resolved string, prefix string, ok bool) {
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			prefix = name[:i]
			local := name[i+1:]
			if base, found := d.PrefixMap[prefix]; found {
				return base + local, prefix, true
			}
			return "", prefix, false
		}
	}
	return "", "", false
}

// FindByIRI looks a template up by its fully-qualified IRI only.
func (d Dataset) FindByIRI(iri string) (Template, bool) {
	if iri == rdf.OTTRTriple {
		return TripleTemplate, true
	}
	for _, t := range d.Templates {
		if t.Signature.TemplateName == iri {
			return t, true
		}
	}
	return Template{}, false
}

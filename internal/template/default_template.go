package template

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/oxhq/stottr/internal/rdf"
)

// Default IRI prefixes for a synthesized default template, matching the
// reference stOTTR mapper's constants.
const (
	DefaultTemplatePrefix     = "http://example.net/ns#"
	DefaultPredicatePrefixIRI = "http://example.net/ns/predicate#"
)

// DefaultTemplateOptions configures NewDefaultTemplate.
type DefaultTemplateOptions struct {
	TemplatePrefix     string // defaults to DefaultTemplatePrefix
	PredicatePrefixIRI string // defaults to DefaultPredicatePrefixIRI
}

// NewDefaultTemplate synthesizes a minimal template for a table that has no
// hand-authored OTTR template: one ottr:Triple instance per column that is
// neither the primary key nor a foreign key, with the predicate minted as
// `predicate_prefix_iri + column_name`; primary and foreign key columns get
// an xsd:anyURI parameter instead of a plain untyped one, since they carry
// row identity rather than literal data.
//
// columns must list every input column name, in order; pkCol must be one of
// them. The synthesized template's name is minted fresh (template_prefix +
// a random UUID) so repeated calls never collide.
func NewDefaultTemplate(columns []string, pkCol string, fkCols []string, opts DefaultTemplateOptions) (Template, error) {
	templatePrefix := opts.TemplatePrefix
	if templatePrefix == "" {
		templatePrefix = DefaultTemplatePrefix
	}
	predicatePrefix := opts.PredicatePrefixIRI
	if predicatePrefix == "" {
		predicatePrefix = DefaultPredicatePrefixIRI
	}

	pkFound := false
	fkSet := map[string]bool{}
	for _, c := range fkCols {
		fkSet[c] = true
	}
	anyURI := Basic(rdf.XSDAnyURI, "xsd:anyURI")

	var params []Parameter
	for _, c := range columns {
		switch {
		case c == pkCol:
			pkFound = true
			params = append(params, Parameter{VariableName: c, PType: anyURI})
		case fkSet[c]:
			params = append(params, Parameter{VariableName: c, PType: anyURI})
		default:
			params = append(params, Parameter{VariableName: c})
		}
	}
	if !pkFound {
		return Template{}, fmt.Errorf("template: default-template primary key column %q not present in input columns", pkCol)
	}

	var patterns []Instance
	for _, c := range columns {
		if c == pkCol || fkSet[c] {
			continue
		}
		patterns = append(patterns, Instance{
			TemplateName: rdf.OTTRTriple,
			ArgumentList: []Argument{
				{Kind: ArgVariable, Variable: pkCol},
				{Kind: ArgConstant, Constant: rdf.IRITerm{IRI: predicatePrefix + c}},
				{Kind: ArgVariable, Variable: c},
			},
		})
	}

	name := templatePrefix + uuid.NewString()
	return Template{
		Signature:   Signature{TemplateName: name, ParameterList: params},
		PatternList: patterns,
	}, nil
}

package expand

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/errs"
	"github.com/oxhq/stottr/internal/rdf"
	"github.com/oxhq/stottr/internal/template"
	"github.com/oxhq/stottr/internal/validate"
)

func mustBatch(t *testing.T, cols ...*column.Column) *column.Batch {
	t.Helper()
	b, err := column.FromColumns(cols...)
	require.NoError(t, err)
	return b
}

func iriColumn(name string, vals ...string) *column.Column {
	anyVals := make([]any, len(vals))
	for i, v := range vals {
		anyVals[i] = v
	}
	return &column.Column{Name: name, Type: rdf.TypeIRI, Values: anyVals}
}

// hasOwnerTemplate is a single ottr:Triple instance, used directly as
// Scenario A: a flat, single-triple template over a two-row input batch.
var hasOwnerTemplate = template.Template{
	Signature: template.Signature{
		TemplateName: "http://ex/HasOwner",
		ParameterList: []template.Parameter{
			{VariableName: "pet"},
			{VariableName: "owner"},
		},
	},
	PatternList: []template.Instance{
		{
			TemplateName: rdf.OTTRTriple,
			ArgumentList: []template.Argument{
				{Kind: template.ArgVariable, Variable: "pet"},
				{Kind: template.ArgConstant, Constant: rdf.IRITerm{IRI: "http://ex/hasOwner"}},
				{Kind: template.ArgVariable, Variable: "owner"},
			},
		},
	},
}

func datasetWith(tmpls ...template.Template) template.Dataset {
	return template.Dataset{Templates: tmpls, PrefixMap: map[string]string{"ex": "http://ex/"}}
}

// TestExpandScenarioA exercises a single-instance, single-triple template: a
// flat expansion producing exactly one leaf whose static predicate is the
// instance's constant verb argument.
func TestExpandScenarioA(t *testing.T) {
	batch := mustBatch(t,
		iriColumn("pet", "http://ex/rex", "http://ex/fido"),
		iriColumn("owner", "http://ex/ann", "http://ex/bo"),
	)
	leaves, err := Expand(context.Background(), datasetWith(hasOwnerTemplate), "http://ex/HasOwner", batch, validate.Options{}, 4)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	require.Equal(t, "http://ex/hasOwner", *leaves[0].StaticPredicate)
	require.Equal(t, 2, leaves[0].Batch.Height())
	require.Equal(t, []any{"http://ex/rex", "http://ex/fido"}, leaves[0].Batch.Column("subject").Values)
	require.Equal(t, []any{"http://ex/ann", "http://ex/bo"}, leaves[0].Batch.Column("object").Values)
}

// TestExpandScenarioB exercises nested expansion: a parent template with two
// pattern-list instances, one calling HasOwner directly and one calling a
// second intermediate template that itself calls HasOwner, so both direct
// and two-level recursive expansion concatenate into one leaf list in
// pattern-list order.
func TestExpandScenarioB(t *testing.T) {
	registerOwner := template.Template{
		Signature: template.Signature{
			TemplateName: "http://ex/RegisterOwner",
			ParameterList: []template.Parameter{
				{VariableName: "pet"},
				{VariableName: "owner"},
			},
		},
		PatternList: []template.Instance{
			{
				TemplateName: "http://ex/HasOwner",
				ArgumentList: []template.Argument{
					{Kind: template.ArgVariable, Variable: "pet"},
					{Kind: template.ArgVariable, Variable: "owner"},
				},
			},
		},
	}
	parent := template.Template{
		Signature: template.Signature{
			TemplateName: "http://ex/Parent",
			ParameterList: []template.Parameter{
				{VariableName: "pet"},
				{VariableName: "owner"},
			},
		},
		PatternList: []template.Instance{
			{
				TemplateName: rdf.OTTRTriple,
				ArgumentList: []template.Argument{
					{Kind: template.ArgVariable, Variable: "pet"},
					{Kind: template.ArgConstant, Constant: rdf.IRITerm{IRI: "http://ex/isPet"}},
					{Kind: template.ArgConstant, Constant: rdf.LiteralTerm{Lexical: "true", Datatype: rdf.XSDBoolean}},
				},
			},
			{
				TemplateName: "http://ex/RegisterOwner",
				ArgumentList: []template.Argument{
					{Kind: template.ArgVariable, Variable: "pet"},
					{Kind: template.ArgVariable, Variable: "owner"},
				},
			},
		},
	}
	ds := datasetWith(hasOwnerTemplate, registerOwner, parent)
	batch := mustBatch(t, iriColumn("pet", "http://ex/rex"), iriColumn("owner", "http://ex/ann"))

	leaves, err := Expand(context.Background(), ds, "http://ex/Parent", batch, validate.Options{}, 4)
	require.NoError(t, err)
	require.Len(t, leaves, 2)
	require.Equal(t, "http://ex/isPet", *leaves[0].StaticPredicate)
	require.Equal(t, "http://ex/hasOwner", *leaves[1].StaticPredicate)
}

// TestExpandScenarioCListExpansion exercises ottr:cross list expansion: a
// pet with a list-valued tags column explodes into one HasTag triple per
// list element, paired against the (repeated) pet column.
func TestExpandScenarioCListExpansion(t *testing.T) {
	hasTag := template.Template{
		Signature: template.Signature{
			TemplateName: "http://ex/HasTag",
			ParameterList: []template.Parameter{
				{VariableName: "pet"},
				{VariableName: "tag"},
			},
		},
		PatternList: []template.Instance{
			{
				TemplateName: rdf.OTTRTriple,
				ArgumentList: []template.Argument{
					{Kind: template.ArgVariable, Variable: "pet"},
					{Kind: template.ArgConstant, Constant: rdf.IRITerm{IRI: "http://ex/hasTag"}},
					{Kind: template.ArgVariable, Variable: "tag"},
				},
			},
		},
	}
	tagger := template.Template{
		Signature: template.Signature{
			TemplateName: "http://ex/Tagger",
			ParameterList: []template.Parameter{
				{VariableName: "pet"},
				{VariableName: "tags"},
			},
		},
		PatternList: []template.Instance{
			{
				TemplateName: "http://ex/HasTag",
				ListExpander: template.ExpanderCross,
				ArgumentList: []template.Argument{
					{Kind: template.ArgVariable, Variable: "pet"},
					{Kind: template.ArgVariable, Variable: "tags", ListExpand: true},
				},
			},
		},
	}
	ds := datasetWith(hasTag, tagger)

	tagsCol := &column.Column{Name: "tags", Type: rdf.TypeUnknown, Values: []any{
		[]any{"friendly", "loud"},
	}}
	batch := mustBatch(t, iriColumn("pet", "http://ex/rex"), tagsCol)

	leaves, err := Expand(context.Background(), ds, "http://ex/Tagger", batch, validate.Options{}, 4)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	require.Equal(t, 2, leaves[0].Batch.Height())
	require.Equal(t, []any{"http://ex/rex", "http://ex/rex"}, leaves[0].Batch.Column("subject").Values)
	require.ElementsMatch(t, []any{"friendly", "loud"}, leaves[0].Batch.Column("object").Values)
}

func TestExpandUnknownVariable(t *testing.T) {
	parent := template.Template{
		Signature: template.Signature{TemplateName: "http://ex/Parent", ParameterList: []template.Parameter{{VariableName: "pet"}}},
		PatternList: []template.Instance{
			{
				TemplateName: "http://ex/HasOwner",
				ArgumentList: []template.Argument{
					{Kind: template.ArgVariable, Variable: "pet"},
					{Kind: template.ArgVariable, Variable: "owner"}, // not a parent parameter or column
				},
			},
		},
	}
	ds := datasetWith(hasOwnerTemplate, parent)
	batch := mustBatch(t, iriColumn("pet", "http://ex/rex"))

	_, err := Expand(context.Background(), ds, "http://ex/Parent", batch, validate.Options{}, 4)
	var unknown *errs.UnknownVariableError
	require.ErrorAs(t, err, &unknown)
}

func TestExpandTemplateNotFound(t *testing.T) {
	batch := mustBatch(t, iriColumn("pet", "http://ex/rex"))
	_, err := Expand(context.Background(), datasetWith(), "http://ex/Nope", batch, validate.Options{}, 4)
	var notFound *errs.TemplateNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestExpandNoTemplateForPrefix(t *testing.T) {
	batch := mustBatch(t, iriColumn("pet", "http://ex/rex"))
	_, err := Expand(context.Background(), datasetWith(), "ex:Nope", batch, validate.Options{}, 4)
	var noPrefix *errs.NoTemplateForPrefixError
	require.ErrorAs(t, err, &noPrefix)
}

func TestExpandListArgumentUnsupported(t *testing.T) {
	parent := template.Template{
		Signature: template.Signature{TemplateName: "http://ex/Parent", ParameterList: []template.Parameter{{VariableName: "pet"}}},
		PatternList: []template.Instance{
			{
				TemplateName: "http://ex/HasOwner",
				ArgumentList: []template.Argument{
					{Kind: template.ArgVariable, Variable: "pet"},
					{Kind: template.ArgList, List: []template.Argument{
						{Kind: template.ArgConstant, Constant: rdf.IRITerm{IRI: "http://ex/ann"}},
					}},
				},
			},
		},
	}
	ds := datasetWith(hasOwnerTemplate, parent)
	batch := mustBatch(t, iriColumn("pet", "http://ex/rex"))

	_, err := Expand(context.Background(), ds, "http://ex/Parent", batch, validate.Options{}, 4)
	var unsupported *errs.ListArgumentUnsupportedError
	require.ErrorAs(t, err, &unsupported)
}

// TestExpandListOutsideExpander guards against a list constant reaching an
// argument that isn't marked list_expand and whose instance has no
// ListExpander set.
func TestExpandListOutsideExpander(t *testing.T) {
	parent := template.Template{
		Signature: template.Signature{TemplateName: "http://ex/Parent", ParameterList: []template.Parameter{{VariableName: "pet"}}},
		PatternList: []template.Instance{
			{
				TemplateName: "http://ex/HasOwner",
				ArgumentList: []template.Argument{
					{Kind: template.ArgVariable, Variable: "pet"},
					{Kind: template.ArgConstant, Constant: rdf.ListTerm{Items: []rdf.ConstantTerm{
						rdf.IRITerm{IRI: "http://ex/ann"},
					}}},
				},
			},
		},
	}
	ds := datasetWith(hasOwnerTemplate, parent)
	batch := mustBatch(t, iriColumn("pet", "http://ex/rex"))

	_, err := Expand(context.Background(), ds, "http://ex/Parent", batch, validate.Options{}, 4)
	var outside *errs.ListOutsideExpanderError
	require.ErrorAs(t, err, &outside)
}

// TestExpandInvalidPredicateConstant guards the leaf's check that a static
// verb slot must be an IRI constant.
func TestExpandInvalidPredicateConstant(t *testing.T) {
	badVerb := template.Template{
		Signature: template.Signature{
			TemplateName: "http://ex/BadVerb",
			ParameterList: []template.Parameter{
				{VariableName: "pet"},
				{VariableName: "owner"},
			},
		},
		PatternList: []template.Instance{
			{
				TemplateName: rdf.OTTRTriple,
				ArgumentList: []template.Argument{
					{Kind: template.ArgVariable, Variable: "pet"},
					{Kind: template.ArgConstant, Constant: rdf.LiteralTerm{Lexical: "not-an-iri", Datatype: rdf.XSDString}},
					{Kind: template.ArgVariable, Variable: "owner"},
				},
			},
		},
	}
	ds := datasetWith(badVerb)
	batch := mustBatch(t, iriColumn("pet", "http://ex/rex"), iriColumn("owner", "http://ex/ann"))

	_, err := Expand(context.Background(), ds, "http://ex/BadVerb", batch, validate.Options{}, 4)
	var invalid *errs.InvalidPredicateConstantError
	require.ErrorAs(t, err, &invalid)
	require.False(t, errors.As(err, new(*errs.UnknownVariableError)))
}

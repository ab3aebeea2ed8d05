package rdf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeTypeEqual(t *testing.T) {
	require.True(t, TypeIRI.Equal(TypeIRI))
	require.True(t, Literal(XSDInteger).Equal(Literal(XSDInteger)))
	require.False(t, Literal(XSDInteger).Equal(Literal(XSDDouble)))
	require.False(t, TypeIRI.Equal(TypeBlankNode))
}

func TestNodeTypeIsStringLiteral(t *testing.T) {
	require.True(t, Literal(XSDString).IsStringLiteral())
	require.False(t, Literal(XSDInteger).IsStringLiteral())
	require.False(t, TypeIRI.IsStringLiteral())
}

func TestNodeTypeString(t *testing.T) {
	require.Equal(t, "IRI", TypeIRI.String())
	require.Equal(t, "Literal(http://www.w3.org/2001/XMLSchema#integer)", Literal(XSDInteger).String())
}

func TestNodeTypeTag(t *testing.T) {
	require.Equal(t, "IRI", TypeIRI.Tag())
	require.Equal(t, "Literal_integer", Literal(XSDInteger).Tag())
	require.Equal(t, "Literal_string", Literal(XSDString).Tag())
}

func TestBucketKeyString(t *testing.T) {
	k := BucketKey{Predicate: "http://ex/p", ObjectType: TypeIRI}
	require.Equal(t, "http://ex/p@IRI", k.String())
}

func TestConstantTermNodeTypes(t *testing.T) {
	require.Equal(t, TypeIRI, IRITerm{IRI: "http://ex/a"}.NodeType())
	require.Equal(t, TypeBlankNode, BlankTerm{ID: "b1"}.NodeType())
	require.Equal(t, Literal(XSDString), LiteralTerm{Lexical: "hi", Datatype: XSDString}.NodeType())
	require.Equal(t, TypeUnknown, ListTerm{}.NodeType())
	require.Equal(t, TypeUnknown, NoneTerm{}.NodeType())
}

func TestConstantTermString(t *testing.T) {
	require.Equal(t, "<http://ex/a>", IRITerm{IRI: "http://ex/a"}.String())
	require.Equal(t, "_:b1", BlankTerm{ID: "b1"}.String())

	tag := "en"
	require.Equal(t, `"hi"@en`, LiteralTerm{Lexical: "hi", Datatype: XSDString, LanguageTag: &tag}.String())
	require.Equal(t, `"1"^^<http://www.w3.org/2001/XMLSchema#integer>`, LiteralTerm{Lexical: "1", Datatype: XSDInteger}.String())

	list := ListTerm{Items: []ConstantTerm{IRITerm{IRI: "http://ex/a"}, IRITerm{IRI: "http://ex/b"}}}
	require.Equal(t, "(<http://ex/a>, <http://ex/b>)", list.String())
}

func TestEscapeLexical(t *testing.T) {
	require.Equal(t, `a\"b\\c\nd\re\tf`, EscapeLexical("a\"b\\c\nd\re\tf"))
}

func TestFormatIRIAndBlankNode(t *testing.T) {
	require.Equal(t, "<http://ex/a>", FormatIRI("http://ex/a"))
	require.Equal(t, "_:b1", FormatBlankNode("b1"))
}

func TestFormatLiteralPlainString(t *testing.T) {
	require.Equal(t, `"hi"`, FormatLiteral("hi", XSDString, nil))
}

func TestFormatLiteralWithLanguageTag(t *testing.T) {
	lang := "en"
	require.Equal(t, `"hi"@en`, FormatLiteral("hi", XSDString, &lang))
}

func TestFormatLiteralTypedDatatype(t *testing.T) {
	require.Equal(t, `"30"^^<http://www.w3.org/2001/XMLSchema#integer>`, FormatLiteral("30", XSDInteger, nil))
}

func TestFormatTriple(t *testing.T) {
	got := FormatTriple("<http://ex/a>", "http://ex/p", `"x"`)
	require.Equal(t, `<http://ex/a> <http://ex/p> "x" .`, got)
}

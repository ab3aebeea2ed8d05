package sparql

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/errs"
	"github.com/oxhq/stottr/internal/rdf"
	"github.com/oxhq/stottr/internal/store"
)

// ConstructTemplate is the triple pattern list of a CONSTRUCT query's
// template clause; its variables are bound from the WHERE pattern's
// solutions, and its constants (including blank nodes) are reused verbatim.
// This revision materializes only template triples whose predicate slot is
// a constant IRI: a variable predicate would require grouping rows by
// runtime value the way expansion's dynamic verb column does, which
// CONSTRUCT templates don't need in practice.
type ConstructTemplate []TriplePattern

// EvalConstruct evaluates `pattern` and instantiates `tmpl` once per
// solution row, returning one TripleDF per template triple ready for
// Store.AddTripleBatches. Rows where the subject or object term is unbound
// are silently omitted, matching SPARQL CONSTRUCT semantics.
func EvalConstruct(ctx Context, st *store.Store, pattern Algebra, tmpl ConstructTemplate) ([]store.TripleDF, error) {
	sm, err := pattern.Eval(ctx.Push("construct/where"), st)
	if err != nil {
		return nil, err
	}
	height := sm.Batch.Height()
	blanks := map[string]map[int]string{}

	var out []store.TripleDF
	for i, t := range tmpl {
		if t.Predicate.Kind != TermConstant {
			return nil, fmt.Errorf("sparql: CONSTRUCT template triple %d has a non-constant predicate, unsupported", i)
		}
		iri, ok := t.Predicate.Constant.(rdf.IRITerm)
		if !ok {
			return nil, &errs.InvalidPredicateConstantError{Constant: t.Predicate.Constant.String()}
		}

		// A ground template triple (no variable in subject or object; the
		// predicate is already constant above) doesn't depend on the
		// solution at all, so it instantiates to exactly one triple rather
		// than one per solution row.
		tripleHeight := height
		if t.Subject.Kind != TermVariable && t.Object.Kind != TermVariable {
			tripleHeight = 1
		}

		subjVals, _, _, err := termColumn(t.Subject, sm, blanks, tripleHeight)
		if err != nil {
			return nil, err
		}
		objVals, objType, langVals, err := termColumn(t.Object, sm, blanks, tripleHeight)
		if err != nil {
			return nil, err
		}

		keepSubj := make([]any, 0, tripleHeight)
		keepObj := make([]any, 0, tripleHeight)
		var keepLang []any
		if langVals != nil {
			keepLang = make([]any, 0, tripleHeight)
		}
		for row := 0; row < tripleHeight; row++ {
			if subjVals[row] == nil || objVals[row] == nil {
				continue
			}
			keepSubj = append(keepSubj, subjVals[row])
			keepObj = append(keepObj, objVals[row])
			if langVals != nil {
				keepLang = append(keepLang, langVals[row])
			}
		}

		cols := []*column.Column{
			{Name: "subject", Type: rdf.TypeIRI, Values: keepSubj},
			{Name: "object", Type: objType, Values: keepObj},
		}
		if keepLang != nil {
			cols = append(cols, &column.Column{Name: "language_tag", Type: rdf.Literal(rdf.XSDString), Values: keepLang})
		}
		batch, err := column.FromColumns(cols...)
		if err != nil {
			return nil, err
		}
		out = append(out, store.TripleDF{Batch: batch, Predicate: iri.IRI, ObjectType: objType})
	}
	return out, nil
}

// termColumn renders one template-triple term into per-row values: a bound
// variable's column, or a constant broadcast across every row (minting a
// fresh blank node identity per row for a BlankTerm, cached by label so the
// same label within one template instantiates to the same node per row).
func termColumn(t Term, sm SolutionMappings, blanks map[string]map[int]string, height int) ([]any, rdf.NodeType, []any, error) {
	if t.Kind == TermVariable {
		c := sm.Batch.Column(t.Variable)
		if c == nil {
			return make([]any, height), rdf.TypeUnknown, nil, nil
		}
		var lang []any
		if lc, ok := sm.LangTags[t.Variable]; ok {
			lang = lc.Values
		}
		return c.Values, sm.Types[t.Variable], lang, nil
	}

	switch c := t.Constant.(type) {
	case rdf.IRITerm:
		vals := make([]any, height)
		for i := range vals {
			vals[i] = c.IRI
		}
		return vals, rdf.TypeIRI, nil, nil

	case rdf.BlankTerm:
		label := c.ID
		if label == "" {
			label = uuid.NewString()
		}
		perRow, ok := blanks[label]
		if !ok {
			perRow = map[int]string{}
			blanks[label] = perRow
		}
		vals := make([]any, height)
		for i := 0; i < height; i++ {
			id, ok := perRow[i]
			if !ok {
				id = uuid.NewString()
				perRow[i] = id
			}
			vals[i] = id
		}
		return vals, rdf.TypeBlankNode, nil, nil

	case rdf.LiteralTerm:
		vals := make([]any, height)
		for i := range vals {
			vals[i] = c.Lexical
		}
		var lang []any
		if c.LanguageTag != nil {
			lang = make([]any, height)
			for i := range lang {
				lang[i] = *c.LanguageTag
			}
		}
		return vals, rdf.Literal(c.Datatype), lang, nil

	default:
		return nil, rdf.TypeUnknown, nil, fmt.Errorf("sparql: %T cannot appear in a CONSTRUCT template", c)
	}
}

package sparql

import (
	"github.com/oxhq/stottr/internal/errs"
	"github.com/oxhq/stottr/internal/store"
)

// QueryKind tags the handled query forms; ASK, DESCRIBE, and any other
// SPARQL update form are rejected with QueryTypeNotSupportedError.
type QueryKind int

const (
	QuerySelect QueryKind = iota
	QueryConstruct
	QueryAsk
	QueryDescribe
)

func (k QueryKind) String() string {
	switch k {
	case QuerySelect:
		return "SELECT"
	case QueryConstruct:
		return "CONSTRUCT"
	case QueryAsk:
		return "ASK"
	case QueryDescribe:
		return "DESCRIBE"
	default:
		return "UNKNOWN"
	}
}

// Query is one evaluable top-level SPARQL query.
type Query struct {
	Kind QueryKind

	// Select holds the full algebra tree rooted at the outermost Project
	// (or Slice/Distinct/OrderBy wrapping one), used when Kind == QuerySelect.
	Select Algebra

	// ConstructWhere/ConstructTemplate are used when Kind == QueryConstruct.
	ConstructWhere    Algebra
	ConstructTemplate ConstructTemplate
}

// RunSelect evaluates a SELECT query's algebra tree against the store.
func (q Query) RunSelect(ctx Context, st *store.Store) (SolutionMappings, error) {
	if q.Kind != QuerySelect {
		return SolutionMappings{}, &errs.QueryTypeNotSupportedError{Kind: q.Kind.String()}
	}
	return q.Select.Eval(ctx.Push("select"), st)
}

// RunConstruct evaluates a CONSTRUCT query and returns the per-template-triple
// batches it would materialize, without writing them to the store — for a
// read-only CONSTRUCT (producing a graph to export) rather than an update.
func (q Query) RunConstruct(ctx Context, st *store.Store) ([]store.TripleDF, error) {
	if q.Kind != QueryConstruct {
		return nil, &errs.QueryTypeNotSupportedError{Kind: q.Kind.String()}
	}
	return EvalConstruct(ctx.Push("construct"), st, q.ConstructWhere, q.ConstructTemplate)
}

// RunConstructUpdate evaluates a CONSTRUCT query and absorbs its result back
// into the same store, the "INSERT the construction's output" update form.
// The batches are tagged with callUUID as given; this function mints no
// call id of its own.
func (q Query) RunConstructUpdate(ctx Context, st *store.Store, callUUID string) error {
	dfs, err := q.RunConstruct(ctx, st)
	if err != nil {
		return err
	}
	prepared := make([]store.TripleDF, len(dfs))
	for i, df := range dfs {
		prepared[i] = store.PrepareGroup(df, false)
	}
	return st.AddTripleBatches(prepared, callUUID)
}

package sparql

import (
	"fmt"
	"sort"

	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/errs"
	"github.com/oxhq/stottr/internal/rdf"
	"github.com/oxhq/stottr/internal/store"
)

// Algebra is one evaluable node of the query plan.
type Algebra interface {
	Eval(ctx Context, st *store.Store) (SolutionMappings, error)
}

// JoinSolutions joins two solution mappings on their shared variables (an
// empty intersection cross-joins, as column.Join already implements),
// merging their type and language-tag maps with the left side winning on a
// name collision.
func JoinSolutions(left, right SolutionMappings, kind column.JoinKind) (SolutionMappings, error) {
	merged, err := column.Join(left.Batch, right.Batch, kind)
	if err != nil {
		return SolutionMappings{}, err
	}
	sm := NewSolutionMappings(merged, mergeTypesLeftWins(left.Types, right.Types))
	for k, v := range right.LangTags {
		sm.LangTags[k] = v
	}
	for k, v := range left.LangTags {
		sm.LangTags[k] = v
	}
	return sm, nil
}

// BGPNode evaluates a basic graph pattern.
type BGPNode struct{ Patterns []TriplePattern }

func (n BGPNode) Eval(ctx Context, st *store.Store) (SolutionMappings, error) {
	return EvalBGP(ctx.Push("bgp"), st, n.Patterns)
}

// JoinNode is SPARQL's default group-graph-pattern join.
type JoinNode struct{ Left, Right Algebra }

func (n JoinNode) Eval(ctx Context, st *store.Store) (SolutionMappings, error) {
	l, err := n.Left.Eval(ctx.Push("join/left"), st)
	if err != nil {
		return SolutionMappings{}, err
	}
	r, err := n.Right.Eval(ctx.Push("join/right"), st)
	if err != nil {
		return SolutionMappings{}, err
	}
	return JoinSolutions(l, r, column.JoinInner)
}

// LeftJoinNode is OPTIONAL: every left row survives, joined with a matching
// right row when one exists (and, when Expr is set, when it also holds).
// Expr is applied to the right branch before the left-outer-join (not to
// the already-joined output): a right row that fails Expr is discarded
// from the right side, so a left row it would have matched becomes
// unmatched and survives with null right-side bindings, per OPTIONAL
// semantics. This implementation supports only the filter-then-join shape
// (no correlated subquery inside the OPTIONAL block), so Expr may only
// reference variables bound by the right branch (or shared with the left
// branch's join key).
type LeftJoinNode struct {
	Left, Right Algebra
	Expr        Expr // optional join condition, nil means none
}

func (n LeftJoinNode) Eval(ctx Context, st *store.Store) (SolutionMappings, error) {
	l, err := n.Left.Eval(ctx.Push("leftjoin/left"), st)
	if err != nil {
		return SolutionMappings{}, err
	}
	r, err := n.Right.Eval(ctx.Push("leftjoin/right"), st)
	if err != nil {
		return SolutionMappings{}, err
	}
	if n.Expr != nil {
		r, err = filterSolutions(ctx.Push("leftjoin/right/filter"), r, n.Expr)
		if err != nil {
			return SolutionMappings{}, err
		}
	}
	return JoinSolutions(l, r, column.JoinLeft)
}

// UnionNode evaluates both branches and concatenates their solutions,
// rejecting a shared variable bound to incompatible RDF types.
type UnionNode struct{ Left, Right Algebra }

func (n UnionNode) Eval(ctx Context, st *store.Store) (SolutionMappings, error) {
	l, err := n.Left.Eval(ctx.Push("union/left"), st)
	if err != nil {
		return SolutionMappings{}, err
	}
	r, err := n.Right.Eval(ctx.Push("union/right"), st)
	if err != nil {
		return SolutionMappings{}, err
	}
	for v, lt := range l.Types {
		if rt, ok := r.Types[v]; ok && !lt.Equal(rt) {
			return SolutionMappings{}, &errs.InconsistentDatatypesError{
				Variable: v, Type1: lt.String(), Type2: rt.String(), Context: ctx.Push("union").String(),
			}
		}
	}
	merged := column.Concat(l.Batch, r.Batch)
	sm := NewSolutionMappings(merged, mergeTypesLeftWins(l.Types, r.Types))
	for k, v := range r.LangTags {
		sm.LangTags[k] = v
	}
	for k, v := range l.LangTags {
		sm.LangTags[k] = v
	}
	return sm, nil
}

// FilterNode keeps rows where Expr evaluates true.
type FilterNode struct {
	Child Algebra
	Expr  Expr
}

func (n FilterNode) Eval(ctx Context, st *store.Store) (SolutionMappings, error) {
	sm, err := n.Child.Eval(ctx.Push("filter/child"), st)
	if err != nil {
		return SolutionMappings{}, err
	}
	return filterSolutions(ctx.Push("filter"), sm, n.Expr)
}

func filterSolutions(ctx Context, sm SolutionMappings, e Expr) (SolutionMappings, error) {
	col, err := e.Eval(ctx, sm)
	if err != nil {
		return SolutionMappings{}, err
	}
	mask := make([]bool, len(col.Values))
	for i, v := range col.Values {
		if b, ok := v.(bool); ok {
			mask[i] = b
		}
	}
	filtered, err := sm.Batch.Filter(mask)
	if err != nil {
		return SolutionMappings{}, err
	}
	out := NewSolutionMappings(filtered, sm.Types)
	out.LangTags = sm.LangTags
	return out, nil
}

// ExtendNode binds a new variable to Expr's per-row value (SPARQL BIND).
type ExtendNode struct {
	Child    Algebra
	Variable string
	Expr     Expr
}

func (n ExtendNode) Eval(ctx Context, st *store.Store) (SolutionMappings, error) {
	sm, err := n.Child.Eval(ctx.Push("extend/child"), st)
	if err != nil {
		return SolutionMappings{}, err
	}
	col, err := n.Expr.Eval(ctx.Push("extend"), sm)
	if err != nil {
		return SolutionMappings{}, err
	}
	col.Name = n.Variable
	nb, err := sm.Batch.WithColumn(col)
	if err != nil {
		return SolutionMappings{}, err
	}
	out := NewSolutionMappings(nb, sm.Types)
	out.Types[n.Variable] = col.Type
	out.LangTags = sm.LangTags
	return out, nil
}

// ProjectNode restricts the solution to a named set of variables, in order.
type ProjectNode struct {
	Child Algebra
	Vars  []string
}

func (n ProjectNode) Eval(ctx Context, st *store.Store) (SolutionMappings, error) {
	sm, err := n.Child.Eval(ctx.Push("project/child"), st)
	if err != nil {
		return SolutionMappings{}, err
	}
	for _, v := range n.Vars {
		if !sm.Columns[v] {
			return SolutionMappings{}, &errs.VariableNotFoundError{Variable: v, Context: ctx.Push("project").String()}
		}
	}
	projected, err := sm.Batch.Project(n.Vars)
	if err != nil {
		return SolutionMappings{}, err
	}
	types := map[string]rdf.NodeType{}
	langs := map[string]*column.Column{}
	for _, v := range n.Vars {
		types[v] = sm.Types[v]
		if lc, ok := sm.LangTags[v]; ok {
			langs[v] = lc
		}
	}
	out := NewSolutionMappings(projected, types)
	out.LangTags = langs
	return out, nil
}

// OrderKey is one ORDER BY sort key.
type OrderKey struct {
	Expr Expr
	Desc bool
}

// OrderByNode stable-sorts rows by one or more keys, earlier keys taking
// precedence.
type OrderByNode struct {
	Child Algebra
	Keys  []OrderKey
}

func (n OrderByNode) Eval(ctx Context, st *store.Store) (SolutionMappings, error) {
	sm, err := n.Child.Eval(ctx.Push("orderby/child"), st)
	if err != nil {
		return SolutionMappings{}, err
	}
	keyCols := make([][]any, len(n.Keys))
	for i, k := range n.Keys {
		c, err := k.Expr.Eval(ctx.PushIndexed("orderby", i), sm)
		if err != nil {
			return SolutionMappings{}, err
		}
		keyCols[i] = c.Values
	}
	indices := make([]int, sm.Batch.Height())
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		ia, ib := indices[a], indices[b]
		for i, k := range n.Keys {
			c := less(keyCols[i][ia], keyCols[i][ib])
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	out := NewSolutionMappings(sm.Batch.Take(indices), sm.Types)
	out.LangTags = sm.LangTags
	return out, nil
}

// less returns -1/0/1 comparing two scalar values, preferring numeric
// comparison and falling back to lexical string comparison.
func less(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if fa, aok := toFloat(a); aok {
		if fb, bok := toFloat(b); bok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	sa, sb := sprintOrdered(a), sprintOrdered(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func sprintOrdered(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// DistinctNode deduplicates rows across every bound variable.
type DistinctNode struct{ Child Algebra }

func (n DistinctNode) Eval(ctx Context, st *store.Store) (SolutionMappings, error) {
	sm, err := n.Child.Eval(ctx.Push("distinct/child"), st)
	if err != nil {
		return SolutionMappings{}, err
	}
	out := NewSolutionMappings(column.Unique(sm.Batch, nil), sm.Types)
	out.LangTags = sm.LangTags
	return out, nil
}

// SliceNode implements OFFSET/LIMIT.
type SliceNode struct {
	Child  Algebra
	Offset int
	Length int // negative means "to the end"
}

func (n SliceNode) Eval(ctx Context, st *store.Store) (SolutionMappings, error) {
	sm, err := n.Child.Eval(ctx.Push("slice/child"), st)
	if err != nil {
		return SolutionMappings{}, err
	}
	out := NewSolutionMappings(sm.Batch.Slice(n.Offset, n.Length), sm.Types)
	out.LangTags = sm.LangTags
	return out, nil
}

// MinusNode implements SPARQL MINUS: left solutions are removed when they
// agree with a right solution on every variable they share. Per SPARQL
// semantics, when the two sides share no variable MINUS has no effect.
type MinusNode struct{ Left, Right Algebra }

func (n MinusNode) Eval(ctx Context, st *store.Store) (SolutionMappings, error) {
	l, err := n.Left.Eval(ctx.Push("minus/left"), st)
	if err != nil {
		return SolutionMappings{}, err
	}
	r, err := n.Right.Eval(ctx.Push("minus/right"), st)
	if err != nil {
		return SolutionMappings{}, err
	}
	shared := false
	for v := range l.Columns {
		if r.Columns[v] {
			shared = true
			break
		}
	}
	if !shared {
		return l, nil
	}
	merged, err := column.Join(l.Batch, r.Batch, column.JoinAnti)
	if err != nil {
		return SolutionMappings{}, err
	}
	out := NewSolutionMappings(merged, l.Types)
	out.LangTags = l.LangTags
	return out, nil
}

package sparql

import (
	"fmt"
	"strings"

	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/rdf"
	"github.com/oxhq/stottr/internal/store"
)

// AggKind selects an aggregate function.
type AggKind int

const (
	AggCount AggKind = iota
	AggSum
	AggMin
	AggMax
	AggAvg
	AggSample
	AggGroupConcat
)

// Aggregate is one SELECT-clause aggregate expression, bound to Output.
// Expr is nil for COUNT(*).
type Aggregate struct {
	Output    string
	Kind      AggKind
	Expr      Expr
	Distinct  bool
	Separator string // GroupConcat only; defaults to " "
}

// GroupNode groups rows by GroupVars (no GroupVars means one group over the
// whole input) and reduces each group with Aggregates.
type GroupNode struct {
	Child      Algebra
	GroupVars  []string
	Aggregates []Aggregate
}

func (n GroupNode) Eval(ctx Context, st *store.Store) (SolutionMappings, error) {
	sm, err := n.Child.Eval(ctx.Push("group/child"), st)
	if err != nil {
		return SolutionMappings{}, err
	}
	height := sm.Batch.Height()

	var order []string
	rows := map[string][]int{}
	for i := 0; i < height; i++ {
		key := groupKey(sm.Batch, n.GroupVars, i)
		if _, seen := rows[key]; !seen {
			order = append(order, key)
		}
		rows[key] = append(rows[key], i)
	}
	if len(n.GroupVars) == 0 && height == 0 {
		// A whole-input aggregate over zero rows still produces one group
		// (e.g. COUNT(*) = 0), per SPARQL's aggregate semantics.
		order = []string{""}
		rows[""] = nil
	}

	aggCols := make([][]any, len(n.Aggregates))
	for i, agg := range n.Aggregates {
		var src *column.Column
		if agg.Expr != nil {
			c, err := agg.Expr.Eval(ctx.PushIndexed("group/agg", i), sm)
			if err != nil {
				return SolutionMappings{}, err
			}
			src = c
		}
		vals := make([]any, len(order))
		for g, key := range order {
			vals[g] = reduceGroup(agg, src, rows[key])
		}
		aggCols[i] = vals
	}

	var cols []*column.Column
	for _, v := range n.GroupVars {
		src := sm.Batch.Column(v)
		vals := make([]any, len(order))
		for g, key := range order {
			rowset := rows[key]
			if len(rowset) > 0 {
				vals[g] = src.Values[rowset[0]]
			}
		}
		cols = append(cols, &column.Column{Name: v, Type: sm.Types[v], Values: vals})
	}
	for i, agg := range n.Aggregates {
		cols = append(cols, &column.Column{Name: agg.Output, Type: aggregateType(agg), Values: aggCols[i]})
	}

	out, err := column.FromColumns(cols...)
	if err != nil {
		return SolutionMappings{}, err
	}
	types := map[string]rdf.NodeType{}
	for _, v := range n.GroupVars {
		types[v] = sm.Types[v]
	}
	for _, agg := range n.Aggregates {
		types[agg.Output] = aggregateType(agg)
	}
	return NewSolutionMappings(out, types), nil
}

func groupKey(b *column.Batch, vars []string, row int) string {
	var sb strings.Builder
	for _, v := range vars {
		c := b.Column(v)
		if c == nil || c.Values[row] == nil {
			sb.WriteString("\x00\x01")
			continue
		}
		fmt.Fprintf(&sb, "%v\x00", c.Values[row])
	}
	return sb.String()
}

func aggregateType(agg Aggregate) rdf.NodeType {
	switch agg.Kind {
	case AggCount:
		return rdf.Literal(rdf.XSDInteger)
	case AggSum, AggAvg:
		return rdf.Literal(rdf.XSDDouble)
	case AggGroupConcat:
		return rdf.Literal(rdf.XSDString)
	default:
		return rdf.TypeUnknown
	}
}

func reduceGroup(agg Aggregate, src *column.Column, rows []int) any {
	switch agg.Kind {
	case AggCount:
		if agg.Expr == nil {
			return int64(len(rows))
		}
		n := int64(0)
		seen := map[string]bool{}
		for _, r := range rows {
			v := src.Values[r]
			if v == nil {
				continue
			}
			if agg.Distinct {
				k := fmt.Sprint(v)
				if seen[k] {
					continue
				}
				seen[k] = true
			}
			n++
		}
		return n

	case AggSum, AggAvg:
		sum := 0.0
		count := 0
		seen := map[string]bool{}
		for _, r := range rows {
			f, ok := toFloat(src.Values[r])
			if !ok {
				continue
			}
			if agg.Distinct {
				k := fmt.Sprint(src.Values[r])
				if seen[k] {
					continue
				}
				seen[k] = true
			}
			sum += f
			count++
		}
		if agg.Kind == AggSum {
			return sum
		}
		if count == 0 {
			return nil
		}
		return sum / float64(count)

	case AggMin, AggMax:
		var best any
		for _, r := range rows {
			v := src.Values[r]
			if v == nil {
				continue
			}
			if best == nil {
				best = v
				continue
			}
			if less(v, best) < 0 {
				if agg.Kind == AggMin {
					best = v
				}
			} else if less(v, best) > 0 {
				if agg.Kind == AggMax {
					best = v
				}
			}
		}
		return best

	case AggSample:
		for _, r := range rows {
			if src.Values[r] != nil {
				return src.Values[r]
			}
		}
		return nil

	case AggGroupConcat:
		sep := agg.Separator
		if sep == "" {
			sep = " "
		}
		var parts []string
		seen := map[string]bool{}
		for _, r := range rows {
			v := src.Values[r]
			if v == nil {
				continue
			}
			s := fmt.Sprint(v)
			if agg.Distinct {
				if seen[s] {
					continue
				}
				seen[s] = true
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, sep)

	default:
		return nil
	}
}

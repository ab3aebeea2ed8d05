package column

import "fmt"

// asList coerces a cell value to a list ([]any) for explosion; a non-list,
// non-nil value is treated as a single-element list (it was never
// list-valued to begin with, e.g. a column not actually touched by the
// expander), and nil stays an empty list.
func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case nil:
		return nil
	default:
		return []any{v}
	}
}

// ExplodeCross explodes each of `cols` independently and takes their
// Cartesian product (ottr:cross list-expander semantics). Columns not named
// in `cols` are repeated to match.
func ExplodeCross(b *Batch, cols []string) (*Batch, error) {
	if len(cols) == 0 {
		return b.Clone(), nil
	}
	result := b.Clone()
	for _, col := range cols {
		var err error
		result, err = explodeOne(result, col)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// explodeOne explodes a single list column, repeating every other column's
// value for each element.
func explodeOne(b *Batch, col string) (*Batch, error) {
	c := b.Column(col)
	if c == nil {
		return nil, fmt.Errorf("explode: unknown column %q", col)
	}
	newVals := map[string][]any{}
	for _, n := range b.order {
		newVals[n] = []any{}
	}
	height := 0
	for i := 0; i < b.height; i++ {
		items := asList(c.Values[i])
		if len(items) == 0 {
			items = []any{nil}
		}
		for _, item := range items {
			for _, n := range b.order {
				if n == col {
					newVals[n] = append(newVals[n], item)
				} else {
					newVals[n] = append(newVals[n], b.cols[n].Values[i])
				}
			}
			height++
		}
	}
	nb := &Batch{cols: map[string]*Column{}, height: height, order: append([]string{}, b.order...)}
	for _, n := range b.order {
		nb.cols[n] = &Column{Name: n, Type: b.cols[n].Type, Values: newVals[n]}
	}
	return nb, nil
}

// ExplodeZip jointly explodes `cols` by positional index: row i's exploded
// tuple is (cols[0][i][k], cols[1][i][k], ...) for k in 0..max(len).
// trimToShortest implements ZipMin (drop rows where any exploded column is
// null, i.e. truncate to the shortest list); !trimToShortest implements
// ZipMax (pad the shorter lists with null).
func ExplodeZip(b *Batch, cols []string, trimToShortest bool) (*Batch, error) {
	if len(cols) == 0 {
		return b.Clone(), nil
	}
	for _, col := range cols {
		if b.Column(col) == nil {
			return nil, fmt.Errorf("explode: unknown column %q", col)
		}
	}

	newVals := map[string][]any{}
	for _, n := range b.order {
		newVals[n] = []any{}
	}
	height := 0
	for i := 0; i < b.height; i++ {
		lists := map[string][]any{}
		maxLen := 0
		for _, col := range cols {
			items := asList(b.cols[col].Values[i])
			lists[col] = items
			if len(items) > maxLen {
				maxLen = len(items)
			}
		}
		if maxLen == 0 {
			maxLen = 1
		}
		for k := 0; k < maxLen; k++ {
			anyNull := false
			rowVals := map[string]any{}
			for _, col := range cols {
				items := lists[col]
				if k < len(items) {
					rowVals[col] = items[k]
				} else {
					rowVals[col] = nil
					anyNull = true
				}
			}
			if trimToShortest && anyNull {
				continue
			}
			for _, n := range b.order {
				if v, ok := rowVals[n]; ok {
					newVals[n] = append(newVals[n], v)
				} else {
					newVals[n] = append(newVals[n], b.cols[n].Values[i])
				}
			}
			height++
		}
	}
	nb := &Batch{cols: map[string]*Column{}, height: height, order: append([]string{}, b.order...)}
	for _, n := range b.order {
		nb.cols[n] = &Column{Name: n, Type: b.cols[n].Type, Values: newVals[n]}
	}
	return nb, nil
}

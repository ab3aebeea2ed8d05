package column

import "fmt"

// JoinKind selects join semantics.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinCross
	JoinAnti // Minus: rows of the left with no match on the right
)

// Join joins two batches on the intersecting column names (equality). Two
// patterns sharing no variable produce an empty intersection, which
// degrades to a cross join rather than an error.
func Join(left, right *Batch, kind JoinKind) (*Batch, error) {
	on := intersect(left.order, right.order)
	if len(on) == 0 && kind != JoinCross {
		kind = JoinCross
	}
	switch kind {
	case JoinCross:
		return crossJoin(left, right)
	case JoinInner:
		return equiJoin(left, right, on, false)
	case JoinLeft:
		return leftJoin(left, right, on)
	case JoinAnti:
		return antiJoin(left, right, on)
	default:
		return nil, fmt.Errorf("join: unknown kind %d", kind)
	}
}

func intersect(a, b []string) []string {
	bset := map[string]bool{}
	for _, n := range b {
		bset[n] = true
	}
	var out []string
	for _, n := range a {
		if bset[n] {
			out = append(out, n)
		}
	}
	return out
}

func crossJoin(left, right *Batch) (*Batch, error) {
	rightOnly := subtract(right.order, left.order)
	nb := &Batch{cols: map[string]*Column{}, height: left.height * right.height}
	nb.order = append(append([]string{}, left.order...), rightOnly...)
	for _, n := range left.order {
		c := left.cols[n]
		vals := make([]any, 0, nb.height)
		for i := 0; i < left.height; i++ {
			for j := 0; j < right.height; j++ {
				vals = append(vals, c.Values[i])
			}
		}
		nb.cols[n] = &Column{Name: n, Type: c.Type, Values: vals}
	}
	for _, n := range rightOnly {
		c := right.cols[n]
		vals := make([]any, 0, nb.height)
		for i := 0; i < left.height; i++ {
			vals = append(vals, c.Values...)
		}
		nb.cols[n] = &Column{Name: n, Type: c.Type, Values: vals}
	}
	return nb, nil
}

func subtract(a, b []string) []string {
	bset := map[string]bool{}
	for _, n := range b {
		bset[n] = true
	}
	var out []string
	for _, n := range a {
		if !bset[n] {
			out = append(out, n)
		}
	}
	return out
}

// buildIndex maps the join-key tuple (rendered via rowKey) to the list of
// matching row indices in b.
func buildIndex(b *Batch, on []string) map[string][]int {
	idx := map[string][]int{}
	for i := 0; i < b.height; i++ {
		k := rowKey(b, i, on)
		idx[k] = append(idx[k], i)
	}
	return idx
}

func equiJoin(left, right *Batch, on []string, keepUnmatchedLeft bool) (*Batch, error) {
	rightOnly := subtract(right.order, left.order)
	idx := buildIndex(right, on)

	leftVals := map[string][]any{}
	rightVals := map[string][]any{}
	for _, n := range left.order {
		leftVals[n] = []any{}
	}
	for _, n := range rightOnly {
		rightVals[n] = []any{}
	}
	height := 0
	for i := 0; i < left.height; i++ {
		k := rowKey(left, i, on)
		matches := idx[k]
		if len(matches) == 0 {
			if keepUnmatchedLeft {
				for _, n := range left.order {
					leftVals[n] = append(leftVals[n], left.cols[n].Values[i])
				}
				for _, n := range rightOnly {
					rightVals[n] = append(rightVals[n], nil)
				}
				height++
			}
			continue
		}
		for _, j := range matches {
			for _, n := range left.order {
				leftVals[n] = append(leftVals[n], left.cols[n].Values[i])
			}
			for _, n := range rightOnly {
				rightVals[n] = append(rightVals[n], right.cols[n].Values[j])
			}
			height++
		}
	}

	nb := &Batch{cols: map[string]*Column{}, height: height}
	for _, n := range left.order {
		nb.order = append(nb.order, n)
		nb.cols[n] = &Column{Name: n, Type: left.cols[n].Type, Values: leftVals[n]}
	}
	for _, n := range rightOnly {
		nb.order = append(nb.order, n)
		nb.cols[n] = &Column{Name: n, Type: right.cols[n].Type, Values: rightVals[n]}
	}
	return nb, nil
}

func leftJoin(left, right *Batch, on []string) (*Batch, error) {
	return equiJoin(left, right, on, true)
}

func antiJoin(left, right *Batch, on []string) (*Batch, error) {
	idx := buildIndex(right, on)
	mask := make([]bool, left.height)
	for i := 0; i < left.height; i++ {
		k := rowKey(left, i, on)
		mask[i] = len(idx[k]) == 0
	}
	return left.Filter(mask)
}

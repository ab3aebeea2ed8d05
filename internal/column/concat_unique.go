package column

import (
	"fmt"

	"github.com/oxhq/stottr/internal/rdf"
)

// Concat concatenates batches column-wise with schema alignment: a column
// missing from some batch is padded with nulls for that batch's rows. Used
// for SPARQL UNION and to merge a store bucket's batches before dedup.
func Concat(batches ...*Batch) *Batch {
	if len(batches) == 0 {
		return New(0)
	}
	if len(batches) == 1 {
		return batches[0].Clone()
	}

	// Union of column names, first-seen order.
	seen := map[string]bool{}
	var names []string
	for _, b := range batches {
		for _, n := range b.order {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}

	totalHeight := 0
	for _, b := range batches {
		totalHeight += b.height
	}

	nb := &Batch{cols: map[string]*Column{}, height: totalHeight, order: names}
	for _, n := range names {
		vals := make([]any, 0, totalHeight)
		typ := rdf.TypeUnknown
		for _, b := range batches {
			if c, ok := b.cols[n]; ok {
				if typ == rdf.TypeUnknown {
					typ = c.Type
				}
				vals = append(vals, c.Values...)
			} else {
				for i := 0; i < b.height; i++ {
					vals = append(vals, nil)
				}
			}
		}
		nb.cols[n] = &Column{Name: n, Type: typ, Values: vals}
	}
	return nb
}

// Unique deduplicates rows, keeping the first occurrence of each distinct
// tuple over `keys` (all columns, if keys is empty).
func Unique(b *Batch, keys []string) *Batch {
	useKeys := keys
	if len(useKeys) == 0 {
		useKeys = b.order
	}
	seen := map[string]bool{}
	mask := make([]bool, b.height)
	for i := 0; i < b.height; i++ {
		key := rowKey(b, i, useKeys)
		if !seen[key] {
			seen[key] = true
			mask[i] = true
		}
	}
	out, _ := b.Filter(mask)
	return out
}

func rowKey(b *Batch, row int, keys []string) string {
	s := ""
	for _, k := range keys {
		c := b.cols[k]
		if c == nil || c.Values[row] == nil {
			s += "\x00\x01"
			continue
		}
		s += fmt.Sprintf("%v\x00", c.Values[row])
	}
	return s
}

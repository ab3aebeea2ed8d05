// Package column implements ColumnBatch: a named, typed, columnar table with
// composable projection, filter, join, explode, concat, and unique
// operations. Rows are positional; a batch is single-owner and moves by
// value through the expansion pipeline, staged the way an edit pipeline
// threads a buffer through successive transforms.
//
// Columns are plain Go slices of `any`, shared by reference across
// Project/Rename/Clone: a projection or rename never copies row data, only
// the name→slice mapping, so a column referenced by many downstream batches
// is materialized once.
package column

import (
	"fmt"

	"github.com/oxhq/stottr/internal/rdf"
)

// Column is one named, typed slice of values. A nil entry at index i means
// row i is null for this column.
type Column struct {
	Name   string
	Type   rdf.NodeType
	Values []any
}

// Batch is an ordered set of named columns sharing a common height (row
// count).
type Batch struct {
	order  []string
	cols   map[string]*Column
	height int
}

// New builds an empty batch with the given height and no columns.
func New(height int) *Batch {
	return &Batch{cols: map[string]*Column{}, height: height}
}

// FromColumns builds a batch from columns, inferring height from the first
// column (all columns must share it).
func FromColumns(cols ...*Column) (*Batch, error) {
	b := &Batch{cols: map[string]*Column{}}
	for i, c := range cols {
		if i == 0 {
			b.height = len(c.Values)
		} else if len(c.Values) != b.height {
			return nil, fmt.Errorf("column %q has height %d, expected %d", c.Name, len(c.Values), b.height)
		}
		b.order = append(b.order, c.Name)
		b.cols[c.Name] = c
	}
	return b, nil
}

// Height returns the row count.
func (b *Batch) Height() int { return b.height }

// Names returns the column names in declaration order.
func (b *Batch) Names() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Has reports whether the batch has a column with this name.
func (b *Batch) Has(name string) bool {
	_, ok := b.cols[name]
	return ok
}

// Column returns the named column, or nil if absent.
func (b *Batch) Column(name string) *Column { return b.cols[name] }

// WithColumn returns a new batch with `name` set to this column (replacing
// any existing column of the same name), sharing all other columns by
// reference.
func (b *Batch) WithColumn(col *Column) (*Batch, error) {
	if len(col.Values) != b.height {
		return nil, fmt.Errorf("column %q has height %d, expected %d", col.Name, len(col.Values), b.height)
	}
	nb := b.shallowClone()
	if _, exists := nb.cols[col.Name]; !exists {
		nb.order = append(nb.order, col.Name)
	}
	nb.cols[col.Name] = col
	return nb, nil
}

// Project returns a new batch containing exactly these columns, in this
// order. Unknown names are a caller error (UnknownVariable-class errors are
// raised by callers, not here).
func (b *Batch) Project(names []string) (*Batch, error) {
	nb := &Batch{cols: map[string]*Column{}, height: b.height}
	for _, n := range names {
		c, ok := b.cols[n]
		if !ok {
			return nil, fmt.Errorf("project: unknown column %q", n)
		}
		nb.order = append(nb.order, n)
		nb.cols[n] = c
	}
	return nb, nil
}

// Drop returns a new batch without the named columns.
func (b *Batch) Drop(names ...string) *Batch {
	drop := map[string]bool{}
	for _, n := range names {
		drop[n] = true
	}
	nb := &Batch{cols: map[string]*Column{}, height: b.height}
	for _, n := range b.order {
		if drop[n] {
			continue
		}
		nb.order = append(nb.order, n)
		nb.cols[n] = b.cols[n]
	}
	return nb
}

// Rename returns a new batch with columns renamed per the mapping
// (old name -> new name); columns not mentioned keep their name.
func (b *Batch) Rename(mapping map[string]string) *Batch {
	nb := &Batch{cols: map[string]*Column{}, height: b.height}
	for _, n := range b.order {
		newName := n
		if rn, ok := mapping[n]; ok {
			newName = rn
		}
		c := b.cols[n]
		nb.order = append(nb.order, newName)
		nb.cols[newName] = &Column{Name: newName, Type: c.Type, Values: c.Values}
	}
	return nb
}

// Filter returns a new batch containing only rows where mask[i] is true.
func (b *Batch) Filter(mask []bool) (*Batch, error) {
	if len(mask) != b.height {
		return nil, fmt.Errorf("filter: mask length %d, expected %d", len(mask), b.height)
	}
	keep := 0
	for _, m := range mask {
		if m {
			keep++
		}
	}
	nb := &Batch{cols: map[string]*Column{}, height: keep}
	for _, n := range b.order {
		src := b.cols[n].Values
		vals := make([]any, 0, keep)
		for i, m := range mask {
			if m {
				vals = append(vals, src[i])
			}
		}
		nb.order = append(nb.order, n)
		nb.cols[n] = &Column{Name: n, Type: b.cols[n].Type, Values: vals}
	}
	return nb, nil
}

// Slice returns rows [offset, offset+length) (length<0 means to the end).
func (b *Batch) Slice(offset int, length int) *Batch {
	if offset > b.height {
		offset = b.height
	}
	end := b.height
	if length >= 0 && offset+length < end {
		end = offset + length
	}
	mask := make([]bool, b.height)
	for i := offset; i < end; i++ {
		mask[i] = true
	}
	nb, _ := b.Filter(mask)
	return nb
}

func (b *Batch) shallowClone() *Batch {
	nb := &Batch{cols: map[string]*Column{}, height: b.height}
	nb.order = append(nb.order, b.order...)
	for k, v := range b.cols {
		nb.cols[k] = v
	}
	return nb
}

// Clone returns a batch sharing all column slices (zero-copy).
func (b *Batch) Clone() *Batch { return b.shallowClone() }

// Take returns a new batch with rows reordered (and optionally repeated or
// dropped) according to indices, for use by a sort or explicit row selection.
func (b *Batch) Take(indices []int) *Batch {
	nb := &Batch{cols: map[string]*Column{}, height: len(indices)}
	for _, n := range b.order {
		src := b.cols[n].Values
		vals := make([]any, len(indices))
		for i, idx := range indices {
			vals[i] = src[idx]
		}
		nb.order = append(nb.order, n)
		nb.cols[n] = &Column{Name: n, Type: b.cols[n].Type, Values: vals}
	}
	return nb
}

// Row returns the values of row i across the given column names, in order.
func (b *Batch) Row(i int, names []string) []any {
	out := make([]any, len(names))
	for j, n := range names {
		out[j] = b.cols[n].Values[i]
	}
	return out
}

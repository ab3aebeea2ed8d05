// Package sparql evaluates a restricted algebra subset (BGP, Join, LeftJoin,
// Union, Filter, Extend, Project, OrderBy, Distinct, Slice, Group, Minus)
// over the triple store's buckets, and materializes CONSTRUCT results back
// into the store.
package sparql

import (
	"strconv"
	"strings"
)

// Context is an ordered path of labeled entries identifying an algebra node
// during evaluation: used to name intermediate boolean/sort columns so they
// never collide with a bound variable, and as the identifier string in
// error messages.
type Context struct {
	path []string
}

// RootContext is the empty context at the top of a query.
func RootContext() Context { return Context{} }

// Push extends the context with one more labeled entry.
func (c Context) Push(label string) Context {
	next := make([]string, len(c.path)+1)
	copy(next, c.path)
	next[len(c.path)] = label
	return Context{path: next}
}

// PushIndexed extends the context with a labeled, indexed entry (e.g. the
// i-th triple pattern of a BGP, the i-th ordering key).
func (c Context) PushIndexed(label string, i int) Context {
	return c.Push(label + "#" + strconv.Itoa(i))
}

// Equal reports whether two contexts have identical paths.
func (c Context) Equal(other Context) bool {
	return c.String() == other.String()
}

// String renders the context path for use as a column name or error
// identifier; it is prefixed to guarantee it can never collide with a
// SPARQL variable name, which cannot contain '#'.
func (c Context) String() string {
	return "__ctx#" + strings.Join(c.path, "/")
}

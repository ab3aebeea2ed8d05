package column

import (
	"testing"

	"github.com/oxhq/stottr/internal/rdf"
	"github.com/stretchr/testify/require"
)

func mustBatch(t *testing.T, cols ...*Column) *Batch {
	t.Helper()
	b, err := FromColumns(cols...)
	require.NoError(t, err)
	return b
}

func TestProjectAndRename(t *testing.T) {
	b := mustBatch(t,
		&Column{Name: "s", Type: rdf.TypeIRI, Values: []any{"a", "b"}},
		&Column{Name: "o", Type: rdf.TypeIRI, Values: []any{"x", "y"}},
	)

	proj, err := b.Project([]string{"o"})
	require.NoError(t, err)
	require.Equal(t, []string{"o"}, proj.Names())
	require.Equal(t, 2, proj.Height())

	renamed := b.Rename(map[string]string{"s": "subject"})
	require.True(t, renamed.Has("subject"))
	require.False(t, renamed.Has("s"))
	require.Equal(t, []any{"a", "b"}, renamed.Column("subject").Values)
}

func TestFilterAndUnique(t *testing.T) {
	b := mustBatch(t,
		&Column{Name: "s", Type: rdf.TypeIRI, Values: []any{"a", "a", "b"}},
		&Column{Name: "o", Type: rdf.TypeIRI, Values: []any{"x", "x", "y"}},
	)

	filtered, err := b.Filter([]bool{true, false, true})
	require.NoError(t, err)
	require.Equal(t, 2, filtered.Height())
	require.Equal(t, []any{"a", "b"}, filtered.Column("s").Values)

	uniq := Unique(b, nil)
	require.Equal(t, 2, uniq.Height())
}

func TestConcatPadsMissingColumns(t *testing.T) {
	a := mustBatch(t, &Column{Name: "s", Type: rdf.TypeIRI, Values: []any{"a"}})
	b := mustBatch(t,
		&Column{Name: "s", Type: rdf.TypeIRI, Values: []any{"b"}},
		&Column{Name: "o", Type: rdf.TypeIRI, Values: []any{"y"}},
	)

	out := Concat(a, b)
	require.Equal(t, 2, out.Height())
	require.ElementsMatch(t, []string{"s", "o"}, out.Names())
	require.Equal(t, []any{"a", "b"}, out.Column("s").Values)
	require.Equal(t, []any{nil, "y"}, out.Column("o").Values)
}

func TestExplodeCrossEquivalesZipOnSingleColumn(t *testing.T) {
	// Invariant 4: Cross over a single list column equals ZipMin equals ZipMax.
	b := mustBatch(t,
		&Column{Name: "s", Type: rdf.TypeIRI, Values: []any{"a"}},
		&Column{Name: "o", Type: rdf.TypeIRI, Values: []any{[]any{"x", "y", "z"}}},
	)

	cross, err := ExplodeCross(b, []string{"o"})
	require.NoError(t, err)
	zipMin, err := ExplodeZip(b, []string{"o"}, true)
	require.NoError(t, err)
	zipMax, err := ExplodeZip(b, []string{"o"}, false)
	require.NoError(t, err)

	require.Equal(t, 3, cross.Height())
	require.Equal(t, cross.Column("o").Values, zipMin.Column("o").Values)
	require.Equal(t, cross.Column("o").Values, zipMax.Column("o").Values)
}

func TestExplodeZipMinVsZipMax(t *testing.T) {
	b := mustBatch(t,
		&Column{Name: "o1", Type: rdf.TypeIRI, Values: []any{[]any{"x", "y"}}},
		&Column{Name: "o2", Type: rdf.TypeIRI, Values: []any{[]any{"p", "q", "r"}}},
	)

	zipMin, err := ExplodeZip(b, []string{"o1", "o2"}, true)
	require.NoError(t, err)
	require.Equal(t, 2, zipMin.Height())

	zipMax, err := ExplodeZip(b, []string{"o1", "o2"}, false)
	require.NoError(t, err)
	require.Equal(t, 3, zipMax.Height())
	require.Nil(t, zipMax.Column("o1").Values[2])
}

func TestJoinInnerAndCrossFallback(t *testing.T) {
	left := mustBatch(t, &Column{Name: "x", Type: rdf.TypeIRI, Values: []any{"a", "b"}})
	right := mustBatch(t, &Column{Name: "x", Type: rdf.TypeIRI, Values: []any{"a", "c"}})

	inner, err := Join(left, right, JoinInner)
	require.NoError(t, err)
	require.Equal(t, 1, inner.Height())

	noShared := mustBatch(t, &Column{Name: "y", Type: rdf.TypeIRI, Values: []any{"q"}})
	cross, err := Join(left, noShared, JoinInner)
	require.NoError(t, err)
	require.Equal(t, 2, cross.Height())
}

func TestJoinAnti(t *testing.T) {
	left := mustBatch(t, &Column{Name: "x", Type: rdf.TypeIRI, Values: []any{"a", "b"}})
	right := mustBatch(t, &Column{Name: "x", Type: rdf.TypeIRI, Values: []any{"a"}})

	out, err := Join(left, right, JoinAnti)
	require.NoError(t, err)
	require.Equal(t, 1, out.Height())
	require.Equal(t, []any{"b"}, out.Column("x").Values)
}

package store

import (
	"context"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/expand"
	"github.com/oxhq/stottr/internal/rdf"
)

// requireGoldenNTriples fails with a unified diff (rather than a bare
// string mismatch) when the exported N-Triples text drifts from `want`.
func requireGoldenNTriples(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	require.NoError(t, err)
	t.Fatalf("N-Triples export mismatch:\n%s", diff)
}

func iriBatch(t *testing.T, subjects, objects []string) *column.Batch {
	t.Helper()
	subVals := make([]any, len(subjects))
	for i, s := range subjects {
		subVals[i] = s
	}
	objVals := make([]any, len(objects))
	for i, o := range objects {
		objVals[i] = o
	}
	b, err := column.FromColumns(
		&column.Column{Name: "subject", Type: rdf.TypeIRI, Values: subVals},
		&column.Column{Name: "object", Type: rdf.TypeIRI, Values: objVals},
	)
	require.NoError(t, err)
	return b
}

func leafWithPredicate(t *testing.T, predicate string, subjects, objects []string) expand.LeafEmission {
	batch := iriBatch(t, subjects, objects)
	return expand.LeafEmission{
		Batch:           batch,
		ObjectType:      rdf.TypeIRI,
		StaticPredicate: &predicate,
	}
}

func TestAddTriplesVecSingleCallStaysUnique(t *testing.T) {
	s := NewStore("", 2, nil)
	leaf := leafWithPredicate(t, "http://ex/p", []string{"a", "b"}, []string{"x", "y"})

	require.NoError(t, s.AddTriplesVec(context.Background(), []expand.LeafEmission{leaf}, "call-1"))
	require.True(t, s.Deduplicated)

	buckets := s.Buckets()
	require.Len(t, buckets, 1)
	for _, b := range buckets {
		require.True(t, b.Unique)
		require.Equal(t, "call-1", b.CallUUID)
	}
}

func TestDeduplicateMergesCrossCallDuplicates(t *testing.T) {
	s := NewStore("", 2, nil)
	leaf := leafWithPredicate(t, "http://ex/p", []string{"a", "b"}, []string{"x", "y"})

	require.NoError(t, s.AddTriplesVec(context.Background(), []expand.LeafEmission{leaf}, "call-1"))
	require.NoError(t, s.AddTriplesVec(context.Background(), []expand.LeafEmission{leaf}, "call-2"))
	require.False(t, s.Deduplicated)

	require.NoError(t, s.Deduplicate(context.Background()))
	require.True(t, s.Deduplicated)

	buckets := s.Buckets()
	require.Len(t, buckets, 1)
	for _, b := range buckets {
		require.True(t, b.Unique)
		batch, err := s.BucketBatch(b)
		require.NoError(t, err)
		require.Equal(t, 2, batch.Height())
	}
}

func TestPrepareTriplesPartitionsByVerb(t *testing.T) {
	batch, err := column.FromColumns(
		&column.Column{Name: "subject", Type: rdf.TypeIRI, Values: []any{"a", "b"}},
		&column.Column{Name: "verb", Type: rdf.TypeIRI, Values: []any{"http://ex/p", "http://ex/q"}},
		&column.Column{Name: "object", Type: rdf.TypeIRI, Values: []any{"x", "y"}},
	)
	require.NoError(t, err)

	leaf := expand.LeafEmission{Batch: batch, ObjectType: rdf.TypeIRI}
	dfs, err := prepareTriples(leaf)
	require.NoError(t, err)
	require.Len(t, dfs, 2)

	predicates := map[string]bool{}
	for _, df := range dfs {
		predicates[df.Predicate] = true
		require.Equal(t, 1, df.Batch.Height())
	}
	require.True(t, predicates["http://ex/p"])
	require.True(t, predicates["http://ex/q"])
}

func TestWriteNTriplesFormatsLiteralsAndIRIs(t *testing.T) {
	s := NewStore("", 1, nil)
	leaf := leafWithPredicate(t, "http://ex/p", []string{"http://ex/a"}, []string{"http://ex/x"})

	require.NoError(t, s.AddTriplesVec(context.Background(), []expand.LeafEmission{leaf}, "call-1"))

	var buf strings.Builder
	require.NoError(t, s.WriteNTriples(&buf))
	requireGoldenNTriples(t, "<http://ex/a> <http://ex/p> <http://ex/x> .\n", buf.String())
}

func TestSanitizePredicateReplacesNonIdentChars(t *testing.T) {
	require.Equal(t, "http___ex_p", sanitizePredicate("http://ex#p"))
}

package store

import (
	"regexp"

	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/expand"
	"github.com/oxhq/stottr/internal/rdf"
)

// TripleDF is one leaf emission's contribution to a single bucket: a
// two-or-three column batch (subject, object[, language_tag]) destined for
// exactly one (predicate, object_type) bucket.
type TripleDF struct {
	Batch      *column.Batch
	Predicate  string
	ObjectType rdf.NodeType
}

// prepareTriples splits a leaf emission into one TripleDF per distinct
// predicate, drops null/non_blank-violating rows, applies a first-wins
// unique pass unless the leaf already carries a unique subset, and appends
// a language_tag column for string-literal objects.
func prepareTriples(leaf expand.LeafEmission) ([]TripleDF, error) {
	batch := leaf.Batch
	if len(leaf.NonBlankViolationMask) == batch.Height() {
		keep := make([]bool, batch.Height())
		dropped := false
		for i, violated := range leaf.NonBlankViolationMask {
			keep[i] = !violated
			if violated {
				dropped = true
			}
		}
		if dropped {
			var err error
			batch, err = batch.Filter(keep)
			if err != nil {
				return nil, err
			}
		}
	}

	var groups []TripleDF
	if leaf.StaticPredicate != nil {
		projected, err := batch.Project([]string{"subject", "object"})
		if err != nil {
			return nil, err
		}
		groups = append(groups, TripleDF{Batch: projected, Predicate: *leaf.StaticPredicate, ObjectType: leaf.ObjectType})
	} else {
		groups = partitionByVerb(batch, leaf.ObjectType)
	}

	var out []TripleDF
	for _, g := range groups {
		g = PrepareGroup(g, leaf.HasUniqueSubset)
		if leaf.ObjectType.IsStringLiteral() {
			g.Batch = withLanguageTag(g.Batch, leaf.LanguageTag)
		}
		out = append(out, g)
	}
	return out, nil
}

// PrepareGroup finalizes one TripleDF just before store absorption: it drops
// rows with a null subject or object, and deduplicates unless the caller
// already guarantees uniqueness (an expansion leaf with a unique parameter
// subset, or a caller that has already deduplicated by construction).
// Shared by expansion's prepareTriples and the SPARQL CONSTRUCT-as-update
// path, which both funnel freshly built triple batches through the same
// pre-absorption pass.
func PrepareGroup(df TripleDF, alreadyUnique bool) TripleDF {
	df.Batch = dropNullRows(df.Batch)
	if !alreadyUnique {
		df.Batch = column.Unique(df.Batch, nil)
	}
	return df
}

// partitionByVerb groups rows by their dynamic `verb` column value,
// preserving first-seen order, and projects each group to {subject,object}.
func partitionByVerb(batch *column.Batch, objType rdf.NodeType) []TripleDF {
	verb := batch.Column("verb")
	if verb == nil {
		return nil
	}
	order := []string{}
	indices := map[string][]int{}
	for i, v := range verb.Values {
		key, _ := v.(string)
		if _, seen := indices[key]; !seen {
			order = append(order, key)
		}
		indices[key] = append(indices[key], i)
	}

	subject := batch.Column("subject")
	object := batch.Column("object")

	var out []TripleDF
	for _, predicate := range order {
		rows := indices[predicate]
		subVals := make([]any, len(rows))
		objVals := make([]any, len(rows))
		for i, r := range rows {
			subVals[i] = subject.Values[r]
			objVals[i] = object.Values[r]
		}
		b, _ := column.FromColumns(
			&column.Column{Name: "subject", Type: subject.Type, Values: subVals},
			&column.Column{Name: "object", Type: object.Type, Values: objVals},
		)
		out = append(out, TripleDF{Batch: b, Predicate: predicate, ObjectType: objType})
	}
	return out
}

func dropNullRows(b *column.Batch) *column.Batch {
	subject := b.Column("subject")
	object := b.Column("object")
	mask := make([]bool, b.Height())
	for i := range mask {
		mask[i] = subject.Values[i] != nil && object.Values[i] != nil
	}
	out, _ := b.Filter(mask)
	return out
}

func withLanguageTag(b *column.Batch, tag *string) *column.Batch {
	vals := make([]any, b.Height())
	var cell any
	if tag != nil {
		cell = *tag
	}
	for i := range vals {
		vals[i] = cell
	}
	col := &column.Column{Name: "language_tag", Type: rdf.Literal(rdf.XSDString), Values: vals}
	out, _ := b.WithColumn(col)
	return out
}

var nonIdentChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// sanitizePredicate replaces characters outside [A-Za-z0-9_-] with '_', for
// use in spill and export file names.
func sanitizePredicate(iri string) string {
	return nonIdentChars.ReplaceAllString(iri, "_")
}

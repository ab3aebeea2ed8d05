package store

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/rdf"
)

const ntriplesBatchSize = 1024

// WriteNTriples serializes every bucket's rows as N-Triples, batching
// writes at ntriplesBatchSize rows to bound memory on large buckets.
func (s *Store) WriteNTriples(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, b := range s.Buckets() {
		batch, err := s.BucketBatch(b)
		if err != nil {
			return err
		}
		subject := batch.Column("subject")
		object := batch.Column("object")
		lang := batch.Column("language_tag")
		if subject == nil || object == nil {
			continue
		}

		for i := 0; i < batch.Height(); i++ {
			subjNT, err := formatNodeNTriples(subject.Values[i], subject.Type, nil, 0)
			if err != nil {
				return err
			}
			objNT, err := formatNodeNTriples(object.Values[i], b.Key.ObjectType, lang, i)
			if err != nil {
				return err
			}
			line := rdf.FormatTriple(subjNT, b.Key.Predicate, objNT) + "\n"
			if _, err := bw.WriteString(line); err != nil {
				return err
			}
			if i%ntriplesBatchSize == ntriplesBatchSize-1 {
				if err := bw.Flush(); err != nil {
					return err
				}
			}
		}
	}
	return bw.Flush()
}

// formatNodeNTriples renders a single term (subject or object) to its
// N-Triples surface form given its RDFNodeType. `lang` is nil for subjects,
// which are never literals.
func formatNodeNTriples(v any, nodeType rdf.NodeType, lang *column.Column, row int) (string, error) {
	switch nodeType.Kind {
	case rdf.KindIRI:
		return rdf.FormatIRI(fmt.Sprint(v)), nil
	case rdf.KindBlankNode:
		return rdf.FormatBlankNode(fmt.Sprint(v)), nil
	case rdf.KindLiteral:
		var langTag *string
		if lang != nil && row < len(lang.Values) {
			if s, ok := lang.Values[row].(string); ok && s != "" {
				langTag = &s
			}
		}
		return rdf.FormatLiteral(fmt.Sprint(v), nodeType.Datatype, langTag), nil
	default:
		return "", fmt.Errorf("store: cannot serialize term of type %s", nodeType)
	}
}

// WriteParquet exports every bucket to its own file under outDir, named
// {sanitized_predicate}_{object_type_tag}.parquet.
func (s *Store) WriteParquet(outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("store: create export dir %s: %w", outDir, err)
	}
	for _, b := range s.Buckets() {
		batch, err := s.BucketBatch(b)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("%s_%s.parquet", sanitizePredicate(b.Key.Predicate), b.Key.ObjectType.Tag())
		path := filepath.Join(outDir, name)
		if err := writeParquetFile(path, batch, b.Key.ObjectType, b.HasLang); err != nil {
			return err
		}
	}
	return nil
}

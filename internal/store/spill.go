package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/rdf"
)

// spillSchema builds the on-disk schema for a bucket: {subject: utf8,
// object: <physical of object_type>, language_tag?: utf8 nullable}.
func spillSchema(objType rdf.NodeType, hasLang bool) *parquet.Schema {
	fields := parquet.Group{
		"subject": parquet.String(),
		"object":  objectNode(objType),
	}
	if hasLang {
		fields["language_tag"] = parquet.Optional(parquet.String())
	}
	return parquet.NewSchema("triple", fields)
}

func objectNode(t rdf.NodeType) parquet.Node {
	if t.Kind != rdf.KindLiteral {
		return parquet.String()
	}
	switch t.Datatype {
	case rdf.XSDInteger:
		return parquet.Int(64)
	case rdf.XSDDouble:
		return parquet.Leaf(parquet.DoubleType)
	case rdf.XSDBoolean:
		return parquet.Leaf(parquet.BooleanType)
	case rdf.XSDDateTime:
		return parquet.Timestamp(parquet.Millisecond)
	default:
		return parquet.String()
	}
}

// writeSpillFile writes `batch` ({subject,object[,language_tag]}) to a new
// file under folder named `{sanitizedPredicate}_{uuid}.parquet` and returns
// its path.
func writeSpillFile(folder, sanitizedPredicate string, batch *column.Batch, objType rdf.NodeType, hasLang bool) (string, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("store: create spill folder %s: %w", folder, err)
	}
	path := filepath.Join(folder, fmt.Sprintf("%s_%s.parquet", sanitizedPredicate, uuid.NewString()))
	if err := writeParquetFile(path, batch, objType, hasLang); err != nil {
		return "", err
	}
	return path, nil
}

func writeParquetFile(path string, batch *column.Batch, objType rdf.NodeType, hasLang bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: open spill file %s: %w", path, err)
	}
	defer f.Close()

	w := parquet.NewWriter(f, spillSchema(objType, hasLang))
	subject := batch.Column("subject")
	object := batch.Column("object")
	lang := batch.Column("language_tag")

	for i := 0; i < batch.Height(); i++ {
		row := map[string]any{
			"subject": subject.Values[i],
			"object":  object.Values[i],
		}
		if hasLang {
			var v any
			if lang != nil {
				v = lang.Values[i]
			}
			row["language_tag"] = v
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("store: write row to %s: %w", path, err)
		}
	}
	return w.Close()
}

// readSpillFile reads a bucket spill file back into a batch with columns
// {subject, object[, language_tag]}.
func readSpillFile(path string, objType rdf.NodeType, hasLang bool) (*column.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: open spill file %s: %w", path, err)
	}
	defer f.Close()

	r := parquet.NewReader(f, spillSchema(objType, hasLang))
	var subjectVals, objectVals, langVals []any
	for {
		row := map[string]any{}
		if err := r.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("store: read row from %s: %w", path, err)
		}
		subjectVals = append(subjectVals, row["subject"])
		objectVals = append(objectVals, row["object"])
		if hasLang {
			langVals = append(langVals, row["language_tag"])
		}
	}
	if err := r.Close(); err != nil {
		return nil, err
	}

	cols := []*column.Column{
		{Name: "subject", Type: rdf.TypeIRI, Values: subjectVals},
		{Name: "object", Type: objType, Values: objectVals},
	}
	if hasLang {
		cols = append(cols, &column.Column{Name: "language_tag", Type: rdf.Literal(rdf.XSDString), Values: langVals})
	}
	return column.FromColumns(cols...)
}

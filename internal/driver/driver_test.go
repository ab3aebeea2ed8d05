package driver

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/stottr/internal/catalog"
	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/store"
	"github.com/oxhq/stottr/internal/template"
	"github.com/oxhq/stottr/internal/validate"
)

func personDataset(t *testing.T) template.Dataset {
	t.Helper()
	tmpl, err := template.NewDefaultTemplate([]string{"id", "name", "age"}, "id", nil, template.DefaultTemplateOptions{})
	require.NoError(t, err)
	return template.Dataset{Templates: []template.Template{tmpl}}
}

func personBatch(t *testing.T, n int) *column.Batch {
	t.Helper()
	ids := make([]any, n)
	names := make([]any, n)
	ages := make([]any, n)
	for i := 0; i < n; i++ {
		ids[i] = "http://example.net/person/1"
		names[i] = "Alice"
		ages[i] = int64(30)
	}
	b, err := column.FromColumns(
		&column.Column{Name: "id", Values: ids},
		&column.Column{Name: "name", Values: names},
		&column.Column{Name: "age", Values: ages},
	)
	require.NoError(t, err)
	return b
}

func TestRunMintsCallUUIDAndAbsorbsTriples(t *testing.T) {
	dataset := personDataset(t)
	batch := personBatch(t, 3)
	st := store.NewStore("", 2, logrus.New())
	d := New(st, nil, 2, logrus.New())

	opts := validate.Options{IRIColumns: map[string]bool{"id": true}}
	callUUID, err := d.Run(context.Background(), dataset, dataset.Templates[0].Signature.TemplateName, batch, opts)
	require.NoError(t, err)
	require.NotEmpty(t, callUUID)
	require.NotEmpty(t, st.Buckets())
}

func TestRunRecordsCatalogEntries(t *testing.T) {
	dataset := personDataset(t)
	batch := personBatch(t, 2)
	st := store.NewStore("", 2, logrus.New())
	cat, err := catalog.Connect(":memory:", false)
	require.NoError(t, err)
	defer cat.Close()

	d := New(st, cat, 2, logrus.New())
	opts := validate.Options{IRIColumns: map[string]bool{"id": true}}
	callUUID, err := d.Run(context.Background(), dataset, dataset.Templates[0].Signature.TemplateName, batch, opts)
	require.NoError(t, err)

	buckets, err := cat.BucketsForCall(callUUID)
	require.NoError(t, err)
	require.NotEmpty(t, buckets)

	calls, err := cat.CallsForTemplate(dataset.Templates[0].Signature.TemplateName)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	require.Equal(t, int64(2), calls[0].RowCount)
}

func TestSplitChunksReturnsOneChunkWithoutSpillFolder(t *testing.T) {
	st := store.NewStore("", 1, logrus.New())
	d := New(st, nil, 1, logrus.New())
	batch := personBatch(t, 100)
	chunks := d.splitChunks(batch)
	require.Len(t, chunks, 1)
}

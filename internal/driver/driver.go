// Package driver is the "Glue (driver, ids)" component: it mints call UUIDs,
// slices a top-level input table into ≤50 MB chunks when the store spills to
// disk, and records each call and its bucket contributions in the catalog.
package driver

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oxhq/stottr/internal/catalog"
	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/expand"
	"github.com/oxhq/stottr/internal/store"
	"github.com/oxhq/stottr/internal/template"
	"github.com/oxhq/stottr/internal/validate"
)

// Driver ties expansion, chunking, store absorption, and catalog bookkeeping
// together for one top-level expand() call.
type Driver struct {
	Store      *store.Store
	Catalog    *catalog.Catalog // nil disables catalog recording
	MaxWorkers int
	Log        *logrus.Logger
}

// New builds a Driver. cat may be nil to skip catalog recording.
func New(st *store.Store, cat *catalog.Catalog, maxWorkers int, log *logrus.Logger) *Driver {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Driver{Store: st, Catalog: cat, MaxWorkers: maxWorkers, Log: log}
}

// bytesPerRow estimates a table row's footprint with a fixed heuristic, like
// the store's spill-shard estimate: 32 bytes of per-row overhead plus 24 bytes
// per column, since the driver only sees the raw input table, not yet-typed
// triples.
func bytesPerRow(batch *column.Batch) int {
	return 32 + 24*len(batch.Names())
}

// chunkRows picks a row count per chunk whose estimated footprint stays
// under store.MaxSpillFileBytes.
func chunkRows(batch *column.Batch) int {
	rows := store.MaxSpillFileBytes / bytesPerRow(batch)
	if rows < 1 {
		rows = 1
	}
	return rows
}

// Run expands batch against templateName in dataset, chunking the input when
// the store spills to disk, and absorbs every chunk's leaves under one
// freshly minted call_uuid. It returns that call_uuid.
func (d *Driver) Run(ctx context.Context, dataset template.Dataset, templateName string, batch *column.Batch, opts validate.Options) (string, error) {
	callUUID := uuid.NewString()

	if d.Catalog != nil {
		if err := d.Catalog.RecordCall(&catalog.CallRecord{CallUUID: callUUID, TemplateName: templateName}); err != nil {
			d.Log.WithError(err).Warn("driver: failed to record call start")
		}
	}

	var totalRows int64
	chunkCount := 0

	runErr := func() error {
		chunks := d.splitChunks(batch)
		chunkCount = len(chunks)
		d.Log.WithFields(logrus.Fields{
			"call_uuid": callUUID,
			"template":  templateName,
			"chunks":    chunkCount,
		}).Debug("driver: expanding input")

		for _, chunk := range chunks {
			leaves, err := expand.Expand(ctx, dataset, templateName, chunk, opts, d.MaxWorkers)
			if err != nil {
				return fmt.Errorf("driver: expand chunk: %w", err)
			}
			if err := d.Store.AddTriplesVec(ctx, leaves, callUUID); err != nil {
				return fmt.Errorf("driver: absorb chunk: %w", err)
			}
			totalRows += int64(chunk.Height())
			if d.Catalog != nil {
				d.recordBuckets(leaves, callUUID)
			}
		}
		return nil
	}()

	if d.Catalog != nil {
		if err := d.Catalog.FinishCall(callUUID, totalRows, chunkCount, runErr); err != nil {
			d.Log.WithError(err).Warn("driver: failed to record call completion")
		}
	}

	return callUUID, runErr
}

// splitChunks slices batch into bounded-size chunks: one chunk when the
// store keeps everything in memory, otherwise ≤50 MB estimated chunks.
func (d *Driver) splitChunks(batch *column.Batch) []*column.Batch {
	if !d.Store.Spilling() || batch.Height() == 0 {
		return []*column.Batch{batch}
	}
	rows := chunkRows(batch)
	var chunks []*column.Batch
	for offset := 0; offset < batch.Height(); offset += rows {
		chunks = append(chunks, batch.Slice(offset, rows))
	}
	return chunks
}

func (d *Driver) recordBuckets(leaves []expand.LeafEmission, callUUID string) {
	for _, leaf := range leaves {
		predicate := "?"
		if leaf.StaticPredicate != nil {
			predicate = *leaf.StaticPredicate
		}
		m := &catalog.BucketManifest{
			CallUUID:   callUUID,
			Predicate:  predicate,
			ObjectType: leaf.ObjectType.String(),
			RowCount:   int64(leaf.Batch.Height()),
		}
		if err := d.Catalog.RecordBucket(m); err != nil {
			d.Log.WithError(err).Warn("driver: failed to record bucket manifest")
		}
	}
}

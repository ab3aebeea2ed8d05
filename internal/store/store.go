// Package store implements the columnar triple store: buckets keyed by
// (predicate, object RDF type), in-memory or on-disk (spill) batch
// representation, lazy deduplication tracked via call_uuid, and N-Triples
// and Parquet export.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/errs"
	"github.com/oxhq/stottr/internal/expand"
	"github.com/oxhq/stottr/internal/rdf"
)

// MaxSpillFileBytes bounds the size of a single spill shard (spec: ≤50 MB).
const MaxSpillFileBytes = 50 * 1024 * 1024

// Bucket is one (predicate, object_type) entry. It holds either in-memory
// batches or on-disk file paths, never both — the mode is fixed for the
// bucket's whole lifetime by whether the owning Store has a spill folder.
type Bucket struct {
	Key      rdf.BucketKey
	Batches  []*column.Batch
	Paths    []string
	Unique   bool
	CallUUID string
	HasLang  bool
}

// Store is the columnar triple store.
type Store struct {
	mu           sync.Mutex
	buckets      map[rdf.BucketKey]*Bucket
	spillFolder  string // "" means in-memory mode
	Deduplicated bool
	Workers      int
	Log          *logrus.Logger
}

// NewStore builds a Store. spillFolder == "" keeps every bucket in memory;
// otherwise every bucket spills its batches to Parquet files under it.
func NewStore(spillFolder string, workers int, log *logrus.Logger) *Store {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		buckets:      map[rdf.BucketKey]*Bucket{},
		spillFolder:  spillFolder,
		Deduplicated: true,
		Workers:      workers,
		Log:          log,
	}
}

func (s *Store) spilling() bool { return s.spillFolder != "" }

// Spilling reports whether this store is configured with a spill folder,
// for callers (the expansion driver's chunking decision) that need to know
// without reaching into store internals.
func (s *Store) Spilling() bool { return s.spilling() }

// AddTriplesVec absorbs a batch of leaf emissions from one expansion call,
// tagging every resulting bucket contribution with callUUID.
func (s *Store) AddTriplesVec(ctx context.Context, leaves []expand.LeafEmission, callUUID string) error {
	type prepared struct {
		dfs []TripleDF
	}
	results := make([]prepared, len(leaves))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, s.Workers)
	for i, leaf := range leaves {
		i, leaf := i, leaf
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			dfs, err := prepareTriples(leaf)
			if err != nil {
				return err
			}
			results[i] = prepared{dfs: dfs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range results {
		for _, df := range r.dfs {
			if err := s.routeLocked(df, callUUID); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddTripleBatches absorbs already-built triple batches — e.g. a SPARQL
// CONSTRUCT's materialized output — tagging them with callUUID the same way
// AddTriplesVec does for expansion leaves. Unlike AddTriplesVec there is no
// parallel prepare phase: the caller has already done any filtering/dedup it
// needs.
func (s *Store) AddTripleBatches(dfs []TripleDF, callUUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, df := range dfs {
		if err := s.routeLocked(df, callUUID); err != nil {
			return err
		}
	}
	return nil
}

// routeLocked installs one TripleDF into its bucket. Caller holds s.mu.
func (s *Store) routeLocked(df TripleDF, callUUID string) error {
	key := rdf.BucketKey{Predicate: df.Predicate, ObjectType: df.ObjectType}
	b, ok := s.buckets[key]
	if !ok {
		b = &Bucket{Key: key, Unique: true, CallUUID: callUUID, HasLang: df.ObjectType.IsStringLiteral()}
		s.buckets[key] = b
	}

	if s.spilling() {
		path, err := writeSpillFile(s.spillFolder, sanitizePredicate(df.Predicate), df.Batch, df.ObjectType, b.HasLang)
		if err != nil {
			return err
		}
		b.Paths = append(b.Paths, path)
	} else {
		b.Batches = append(b.Batches, df.Batch)
	}

	if callUUID != b.CallUUID {
		b.Unique = false
		s.Deduplicated = false
	}
	return nil
}

// Deduplicate rewrites every non-unique bucket in place so its contents are
// duplicate-free, and is idempotent: a store already fully deduplicated
// returns immediately.
func (s *Store) Deduplicate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Deduplicated {
		return nil
	}

	keys := make([]rdf.BucketKey, 0, len(s.buckets))
	for k, b := range s.buckets {
		if !b.Unique {
			keys = append(keys, k)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, s.Workers)
	for _, k := range keys {
		k := k
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			return s.dedupBucket(s.buckets[k])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.Deduplicated = true
	s.Log.WithField("buckets", len(keys)).Debug("store: deduplication pass complete")
	return nil
}

func (s *Store) dedupBucket(b *Bucket) error {
	if s.spilling() {
		return s.dedupSpillBucket(b)
	}
	return s.dedupMemoryBucket(b)
}

func (s *Store) dedupMemoryBucket(b *Bucket) error {
	merged := column.Concat(b.Batches...)
	if obj := merged.Column("object"); obj != nil {
		widened, err := column.WidenNumeric(obj)
		if err != nil {
			return err
		}
		merged, err = merged.WithColumn(widened)
		if err != nil {
			return err
		}
	}
	b.Batches = []*column.Batch{column.Unique(merged, nil)}
	b.Unique = true
	return nil
}

func (s *Store) dedupSpillBucket(b *Bucket) error {
	batches := make([]*column.Batch, len(b.Paths))
	for i, p := range b.Paths {
		batch, err := readSpillFile(p, b.Key.ObjectType, b.HasLang)
		if err != nil {
			return err
		}
		batches[i] = batch
	}
	merged := column.Concat(batches...)
	if obj := merged.Column("object"); obj != nil {
		widened, err := column.WidenNumeric(obj)
		if err != nil {
			return err
		}
		merged, err = merged.WithColumn(widened)
		if err != nil {
			return err
		}
	}
	deduped := column.Unique(merged, nil)

	oldPaths := b.Paths
	newPaths, err := reshardToFiles(s.spillFolder, sanitizePredicate(b.Key.Predicate), deduped, b.Key.ObjectType, b.HasLang)
	if err != nil {
		return err
	}
	for _, p := range oldPaths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return &errs.RemoveSpillFileError{Path: p, Err: err}
		}
	}
	b.Paths = newPaths
	b.Unique = true
	return nil
}

// reshardToFiles splits `batch` into files of at most MaxSpillFileBytes
// (estimated), one freshly minted UUID per file.
func reshardToFiles(folder, sanitizedPredicate string, batch *column.Batch, objType rdf.NodeType, hasLang bool) ([]string, error) {
	if batch.Height() == 0 {
		path, err := writeSpillFile(folder, sanitizedPredicate, batch, objType, hasLang)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	rowsPerShard := estimateRowsPerShard(batch)
	var paths []string
	for offset := 0; offset < batch.Height(); offset += rowsPerShard {
		shard := batch.Slice(offset, rowsPerShard)
		path, err := writeSpillFile(folder, sanitizedPredicate, shard, objType, hasLang)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// estimateRowsPerShard picks a row count whose estimated byte footprint
// stays under MaxSpillFileBytes, assuming ~64 bytes/row for subject+object
// text plus an optional language tag.
func estimateRowsPerShard(batch *column.Batch) int {
	bytesPerRow := 64
	if batch.Has("language_tag") {
		bytesPerRow += 16
	}
	rows := MaxSpillFileBytes / bytesPerRow
	if rows < 1 {
		rows = 1
	}
	return rows
}

// Close removes every spill file this store owns (store destruction per the
// resource model) by globbing the spill folder rather than trusting only
// its own bookkeeping, since a prior crash may have left orphans.
func (s *Store) Close() error {
	if !s.spilling() {
		return nil
	}
	matches, err := doublestar.Glob(os.DirFS(s.spillFolder), "*.parquet")
	if err != nil {
		return fmt.Errorf("store: glob spill folder %s: %w", s.spillFolder, err)
	}
	for _, m := range matches {
		full := filepath.Join(s.spillFolder, m)
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return &errs.RemoveSpillFileError{Path: full, Err: err}
		}
	}
	return nil
}

// Buckets returns a snapshot of the current bucket keys, for query planning.
func (s *Store) Buckets() map[rdf.BucketKey]*Bucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[rdf.BucketKey]*Bucket, len(s.buckets))
	for k, v := range s.buckets {
		out[k] = v
	}
	return out
}

// BucketBatch returns a bucket's full contents concatenated into a single
// batch, regardless of in-memory/spill mode. Callers in the SPARQL
// evaluator use this to read a bucket without caring how it's stored.
func (s *Store) BucketBatch(b *Bucket) (*column.Batch, error) {
	if !s.spilling() {
		return column.Concat(b.Batches...), nil
	}
	batches := make([]*column.Batch, len(b.Paths))
	for i, p := range b.Paths {
		batch, err := readSpillFile(p, b.Key.ObjectType, b.HasLang)
		if err != nil {
			return nil, err
		}
		batches[i] = batch
	}
	return column.Concat(batches...), nil
}

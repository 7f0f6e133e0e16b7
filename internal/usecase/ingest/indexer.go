package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/circulars/internal/domain"
	"github.com/kailas-cloud/circulars/internal/logger"
	"github.com/kailas-cloud/circulars/internal/vectorindex"
)

// IndexReport summarises an index build.
type IndexReport struct {
	Rows     int
	Dim      int
	Duration time.Duration
}

// Indexer embeds all chunks and writes a fresh index bundle. There is no
// incremental mode: every run rebuilds from the current chunk set.
type Indexer struct {
	chunks   ChunkReader
	embedder TextEmbedder
	indexDir string
}

// NewIndexer creates an index build job writing to indexDir.
func NewIndexer(chunks ChunkReader, embedder TextEmbedder, indexDir string) *Indexer {
	return &Indexer{chunks: chunks, embedder: embedder, indexDir: indexDir}
}

// Run builds and saves the bundle. Row i of the index is chunk i in reader order.
func (ix *Indexer) Run(ctx context.Context) (IndexReport, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	chunks, err := ix.chunks.ReadAll()
	if err != nil {
		return IndexReport{}, fmt.Errorf("read chunks: %w", err)
	}
	if len(chunks) == 0 {
		return IndexReport{}, fmt.Errorf("%w: no chunks to index", domain.ErrConfiguration)
	}

	texts := make([]string, len(chunks))
	entries := make([]domain.IndexEntry, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
		entries[i] = c.EntryFor()
	}

	log.Info("Embedding chunks", zap.Int("chunks", len(chunks)))
	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return IndexReport{}, fmt.Errorf("embed chunks: %w", err)
	}

	index, err := vectorindex.Build(vectors)
	if err != nil {
		return IndexReport{}, fmt.Errorf("build index: %w", err)
	}
	bundle, err := vectorindex.NewBundle(index, entries)
	if err != nil {
		return IndexReport{}, fmt.Errorf("bundle index: %w", err)
	}
	if err := vectorindex.SaveBundle(ix.indexDir, bundle); err != nil {
		return IndexReport{}, fmt.Errorf("save bundle: %w", err)
	}

	rep := IndexReport{Rows: index.Len(), Dim: index.Dim(), Duration: time.Since(start)}
	log.Info("Index built",
		zap.Int("rows", rep.Rows),
		zap.Int("dim", rep.Dim),
		zap.String("dir", ix.indexDir),
		zap.Duration("duration", rep.Duration),
	)
	return rep, nil
}

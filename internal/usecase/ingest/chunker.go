// Package ingest turns raw circular texts into chunk files and a vector index bundle.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/circulars/internal/chunker"
	"github.com/kailas-cloud/circulars/internal/logger"
)

// ChunkReport summarises a chunking run.
type ChunkReport struct {
	Documents int
	Skipped   int
	Chunks    int
}

// Chunker splits every source document and writes its chunks.
type Chunker struct {
	splitter *chunker.Splitter
	source   DocumentSource
	sink     ChunkWriter
}

// NewChunker creates a chunking job.
func NewChunker(splitter *chunker.Splitter, source DocumentSource, sink ChunkWriter) *Chunker {
	return &Chunker{splitter: splitter, source: source, sink: sink}
}

// Run chunks all documents. Blank documents are skipped.
func (c *Chunker) Run(ctx context.Context) (ChunkReport, error) {
	log := logger.FromContext(ctx)

	docs, err := c.source.Documents()
	if err != nil {
		return ChunkReport{}, fmt.Errorf("read documents: %w", err)
	}

	var rep ChunkReport
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if strings.TrimSpace(doc.Text) == "" {
			rep.Skipped++
			log.Warn("Skipping empty document", zap.String("doc_id", doc.ID))
			continue
		}

		chunks := c.splitter.Chunk(doc)
		if err := c.sink.WriteDocument(doc.ID, chunks); err != nil {
			return rep, fmt.Errorf("write chunks of %s: %w", doc.ID, err)
		}
		rep.Documents++
		rep.Chunks += len(chunks)
		log.Debug("Chunked document", zap.String("doc_id", doc.ID), zap.Int("chunks", len(chunks)))
	}

	log.Info("Chunking finished",
		zap.Int("documents", rep.Documents),
		zap.Int("skipped", rep.Skipped),
		zap.Int("chunks", rep.Chunks),
	)
	return rep, nil
}

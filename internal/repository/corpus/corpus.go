// Package corpus joins the vector bundle and the chunk text store into the
// read-only view that retrieval works against.
package corpus

import (
	"fmt"

	"github.com/kailas-cloud/circulars/internal/domain"
	"github.com/kailas-cloud/circulars/internal/repository/chunkstore"
	"github.com/kailas-cloud/circulars/internal/vectorindex"
)

// Corpus is immutable after Load and shared by all requests.
type Corpus struct {
	bundle *vectorindex.Bundle
	texts  *chunkstore.Store
}

// New assembles a corpus from already loaded parts.
func New(b *vectorindex.Bundle, texts *chunkstore.Store) *Corpus {
	return &Corpus{bundle: b, texts: texts}
}

// Load reads the index bundle from indexDir and chunk texts from chunksDir.
func Load(indexDir, chunksDir string) (*Corpus, error) {
	b, err := vectorindex.LoadBundle(indexDir)
	if err != nil {
		return nil, fmt.Errorf("load index bundle: %w", err)
	}
	texts, err := chunkstore.Load(chunksDir)
	if err != nil {
		return nil, fmt.Errorf("load chunk texts: %w", err)
	}
	return New(b, texts), nil
}

// Search runs a nearest-neighbor query against the index.
func (c *Corpus) Search(query []float32, k int) ([]domain.Neighbor, error) {
	return c.bundle.Index.Search(query, k)
}

// Entry returns the metadata of an index row.
func (c *Corpus) Entry(row int) (domain.IndexEntry, bool) {
	return c.bundle.Entry(row)
}

// Text returns the text of a chunk.
func (c *Corpus) Text(chunkID string) (string, bool) {
	return c.texts.Text(chunkID)
}

// Len returns the number of indexed rows.
func (c *Corpus) Len() int {
	return c.bundle.Index.Len()
}

// Dim returns the embedding dimension of the index.
func (c *Corpus) Dim() int {
	return c.bundle.Index.Dim()
}

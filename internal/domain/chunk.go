package domain

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Document is one source circular as raw extracted text.
type Document struct {
	ID   string
	Text string
}

// Chunk is an overlapping slice of a document's text, the unit of retrieval.
type Chunk struct {
	ID       string
	DocID    string
	Position int
	Text     string
	Vector   []float32
}

// IndexEntry maps a vector index row to the chunk it was built from.
// The row id itself is the entry's position in the metadata slice.
type IndexEntry struct {
	DocID    string
	ChunkID  string
	Position int
}

// Neighbor is a raw nearest-neighbor hit. Row < 0 means no match.
type Neighbor struct {
	Row      int
	Distance float32
}

// ChunkID derives the stable chunk identifier "{doc_id}_{position}".
func ChunkID(docID string, position int) string {
	return docID + "_" + strconv.Itoa(position)
}

// DocIDFromPath derives a document id from its source file name.
func DocIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// EntryFor returns the index metadata of a chunk.
func (c Chunk) EntryFor() IndexEntry {
	return IndexEntry{DocID: c.DocID, ChunkID: c.ID, Position: c.Position}
}

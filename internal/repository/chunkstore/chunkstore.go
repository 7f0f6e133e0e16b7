// Package chunkstore persists chunk texts as one JSON-lines file per document.
package chunkstore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/kailas-cloud/circulars/internal/domain"
)

const fileExt = ".jsonl"

type chunkDTO struct {
	DocID    string `json:"doc_id"`
	ChunkID  string `json:"chunk_id"`
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// WriteDocument writes all chunks of one document to {dir}/{docID}.jsonl, replacing any previous file.
func WriteDocument(dir, docID string, chunks []domain.Chunk) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chunks dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, docID+fileExt))
	if err != nil {
		return fmt.Errorf("create chunk file: %w", err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, c := range chunks {
		if err := enc.Encode(chunkDTO{DocID: c.DocID, ChunkID: c.ID, Text: c.Text, Position: c.Position}); err != nil {
			_ = f.Close()
			return fmt.Errorf("encode chunk %s: %w", c.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush chunk file: %w", err)
	}
	return f.Close()
}

// ReadAll reads every chunk file in dir. Files are visited in name order and
// chunks keep their order within a file, which fixes the index row order.
func ReadAll(dir string) ([]domain.Chunk, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+fileExt))
	if err != nil {
		return nil, fmt.Errorf("list chunk files: %w", err)
	}
	slices.Sort(files)

	var out []domain.Chunk
	for _, path := range files {
		chunks, err := readFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		out = append(out, chunks...)
	}
	return out, nil
}

func readFile(path string) ([]domain.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var out []domain.Chunk
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var dto chunkDTO
		if err := json.Unmarshal(sc.Bytes(), &dto); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", domain.ErrDataConsistency, line, err)
		}
		out = append(out, domain.Chunk{
			ID:       dto.ChunkID,
			DocID:    dto.DocID,
			Position: dto.Position,
			Text:     dto.Text,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Store maps chunk ids to chunk texts. Read-only after Load.
type Store struct {
	texts map[string]string
}

// Load reads all chunk files in dir into memory.
func Load(dir string) (*Store, error) {
	chunks, err := ReadAll(dir)
	if err != nil {
		return nil, err
	}
	return FromChunks(chunks), nil
}

// FromChunks builds a store from chunks already in memory.
func FromChunks(chunks []domain.Chunk) *Store {
	texts := make(map[string]string, len(chunks))
	for _, c := range chunks {
		texts[c.ID] = c.Text
	}
	return &Store{texts: texts}
}

// Text returns the text of a chunk.
func (s *Store) Text(chunkID string) (string, bool) {
	t, ok := s.texts[chunkID]
	return t, ok
}

// Len returns the number of stored chunks.
func (s *Store) Len() int { return len(s.texts) }

// Dir binds the chunk file functions to one directory.
type Dir string

// WriteDocument writes one document's chunks into the directory.
func (d Dir) WriteDocument(docID string, chunks []domain.Chunk) error {
	return WriteDocument(string(d), docID, chunks)
}

// ReadAll reads every chunk in the directory.
func (d Dir) ReadAll() ([]domain.Chunk, error) {
	return ReadAll(string(d))
}

package vectorindex

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/circulars/internal/domain"
)

const (
	// IndexFile holds the serialized vectors.
	IndexFile = "vectors.idx"
	// MetaFile holds one JSON line of chunk metadata per index row.
	MetaFile = "meta.jsonl"
)

// Bundle pairs an index with its row-aligned chunk metadata. Entries[i] describes row i.
type Bundle struct {
	Index   *Index
	Entries []domain.IndexEntry
}

type entryDTO struct {
	DocID    string `json:"doc_id"`
	ChunkID  string `json:"chunk_id"`
	Position int    `json:"position"`
}

// NewBundle checks that metadata covers every index row exactly once.
func NewBundle(ix *Index, entries []domain.IndexEntry) (*Bundle, error) {
	if ix == nil {
		return nil, fmt.Errorf("%w: nil index", domain.ErrConfiguration)
	}
	if len(entries) != ix.Len() {
		return nil, fmt.Errorf("%w: %d index rows but %d metadata entries",
			domain.ErrDataConsistency, ix.Len(), len(entries))
	}
	return &Bundle{Index: ix, Entries: entries}, nil
}

// Entry returns the metadata of a row.
func (b *Bundle) Entry(row int) (domain.IndexEntry, bool) {
	if row < 0 || row >= len(b.Entries) {
		return domain.IndexEntry{}, false
	}
	return b.Entries[row], true
}

// SaveBundle writes the index and metadata into dir. Each file is written to a
// temporary name and renamed, so readers never see a half-written artifact.
func SaveBundle(dir string, b *Bundle) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	if err := writeAtomic(filepath.Join(dir, IndexFile), func(w *bufio.Writer) error {
		_, err := b.Index.WriteTo(w)
		return err
	}); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	if err := writeAtomic(filepath.Join(dir, MetaFile), func(w *bufio.Writer) error {
		enc := json.NewEncoder(w)
		for _, e := range b.Entries {
			if err := enc.Encode(entryDTO{DocID: e.DocID, ChunkID: e.ChunkID, Position: e.Position}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	return nil
}

// LoadBundle reads a bundle written by SaveBundle. A row count that differs
// between the two files is a data consistency error.
func LoadBundle(dir string) (*Bundle, error) {
	f, err := os.Open(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	ix, err := Read(f)
	_ = f.Close()
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	entries, err := readEntries(filepath.Join(dir, MetaFile))
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}

	return NewBundle(ix, entries)
}

func readEntries(path string) ([]domain.IndexEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var entries []domain.IndexEntry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var dto entryDTO
		if err := json.Unmarshal(sc.Bytes(), &dto); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", domain.ErrDataConsistency, line, err)
		}
		entries = append(entries, domain.IndexEntry{DocID: dto.DocID, ChunkID: dto.ChunkID, Position: dto.Position})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func writeAtomic(path string, fill func(w *bufio.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err = fill(w); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = w.Flush(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Join(err, os.Remove(tmp.Name()))
	}
	return nil
}

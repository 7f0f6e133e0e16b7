// Package textdir reads raw circular texts, one file per document.
package textdir

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/kailas-cloud/circulars/internal/domain"
)

// Dir is a directory of *.txt files. The file name without extension is the document id.
type Dir string

// Documents reads all documents in file name order.
func (d Dir) Documents() ([]domain.Document, error) {
	paths, err := filepath.Glob(filepath.Join(string(d), "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("list texts: %w", err)
	}
	slices.Sort(paths)

	docs := make([]domain.Document, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(p), err)
		}
		docs = append(docs, domain.Document{ID: domain.DocIDFromPath(p), Text: string(raw)})
	}
	return docs, nil
}

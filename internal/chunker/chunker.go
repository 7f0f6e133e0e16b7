// Package chunker splits document text into overlapping fixed-size token windows.
package chunker

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/circulars/internal/domain"
)

// Default window parameters, in whitespace-delimited tokens.
const (
	DefaultMaxTokens = 450
	DefaultOverlap   = 50
)

// Splitter holds validated window parameters.
type Splitter struct {
	maxTokens int
	overlap   int
}

// New validates the window parameters. overlap must be in [0, maxTokens).
func New(maxTokens, overlap int) (*Splitter, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("%w: max_tokens must be positive, got %d", domain.ErrConfiguration, maxTokens)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrConfiguration, overlap)
	}
	if overlap >= maxTokens {
		return nil, fmt.Errorf("%w: overlap (%d) must be less than max_tokens (%d)",
			domain.ErrConfiguration, overlap, maxTokens)
	}
	return &Splitter{maxTokens: maxTokens, overlap: overlap}, nil
}

// Split is a convenience wrapper around New(...).Split.
func Split(text string, maxTokens, overlap int) ([]string, error) {
	s, err := New(maxTokens, overlap)
	if err != nil {
		return nil, err
	}
	return s.Split(text), nil
}

// MaxTokens returns the window size.
func (s *Splitter) MaxTokens() int { return s.maxTokens }

// Overlap returns the number of tokens shared by consecutive windows.
func (s *Splitter) Overlap() int { return s.overlap }

// Split returns the space-joined token windows of text. Window i starts at
// i*(maxTokens-overlap); the last window is the first one reaching the end of text.
// Empty or whitespace-only text yields nil.
func (s *Splitter) Split(text string) []string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	step := s.maxTokens - s.overlap
	chunks := make([]string, 0, len(tokens)/step+1)
	for start := 0; start < len(tokens); start += step {
		end := min(start+s.maxTokens, len(tokens))
		chunks = append(chunks, strings.Join(tokens[start:end], " "))
		if end == len(tokens) {
			break
		}
	}
	return chunks
}

// Chunk splits a document into positioned chunks with derived ids.
func (s *Splitter) Chunk(doc domain.Document) []domain.Chunk {
	texts := s.Split(doc.Text)
	if len(texts) == 0 {
		return nil
	}
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:       domain.ChunkID(doc.ID, i),
			DocID:    doc.ID,
			Position: i,
			Text:     text,
		}
	}
	return chunks
}

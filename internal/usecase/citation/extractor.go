// Package citation attributes answer sentences back to the excerpts they came from.
package citation

import (
	"unicode/utf8"

	"github.com/kailas-cloud/circulars/internal/domain"
)

// DefaultMinSentenceLength excludes short chunk sentences such as "the Act." from matching.
const DefaultMinSentenceLength = 20

// Extractor finds chunk sentences reproduced in an answer.
type Extractor struct {
	matcher   Matcher
	minLength int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMatcher replaces the default substring matcher.
func WithMatcher(m Matcher) Option {
	return func(e *Extractor) {
		if m != nil {
			e.matcher = m
		}
	}
}

// WithMinSentenceLength sets the length a chunk sentence must exceed, in characters.
func WithMinSentenceLength(n int) Option {
	return func(e *Extractor) { e.minLength = n }
}

// New creates an extractor using SubstringMatcher.
func New(opts ...Option) *Extractor {
	e := &Extractor{matcher: SubstringMatcher{}, minLength: DefaultMinSentenceLength}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract returns deduplicated citations in first-seen order: retrieved chunk
// order, then sentence order within the chunk.
func (e *Extractor) Extract(answer string, retrieved []domain.RetrievalResult) []domain.Citation {
	answerSentences := SplitSentences(answer)
	if len(answerSentences) == 0 {
		return nil
	}

	seen := make(map[domain.Citation]struct{})
	var out []domain.Citation

	for _, r := range retrieved {
		for _, cs := range SplitSentences(r.Text) {
			if utf8.RuneCountInString(cs) <= e.minLength {
				continue
			}
			if !e.matchesAny(cs, answerSentences) {
				continue
			}
			c := domain.Citation{Sentence: cs, DocID: r.DocID, ChunkID: r.ChunkID}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func (e *Extractor) matchesAny(chunkSentence string, answerSentences []string) bool {
	for _, as := range answerSentences {
		if e.matcher.Match(chunkSentence, as) {
			return true
		}
	}
	return false
}

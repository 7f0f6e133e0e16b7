package domain

import "strings"

// RetrievalResult is a chunk enriched with its distance from the current query.
type RetrievalResult struct {
	DocID    string
	ChunkID  string
	Position int
	Text     string
	Distance float32
}

// Citation pairs a chunk sentence found in an answer with its source.
type Citation struct {
	Sentence string
	DocID    string
	ChunkID  string
}

func (c Citation) String() string {
	return "- " + c.Sentence + " (Source: " + c.DocID + "/" + c.ChunkID + ")"
}

// Answer is a generated response together with its provenance.
type Answer struct {
	Question  string
	Text      string
	Citations []Citation
	Sources   []RetrievalResult
}

// Render formats the answer followed by its cited sources, if any.
func (a Answer) Render() string {
	if len(a.Citations) == 0 {
		return a.Text
	}
	var b strings.Builder
	b.WriteString(a.Text)
	b.WriteString("\n\n**Cited Sources:**\n")
	for i, c := range a.Citations {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(c.String())
	}
	return b.String()
}

// Package prompt builds the chat message sequence sent to the generator.
// It does no I/O.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/circulars/internal/domain"
)

// DefaultCorpusName labels the excerpts in the instructions.
const DefaultCorpusName = "IRDAI"

// Assembler renders retrieved excerpts, history and the question into turns.
type Assembler struct {
	corpus  string
	system  string
	refusal string
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithCorpusName sets the regulator name used in the instructions and refusal phrase.
func WithCorpusName(name string) Option {
	return func(a *Assembler) {
		if name != "" {
			a.corpus = name
		}
	}
}

// New creates an assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{corpus: DefaultCorpusName}
	for _, o := range opts {
		o(a)
	}
	a.refusal = fmt.Sprintf("I cannot find that in the provided %s circulars", a.corpus)
	a.system = fmt.Sprintf(
		"You are an assistant that answers user questions using only the provided %s circular excerpts.\n"+
			"Be concise. If the excerpt does not contain the answer, say %q instead of hallucinating.\n"+
			"Always include a short citation showing the doc_id and chunk position used.\n"+
			"Use the conversation history to understand follow-up questions.\n",
		a.corpus, a.refusal,
	)
	return a
}

// Refusal returns the phrase the model is told to use when excerpts lack the answer.
func (a *Assembler) Refusal() string { return a.refusal }

// SystemInstruction returns the fixed system turn content.
func (a *Assembler) SystemInstruction() string { return a.system }

// Assemble returns the system turn, then history verbatim, then one user turn
// carrying the excerpts and the question. History is never truncated here.
func (a *Assembler) Assemble(question string, retrieved []domain.RetrievalResult, history []domain.Turn) []domain.Turn {
	turns := make([]domain.Turn, 0, len(history)+2)
	turns = append(turns, domain.Turn{Role: domain.RoleSystem, Content: a.system})
	turns = append(turns, history...)
	turns = append(turns, domain.Turn{Role: domain.RoleUser, Content: a.userTurn(question, retrieved)})
	return turns
}

func (a *Assembler) userTurn(question string, retrieved []domain.RetrievalResult) string {
	parts := make([]string, len(retrieved))
	for i, r := range retrieved {
		parts[i] = FormatExcerpt(i+1, r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are the %s excerpts to use as facts:\n", a.corpus)
	b.WriteString("\n")
	b.WriteString(strings.Join(parts, "\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer concisely and provide the citation(s).")
	return b.String()
}

// FormatExcerpt renders one retrieved chunk with its 1-based label.
func FormatExcerpt(n int, r domain.RetrievalResult) string {
	return fmt.Sprintf("Excerpt %d (source: %s chunk:%s):\n%s\n---", n, r.DocID, r.ChunkID, r.Text)
}

package retrieval

import (
	"context"
	"os"
	"testing"

	"github.com/kailas-cloud/circulars/internal/domain"
	"github.com/kailas-cloud/circulars/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

type mockEmbedder struct {
	vec   []float32
	err   error
	calls []string
}

func (m *mockEmbedder) EmbedOne(_ context.Context, text string) ([]float32, error) {
	m.calls = append(m.calls, text)
	return m.vec, m.err
}

type mockCorpus struct {
	hits    []domain.Neighbor
	err     error
	entries []domain.IndexEntry
	texts   map[string]string
	gotK    int
}

func (m *mockCorpus) Search(_ []float32, k int) ([]domain.Neighbor, error) {
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockCorpus) Entry(row int) (domain.IndexEntry, bool) {
	if row < 0 || row >= len(m.entries) {
		return domain.IndexEntry{}, false
	}
	return m.entries[row], true
}

func (m *mockCorpus) Text(chunkID string) (string, bool) {
	t, ok := m.texts[chunkID]
	return t, ok
}

func newTestCorpus() *mockCorpus {
	return &mockCorpus{
		hits: []domain.Neighbor{{Row: 2, Distance: 0.1}, {Row: 0, Distance: 0.4}, {Row: 1, Distance: 0.9}},
		entries: []domain.IndexEntry{
			{DocID: "circ_a", ChunkID: "circ_a_0", Position: 0},
			{DocID: "circ_a", ChunkID: "circ_a_1", Position: 1},
			{DocID: "circ_b", ChunkID: "circ_b_0", Position: 0},
		},
		texts: map[string]string{
			"circ_a_0": "Grace period for renewal is thirty days.",
			"circ_a_1": "Free look period is fifteen days.",
			"circ_b_0": "Claims must be settled within thirty days.",
		},
	}
}

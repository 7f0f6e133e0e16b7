// Package session stores per-session chat history.
package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/kailas-cloud/circulars/internal/domain"
)

// MaxStoredTurns caps stored history per session; older turns are dropped first.
const MaxStoredTurns = 100

// Memory keeps sessions in process memory and expires them after a period of inactivity.
type Memory struct {
	mu  sync.Mutex
	c   *cache.Cache
	ttl time.Duration
}

// NewMemory creates an in-memory store. ttl <= 0 keeps sessions until deleted.
func NewMemory(ttl time.Duration) *Memory {
	exp, cleanup := ttl, ttl
	if ttl <= 0 {
		exp, cleanup = cache.NoExpiration, 0
	}
	return &Memory{c: cache.New(exp, cleanup), ttl: exp}
}

// History returns a copy of the session's turns, oldest first. Unknown sessions have no history.
func (m *Memory) History(_ context.Context, id string) ([]domain.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.c.Get(id)
	if !ok {
		return nil, nil
	}
	return slices.Clone(v.([]domain.Turn)), nil
}

// Append adds turns to a session and refreshes its expiry.
func (m *Memory) Append(_ context.Context, id string, turns ...domain.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var hist []domain.Turn
	if v, ok := m.c.Get(id); ok {
		hist = v.([]domain.Turn)
	}
	m.c.Set(id, capTurns(append(slices.Clone(hist), turns...)), m.ttl)
	return nil
}

// Delete removes a session.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.c.Delete(id)
	return nil
}

// Len returns the number of live sessions.
func (m *Memory) Len() int {
	return m.c.ItemCount()
}

func capTurns(turns []domain.Turn) []domain.Turn {
	if len(turns) > MaxStoredTurns {
		return turns[len(turns)-MaxStoredTurns:]
	}
	return turns
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/circulars/internal/db"
	"github.com/kailas-cloud/circulars/internal/domain"
)

const keyPrefix = "circulars:session:"

type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

type turnDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// KV keeps sessions in a shared key-value store so several server replicas see
// the same history. Append is read-modify-write and not atomic across replicas.
type KV struct {
	store kvStore
	ttl   time.Duration
}

// NewKV creates a store-backed session repository. ttl <= 0 keeps sessions until deleted.
func NewKV(s kvStore, ttl time.Duration) *KV {
	return &KV{store: s, ttl: ttl}
}

// History returns the session's turns, oldest first.
func (k *KV) History(ctx context.Context, id string) ([]domain.Turn, error) {
	data, err := k.store.Get(ctx, keyPrefix+id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var dtos []turnDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("%w: session %s: %w", domain.ErrDataConsistency, id, err)
	}
	turns := make([]domain.Turn, len(dtos))
	for i, d := range dtos {
		role := domain.Role(d.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("%w: session %s: unknown role %q", domain.ErrDataConsistency, id, d.Role)
		}
		turns[i] = domain.Turn{Role: role, Content: d.Content}
	}
	return turns, nil
}

// Append adds turns to a session and refreshes its expiry.
func (k *KV) Append(ctx context.Context, id string, turns ...domain.Turn) error {
	hist, err := k.History(ctx, id)
	if err != nil {
		return err
	}
	hist = capTurns(append(hist, turns...))

	dtos := make([]turnDTO, len(hist))
	for i, t := range hist {
		dtos[i] = turnDTO{Role: string(t.Role), Content: t.Content}
	}
	data, err := json.Marshal(dtos)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if k.ttl > 0 {
		err = k.store.SetWithTTL(ctx, keyPrefix+id, data, k.ttl)
	} else {
		err = k.store.Set(ctx, keyPrefix+id, data)
	}
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (k *KV) Delete(ctx context.Context, id string) error {
	if err := k.store.Del(ctx, keyPrefix+id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

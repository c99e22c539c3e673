package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/szaher/kontra/internal/store"
)

// keyPrefix namespaces conversation records in the shared KV.
const keyPrefix = "conversation:"

// Store adapts the KV capability to conversation semantics: JSON
// serialization, history truncation and sliding expiry. It is the
// only component that touches persisted conversation bytes.
type Store struct {
	kv  store.KV
	ttl time.Duration
}

// NewStore creates a conversation store. ttl is the sliding expiry
// window refreshed on every save and touch.
func NewStore(kv store.KV, ttl time.Duration) *Store {
	return &Store{kv: kv, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + id
}

// Load fetches a conversation. A nil conversation with a nil error
// means the id was never created or has expired.
func (s *Store) Load(ctx context.Context, id string) (*Conversation, error) {
	data, ok, err := s.kv.Get(ctx, key(id))
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", id, err)
	}
	if !ok {
		return nil, nil
	}

	var c Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	return &c, nil
}

// Save truncates the history to maxTurns, serializes and writes the
// conversation with a refreshed expiry window in one logical step.
func (s *Store) Save(ctx context.Context, c *Conversation, maxTurns int) error {
	c.Truncate(maxTurns)

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", c.ID, err)
	}
	if err := s.kv.Set(ctx, key(c.ID), data, s.ttl); err != nil {
		return fmt.Errorf("save conversation %s: %w", c.ID, err)
	}
	return nil
}

// Delete removes a conversation and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	existed, err := s.kv.Del(ctx, key(id))
	if err != nil {
		return false, fmt.Errorf("delete conversation %s: %w", id, err)
	}
	return existed, nil
}

// Touch refreshes the expiry window without modifying content.
func (s *Store) Touch(ctx context.Context, id string) error {
	if _, err := s.kv.Expire(ctx, key(id), s.ttl); err != nil {
		return fmt.Errorf("touch conversation %s: %w", id, err)
	}
	return nil
}

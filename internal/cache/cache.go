// Package cache is the short-TTL tier: recent query answers keyed by their
// canonical fingerprint, backed by Redis. Values are self-describing
// envelopes with an ISO-8601 UTC write timestamp so any reader can judge
// freshness without consulting the store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chargemap/internal/timeparse"
)

// Envelope is the wire form of every cache value.
type Envelope struct {
	Payload   json.RawMessage `json:"payload"`
	Timestamp string          `json:"timestamp"`
}

// Store wraps a Redis client for the query cache.
type Store struct {
	client *redis.Client
}

// NewStore returns a Redis-backed cache store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get fetches the payload and write time under key. A missing key, or an
// entry whose timestamp cannot be parsed, reports ok=false with a nil error.
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, time.Time, bool, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, time.Time{}, false, nil
		}
		return nil, time.Time{}, false, err
	}

	payload, writtenAt, err := DecodeEnvelope([]byte(raw))
	if err != nil {
		// Unreadable entries are treated as misses; the next write replaces them.
		return nil, time.Time{}, false, nil
	}
	return payload, writtenAt, true, nil
}

// SetEx writes payload under key with a TTL, wrapping it in an envelope
// stamped with the current UTC time.
func (s *Store) SetEx(ctx context.Context, key string, payload any, ttl time.Duration) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(Envelope{
		Payload:   body,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes the entry under key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// DecodeEnvelope parses a cache value, applying the same timestamp tolerance
// as the provider parser so entries written by other process versions remain
// readable.
func DecodeEnvelope(data []byte) (json.RawMessage, time.Time, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, time.Time{}, err
	}
	writtenAt, ok := timeparse.Parse(env.Timestamp)
	if !ok {
		return nil, time.Time{}, fmt.Errorf("cache: unreadable timestamp %q", env.Timestamp)
	}
	return env.Payload, writtenAt, nil
}

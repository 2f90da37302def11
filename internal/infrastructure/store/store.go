// internal/infrastructure/store/store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Store persists serializable collections as JSON blobs under scoped keys.
// Every Save overwrites the whole value; there are no partial writes.
// Missing or corrupt stored data is treated as absent, never as an error,
// so callers can keep their in-memory state authoritative.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// New creates a persisted key-value store backed by Redis.
// ttl bounds how long an untouched collection survives; zero means no expiry.
func New(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Load reads the value stored under key into dest.
// Returns false when the key is missing or the stored payload cannot
// be decoded.
func (s *Store) Load(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("store load %q: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// Corrupt payloads are discarded rather than surfaced; the
		// collection starts over empty.
		s.logger.WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Warn("Discarding corrupt stored value")
		return false, nil
	}

	return true, nil
}

// Save overwrites the value stored under key with the configured TTL.
func (s *Store) Save(ctx context.Context, key string, value interface{}) error {
	return s.SaveTTL(ctx, key, value, s.ttl)
}

// SaveTTL overwrites the value stored under key with an explicit TTL.
func (s *Store) SaveTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store marshal %q: %w", key, err)
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("store save %q: %w", key, err)
	}

	return nil
}

// Delete removes the value stored under key. Missing keys are a no-op.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("store delete: %w", err)
	}
	return nil
}

// Exists reports whether key holds a value.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, key).Result()
	return count > 0, err
}

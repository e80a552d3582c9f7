package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStatusTTL is how long a refresh status outlives its instance.
const DefaultStatusTTL = time.Hour

// Store handles the Redis side of the menu service: reload broadcasts
// and refresh metadata. Menu data itself is never written here.
type Store struct {
	client    *redis.Client
	statusTTL time.Duration
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client:    client,
		statusTTL: DefaultStatusTTL,
	}
}

// Ping checks that Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Package jobstatus implements the ephemeral background-job status
// mirror, backed by Redis so a status-polling HTTP layer can read
// progress without hitting the durable Postgres store on every poll.
package jobstatus

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a job status entry survives without being
// refreshed, matching the durable store's eventual authoritative write.
const DefaultTTL = time.Hour

// Store mirrors job status in Redis, keyed per tenant so one tenant can
// never observe another's job IDs.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// Config configures the Redis connection backing a Store.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New creates a jobstatus Store. It does not ping the server eagerly;
// connection errors surface on first use.
func New(cfg Config) *Store {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Store{client: client, ttl: ttl}
}

func key(tenant, jobID string) string {
	return fmt.Sprintf("job:%s:%s", tenant, jobID)
}

// Get returns the status for jobID, or "" with no error if absent.
func (s *Store) Get(ctx context.Context, tenant, jobID string) (string, error) {
	val, err := s.client.Get(ctx, key(tenant, jobID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("jobstatus: get %s/%s: %w", tenant, jobID, err)
	}
	return val, nil
}

// Set records status for jobID with the store's TTL.
func (s *Store) Set(ctx context.Context, tenant, jobID, status string) error {
	if err := s.client.Set(ctx, key(tenant, jobID), status, s.ttl).Err(); err != nil {
		return fmt.Errorf("jobstatus: set %s/%s: %w", tenant, jobID, err)
	}
	return nil
}

// Delete removes jobID's status entry.
func (s *Store) Delete(ctx context.Context, tenant, jobID string) error {
	if err := s.client.Del(ctx, key(tenant, jobID)).Err(); err != nil {
		return fmt.Errorf("jobstatus: delete %s/%s: %w", tenant, jobID, err)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

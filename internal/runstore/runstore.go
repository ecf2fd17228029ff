package runstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "builderops:notify:run:"

// ErrNotFound is returned when no report was stored for a job
var ErrNotFound = errors.New("no run recorded")

// Store keeps the most recent report of each job
type Store interface {
	Save(ctx context.Context, job string, report interface{}) error
	Load(ctx context.Context, job string) (json.RawMessage, error)
}

// RedisStore keeps reports in redis with a TTL
type RedisStore struct {
	c   *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a store over c. A zero ttl keeps reports forever.
func NewRedisStore(c *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{c: c, ttl: ttl}
}

// Save stores report as the latest run of job
func (s *RedisStore) Save(ctx context.Context, job string, report interface{}) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}
	if err := s.c.Set(ctx, keyPrefix+job, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store run report: %w", err)
	}
	return nil
}

// Load returns the latest stored report of job
func (s *RedisStore) Load(ctx context.Context, job string) (json.RawMessage, error) {
	data, err := s.c.Get(ctx, keyPrefix+job).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load run report: %w", err)
	}
	return json.RawMessage(data), nil
}

// MemoryStore keeps reports in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]json.RawMessage
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]json.RawMessage)}
}

// Save stores report as the latest run of job
func (s *MemoryStore) Save(_ context.Context, job string, report interface{}) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}
	s.mu.Lock()
	s.reports[job] = data
	s.mu.Unlock()
	return nil
}

// Load returns the latest stored report of job
func (s *MemoryStore) Load(_ context.Context, job string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.reports[job]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

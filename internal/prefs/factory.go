package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ziadkadry99/product-advisor/internal/db"
)

// StoreType represents the type of preference store.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeSQLite StoreType = "sqlite"
	StoreTypeRedis  StoreType = "redis"
)

// Option is a functional option for configuring a store.
type Option func(*storeConfig)

type storeConfig struct {
	database    *db.DB
	redisClient *redis.Client
	redisTTL    time.Duration
	redisPrefix string
}

// WithDB sets the database for the sqlite store.
func WithDB(d *db.DB) Option {
	return func(c *storeConfig) { c.database = d }
}

// WithRedisClient sets the Redis client for the redis store.
func WithRedisClient(client *redis.Client) Option {
	return func(c *storeConfig) { c.redisClient = client }
}

// WithRedisTTL sets the TTL for Redis keys. Zero means 30 days.
func WithRedisTTL(ttl time.Duration) Option {
	return func(c *storeConfig) { c.redisTTL = ttl }
}

// NewStore creates a Store of the given type.
func NewStore(storeType StoreType, opts ...Option) (Store, error) {
	cfg := &storeConfig{redisPrefix: "advisor:prefs:"}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case StoreTypeMemory:
		return &memoryStore{values: make(map[string]string)}, nil

	case StoreTypeSQLite:
		if cfg.database == nil {
			return nil, fmt.Errorf("%w: sqlite store needs WithDB", ErrInvalidConfig)
		}
		return &sqliteStore{db: cfg.database}, nil

	case StoreTypeRedis:
		if cfg.redisClient == nil {
			return nil, fmt.Errorf("%w: redis store needs WithRedisClient", ErrInvalidConfig)
		}
		ttl := cfg.redisTTL
		if ttl <= 0 {
			ttl = 30 * 24 * time.Hour
		}
		return &redisStore{client: cfg.redisClient, ttl: ttl, prefix: cfg.redisPrefix}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoreType, storeType)
	}
}

// memoryStore keeps values for the lifetime of the process.
type memoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *memoryStore) Close() error { return nil }

// sqliteStore keeps values in the preferences table.
type sqliteStore struct {
	db *db.DB
}

func (s *sqliteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading preference %s: %w", key, err)
	}
	return v, true, nil
}

func (s *sqliteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting preference %s: %w", key, err)
	}
	return nil
}

// Close leaves the database open; it is shared with other stores.
func (s *sqliteStore) Close() error { return nil }

// redisStore keeps values in Redis with a sliding TTL.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	k := s.prefix + key
	v, err := s.client.Get(ctx, k).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	// Refresh TTL on read.
	_ = s.client.Expire(ctx, k, s.ttl).Err()
	return v, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

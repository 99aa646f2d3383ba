package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisConfig holds connection settings for NewRedisClient.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	MaxRetries int
	RetryDelay time.Duration
}

// NewRedisClient connects to Redis, retrying the initial ping with a linear
// backoff.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 5
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	var err error
	for i := 0; i < cfg.MaxRetries; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			logrus.Infof("connected to Redis at %s (attempt %d/%d)", cfg.Addr, i+1, cfg.MaxRetries)
			return client, nil
		}
		if i < cfg.MaxRetries-1 {
			delay := cfg.RetryDelay * time.Duration(i+1)
			logrus.Warnf("Redis connection failed (attempt %d/%d): %v, retrying in %v...",
				i+1, cfg.MaxRetries, err, delay)
			select {
			case <-ctx.Done():
				client.Close()
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	client.Close()
	return nil, fmt.Errorf("failed to connect to Redis at %s after %d attempts: %w", cfg.Addr, cfg.MaxRetries, err)
}

// RedisStore keeps each user's progress as a JSON string under
// prefix+userID. A positive TTL expires idle players; each Save refreshes it.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + userID
}

func (s *RedisStore) Load(ctx context.Context, userID string) (*Progress, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress: %w", err)
	}
	p.initSlices()
	return &p, nil
}

func (s *RedisStore) Save(ctx context.Context, p *Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	if err := s.client.Set(ctx, s.key(p.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set progress: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	n, err := s.client.Del(ctx, s.key(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	return nil
}

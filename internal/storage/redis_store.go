package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"

	"github.com/julianstephens/studylit/internal/constants"
	"github.com/julianstephens/studylit/internal/logger"
)

const redisConnectRetries = 5

// RedisStore keeps each blob as a plain string value under studylit:<key>.
type RedisStore struct {
	url    string
	prefix string
	client redis.UniversalClient
}

func NewRedisStore(redisURL string) *RedisStore {
	return &RedisStore{url: redisURL, prefix: constants.RedisKeyPrefix}
}

// NewRedisStoreWithClient wraps an existing client. Init and Load only ping it.
func NewRedisStoreWithClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{prefix: constants.RedisKeyPrefix, client: client}
}

// IsRedisURL reports whether target looks like a Redis URL.
func IsRedisURL(target string) bool {
	return strings.HasPrefix(target, "redis://") || strings.HasPrefix(target, "rediss://")
}

func (s *RedisStore) connect(ctx context.Context) error {
	if s.client == nil {
		opts, err := redis.ParseURL(s.url)
		if err != nil {
			return fmt.Errorf("invalid redis URL: %w", err)
		}
		opts.MaxRetries = 3
		opts.DialTimeout = 5 * time.Second
		opts.ReadTimeout = 3 * time.Second
		opts.WriteTimeout = 3 * time.Second
		s.client = redis.NewClient(opts)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), redisConnectRetries), ctx)
	err := backoff.Retry(func() error {
		if err := s.client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis connection failed, retrying", "error", err)
			return err
		}
		return nil
	}, b)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Init() error {
	return s.connect(context.Background())
}

func (s *RedisStore) Load() error {
	return s.connect(context.Background())
}

func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.client == nil {
		return nil, errNotLoaded
	}
	blob, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return blob, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, blob []byte) error {
	if s.client == nil {
		return errNotLoaded
	}
	if err := s.client.Set(ctx, s.prefix+key, blob, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if s.client == nil {
		return errNotLoaded
	}
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Keys(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, errNotLoaded
	}
	var out []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

// GetConfigPath never echoes credentials.
func (s *RedisStore) GetConfigPath() string {
	return "redis"
}

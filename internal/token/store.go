package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoCredential 表示存储里没有可用的凭证
var ErrNoCredential = errors.New("token: no credential stored")

// Provider hands out the bearer credential used for a connect or reconnect
// cycle. It is consulted once per cycle.
type Provider func(ctx context.Context) (string, error)

// Static returns a provider that always hands out the same credential.
func Static(credential string) Provider {
	return func(context.Context) (string, error) {
		if credential == "" {
			return "", ErrNoCredential
		}
		return credential, nil
	}
}

// RedisStore keeps the bearer credential in Redis so that every process of
// the app reads the same token after a refresh.
type RedisStore struct {
	cli *redis.Client
	key string
}

func NewRedisStore(addr string, db int, key string) *RedisStore {
	cli := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	return &RedisStore{cli: cli, key: key}
}

// Save 写入凭证；ttl<=0 表示不过期
func (s *RedisStore) Save(ctx context.Context, credential string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.cli.Set(ctx, s.key, credential, ttl).Err(); err != nil {
		return fmt.Errorf("token: save: %w", err)
	}
	return nil
}

// Credential 读取当前凭证
func (s *RedisStore) Credential(ctx context.Context) (string, error) {
	v, err := s.cli.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("token: load: %w", err)
	}
	return v, nil
}

// Provider adapts the store to the Provider signature.
func (s *RedisStore) Provider() Provider {
	return s.Credential
}

func (s *RedisStore) Close() error { return s.cli.Close() }

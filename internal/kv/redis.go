package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore Redis 实现，不设置过期时间
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

// Get 实现 Store.Get
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.client == nil {
		return "", false, ErrClosed
	}
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

// Set 实现 Store.Set
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if s.client == nil {
		return ErrClosed
	}
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}

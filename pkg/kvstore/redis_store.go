package kvstore

import (
	"context"
	"errors"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/redis"
)

// RedisStore 基于 Redis 字符串的键值存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.GetBytes(ctx, key)
	if err != nil {
		if errors.Is(err, redis.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, value []byte) error {
	return s.client.SetBytes(ctx, key, value)
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/awebbr/sistema-vendas/internal/redisx"
)

type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func (s *RedisSessionStore) Put(ctx context.Context, token string, customerID int64, ttl time.Duration) error {
	return s.rdb.Set(ctx, fmt.Sprintf(redisx.KeySession, token), customerID, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (int64, error) {
	id, err := s.rdb.Get(ctx, fmt.Sprintf(redisx.KeySession, token)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}
	return id, nil
}

func (s *RedisSessionStore) Del(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, fmt.Sprintf(redisx.KeySession, token)).Err()
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dropDatabas3/habo/internal/cache"
	"github.com/dropDatabas3/habo/internal/domain/repository"
	"github.com/redis/go-redis/v9"
)

const DefaultRedisPrefix = "habo"

// RedisStore guarda records como JSON con EX = TTL de la sesión.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore no toma ownership del cliente.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*repository.SessionRecord, error) {
	b, err := s.rdb.Get(ctx, cache.Key(s.prefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec repository.SessionRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, rec *repository.SessionRecord, ttl time.Duration) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, cache.Key(s.prefix, key), b, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, cache.Key(s.prefix, key)).Err()
}

func (s *RedisStore) Close() error { return nil }

package statecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/habo/internal/cache"
	"github.com/dropDatabas3/habo/internal/domain/repository"
	"github.com/redis/go-redis/v9"
)

// Redis es el backend compartido entre réplicas. La expiración es el EX de
// cada key, no hay sweeper.
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis no toma ownership del cliente: Close no lo cierra.
func NewRedis(rdb *redis.Client, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *Redis) Put(ctx context.Context, state, nonce string) error {
	if err := validState(state); err != nil {
		return err
	}
	b, err := json.Marshal(repository.AuthorizationRequest{
		State:     state,
		Nonce:     nonce,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("statecache: encode: %w", err)
	}
	if err := r.rdb.Set(ctx, cache.Key(r.prefix, state), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("statecache: redis set: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, state string) (repository.AuthorizationRequest, error) {
	var req repository.AuthorizationRequest
	b, err := r.rdb.Get(ctx, cache.Key(r.prefix, state)).Bytes()
	if errors.Is(err, redis.Nil) {
		return req, ErrNotFound
	}
	if err != nil {
		return req, fmt.Errorf("statecache: redis get: %w", err)
	}
	if err := json.Unmarshal(b, &req); err != nil {
		return req, fmt.Errorf("statecache: decode: %w", err)
	}
	return req, nil
}

func (r *Redis) Delete(ctx context.Context, state string) error {
	if err := r.rdb.Del(ctx, cache.Key(r.prefix, state)).Err(); err != nil {
		return fmt.Errorf("statecache: redis del: %w", err)
	}
	return nil
}

func (r *Redis) Close() error { return nil }

package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/habo/internal/domain/repository"
	"github.com/redis/go-redis/v9"
)

// StoreConfig selecciona el backend de sesiones.
type StoreConfig struct {
	Kind        string // memory | redis | sqlite | postgres
	RedisPrefix string
	SQLitePath  string
	PostgresDSN string
}

// NewStore abre el store configurado. rdb es obligatorio para "redis".
func NewStore(ctx context.Context, cfg StoreConfig, rdb *redis.Client) (repository.SessionRepository, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("session: redis store requires a redis client")
		}
		return NewRedisStore(rdb, cfg.RedisPrefix), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLitePath)
	case "postgres", "pg":
		return OpenPostgres(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("session: unknown store %q", cfg.Kind)
	}
}

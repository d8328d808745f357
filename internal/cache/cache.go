// Package cache abre la conexión Redis compartida por el state cache, el
// store de sesiones y el rate limiter del chat.
//
// Cada consumidor usa su propio prefijo de keys sobre el mismo cliente.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configuración de la conexión Redis.
type Config struct {
	Addr     string // host:port
	Password string
	DB       int
}

// Enabled reporta si hay Redis configurado.
func (c Config) Enabled() bool { return strings.TrimSpace(c.Addr) != "" }

// Connect crea el cliente y verifica la conexión con un ping de 5s.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("cache: redis addr not configured")
	}
	addr := cfg.Addr
	if !strings.Contains(addr, ":") {
		addr += ":6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}
	return rdb, nil
}

// Key arma "prefix:k". Sin prefijo retorna k.
func Key(prefix, k string) string {
	prefix = strings.TrimSuffix(prefix, ":")
	if prefix == "" {
		return k
	}
	return prefix + ":" + k
}

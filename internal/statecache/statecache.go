// Package statecache guarda el par state/nonce de cada login en curso como
// canal secundario a la sesión: si la cookie no vuelve del IdP (SameSite,
// navegadores que bloquean cookies de terceros), el callback lo recupera por
// el state de la query.
//
// Las entradas viven DefaultTTL. El backend memory barre las vencidas cada
// DefaultSweepInterval; el backend redis delega la expiración en Redis.
package statecache

import (
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/habo/internal/domain/repository"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL           = 5 * time.Minute
	DefaultSweepInterval = 10 * time.Minute
	DefaultRedisPrefix   = "oidc:state"
)

// ErrNotFound es el error de dominio para state inexistente o vencido.
var ErrNotFound = repository.ErrNotFound

// Config selecciona y parametriza el backend.
type Config struct {
	Kind          string // "memory" | "redis"
	TTL           time.Duration
	SweepInterval time.Duration
	Prefix        string
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.Prefix == "" {
		c.Prefix = DefaultRedisPrefix
	}
	return c
}

// New crea el store según cfg.Kind. rdb es obligatorio para "redis".
// El store memory se retorna sin arrancar el sweeper: el caller llama Start.
func New(cfg Config, rdb *redis.Client) (repository.StateRepository, error) {
	cfg = cfg.withDefaults()
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", "memory":
		return NewMemory(cfg.TTL, cfg.SweepInterval), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("statecache: redis backend requires a redis client")
		}
		return NewRedis(rdb, cfg.Prefix, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("statecache: unknown kind %q", cfg.Kind)
	}
}

func validState(state string) error {
	if strings.TrimSpace(state) == "" {
		return fmt.Errorf("statecache: empty state: %w", repository.ErrInvalidInput)
	}
	return nil
}

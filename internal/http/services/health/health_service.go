// Package health contiene el service para health checks.
package health

import (
	"context"
	"time"

	dto "github.com/dropDatabas3/habo/internal/http/dto/health"
	"github.com/dropDatabas3/habo/internal/observability/logger"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	OIDCReady  func() bool
	RedisCheck func(ctx context.Context) error // nil = sin Redis
	Version    string
}

type healthService struct {
	deps Deps
}

func NewHealthService(deps Deps) HealthService {
	return &healthService{deps: deps}
}

const checkTimeout = 2 * time.Second

// Check nunca falla: el proceso está vivo si responde. Los componentes son
// informativos.
func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	resp := dto.HealthResponse{
		Status:     "ok",
		Components: make(map[string]dto.HealthStatus),
		Version:    s.deps.Version,
		Timestamp:  time.Now().UTC(),
	}

	if s.deps.OIDCReady != nil && s.deps.OIDCReady() {
		resp.OIDCReady = true
		resp.Components["oidc"] = dto.HealthStatus{Status: "ok"}
	} else {
		resp.Components["oidc"] = dto.HealthStatus{Status: "error", Message: "discovery pending"}
	}

	if s.deps.RedisCheck == nil {
		resp.Components["redis"] = dto.HealthStatus{Status: "disabled"}
	} else {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()
		if err := s.deps.RedisCheck(cctx); err != nil {
			resp.Components["redis"] = dto.HealthStatus{Status: "error", Message: err.Error()}
			logger.From(ctx).Warn("redis health check failed", logger.Component("health"), logger.Err(err))
		} else {
			resp.Components["redis"] = dto.HealthStatus{Status: "ok"}
		}
	}
	return resp
}

package auth

import (
	"context"

	"github.com/dropDatabas3/habo/internal/observability/logger"
)

// LogoutService resuelve a dónde mandar el browser tras destruir la sesión.
// Los bearer ya emitidos siguen válidos hasta su exp.
type LogoutService interface {
	RedirectURL(ctx context.Context) string
}

type logoutService struct {
	deps Deps
}

func NewLogoutService(deps Deps) LogoutService {
	return &logoutService{deps: deps}
}

func (l *logoutService) RedirectURL(ctx context.Context) string {
	u, err := l.deps.OIDC.LogoutURL(l.deps.FrontendURL)
	if err != nil {
		logger.From(ctx).Warn("provider logout url unavailable, redirecting to frontend",
			logger.Layer("service"), logger.Component("auth.logout"), logger.Err(err))
		return l.deps.FrontendURL
	}
	return u
}

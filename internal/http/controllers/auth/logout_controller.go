package auth

import (
	"net/http"

	svc "github.com/dropDatabas3/habo/internal/http/services/auth"
	"github.com/dropDatabas3/habo/internal/observability/logger"
	"github.com/dropDatabas3/habo/internal/session"
)

// LogoutController maneja GET /auth/logout.
type LogoutController struct {
	service  svc.LogoutService
	sessions SessionStore
}

func NewLogoutController(service svc.LogoutService, sessions SessionStore) *LogoutController {
	return &LogoutController{service: service, sessions: sessions}
}

func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LogoutController.Logout"))

	if s := session.FromContext(ctx); s != nil {
		if err := c.sessions.Destroy(ctx, w, s); err != nil {
			log.Warn("session destroy failed", logger.Err(err))
		}
	}
	http.Redirect(w, r, c.service.RedirectURL(ctx), http.StatusFound)
}

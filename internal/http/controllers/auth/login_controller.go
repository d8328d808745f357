package auth

import (
	"errors"
	"net/http"

	httperrors "github.com/dropDatabas3/habo/internal/http/errors"
	svc "github.com/dropDatabas3/habo/internal/http/services/auth"
	"github.com/dropDatabas3/habo/internal/observability/logger"
	"github.com/dropDatabas3/habo/internal/session"
)

// LoginController maneja GET /auth/login.
type LoginController struct {
	service  svc.LoginService
	sessions SessionStore
}

func NewLoginController(service svc.LoginService, sessions SessionStore) *LoginController {
	return &LoginController{service: service, sessions: sessions}
}

func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	s := session.FromContext(ctx)
	if s == nil {
		httperrors.WriteError(w, errors.New("session middleware not installed"))
		return
	}

	authURL, err := c.service.Begin(ctx, s)
	if err != nil {
		log.Warn("login not started", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	if err := c.sessions.Save(ctx, w, s); err != nil {
		// el state cache cubre el callback aunque la sesión no se guarde
		log.Warn("session save failed", logger.Err(err))
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

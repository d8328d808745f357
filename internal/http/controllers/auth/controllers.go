// Package auth contiene los controllers de /auth/*, /api/user y /.
package auth

import (
	"context"
	"net/http"

	svc "github.com/dropDatabas3/habo/internal/http/services/auth"
	"github.com/dropDatabas3/habo/internal/session"
)

// SessionStore persiste la sesión del request y maneja la cookie.
type SessionStore interface {
	Save(ctx context.Context, w http.ResponseWriter, s *session.Session) error
	Destroy(ctx context.Context, w http.ResponseWriter, s *session.Session) error
}

// Controllers agrupa todos los controllers del dominio auth.
type Controllers struct {
	Login    *LoginController
	Callback *CallbackController
	Logout   *LogoutController
	User     *UserController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s svc.Services, sessions SessionStore) *Controllers {
	return &Controllers{
		Login:    NewLoginController(s.Login, sessions),
		Callback: NewCallbackController(s.Callback, sessions),
		Logout:   NewLogoutController(s.Logout, sessions),
		User:     NewUserController(),
	}
}

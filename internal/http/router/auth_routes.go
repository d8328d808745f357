package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/habo/internal/http/controllers/auth"
	mw "github.com/dropDatabas3/habo/internal/http/middlewares"
)

// AuthRouterDeps contiene las dependencias para el router de auth.
type AuthRouterDeps struct {
	Controllers *ctrl.Controllers
}

// RegisterAuthRoutes registra /auth/* y GET /.
func RegisterAuthRoutes(r chi.Router, deps AuthRouterDeps) {
	c := deps.Controllers

	r.Get("/", c.User.Home)

	r.Route("/auth", func(r chi.Router) {
		r.Use(mw.WithNoStore())
		r.Get("/login", c.Login.Login)
		r.Get("/callback", c.Callback.Callback)
		r.Get("/logout", c.Logout.Logout)
	})
}

// Package router arma el chi.Router del gateway con el orden de
// middlewares global y las rutas por dominio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/habo/internal/http/controllers/auth"
	chatctrl "github.com/dropDatabas3/habo/internal/http/controllers/chat"
	healthctrl "github.com/dropDatabas3/habo/internal/http/controllers/health"
	stocksctrl "github.com/dropDatabas3/habo/internal/http/controllers/stocks"
	httperrors "github.com/dropDatabas3/habo/internal/http/errors"
	mw "github.com/dropDatabas3/habo/internal/http/middlewares"
	"github.com/dropDatabas3/habo/internal/rate"
)

// RouterDeps contiene todas las dependencias del router.
type RouterDeps struct {
	// Controllers
	AuthControllers  *authctrl.Controllers
	ChatController   *chatctrl.ChatController
	StocksController *stocksctrl.StocksController
	HealthController *healthctrl.HealthController
	MetricsHandler   http.Handler // nil = sin /metrics

	// Middlewares
	Session       mw.Middleware // session.Manager.Middleware
	Resolvers     []mw.Resolver
	Metrics       mw.Middleware // nil = sin instrumentación
	CORSOrigins   []string
	ChatRateLimit rate.Limiter // nil = sin límite
}

// New registra todas las rutas. Orden global: recover, request id, logging,
// metrics, CORS, security headers, sesión, identidad.
func New(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	global := []mw.Middleware{
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
	}
	if deps.Metrics != nil {
		global = append(global, deps.Metrics)
	}
	global = append(global,
		mw.WithCORS(deps.CORSOrigins),
		mw.WithSecurityHeaders(),
	)
	if deps.Session != nil {
		global = append(global, deps.Session)
	}
	global = append(global, mw.WithIdentity(deps.Resolvers...))
	for _, m := range global {
		r.Use(m)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	if deps.HealthController != nil || deps.MetricsHandler != nil {
		RegisterHealthRoutes(r, HealthRouterDeps{
			Controller: deps.HealthController,
			Metrics:    deps.MetricsHandler,
		})
	}
	if deps.AuthControllers != nil {
		RegisterAuthRoutes(r, AuthRouterDeps{Controllers: deps.AuthControllers})
	}
	RegisterAPIRoutes(r, APIRouterDeps{
		User:          deps.AuthControllers,
		Chat:          deps.ChatController,
		Stocks:        deps.StocksController,
		ChatRateLimit: deps.ChatRateLimit,
	})
	return r
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/habo/internal/http/controllers/health"
)

// HealthRouterDeps contiene las dependencias para el router de health.
type HealthRouterDeps struct {
	Controller *ctrl.HealthController
	Metrics    http.Handler
}

// RegisterHealthRoutes registra /healthz y /metrics, públicos.
func RegisterHealthRoutes(r chi.Router, deps HealthRouterDeps) {
	if deps.Controller != nil {
		r.Get("/healthz", deps.Controller.Healthz)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
}

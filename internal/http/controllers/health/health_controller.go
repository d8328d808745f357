// Package health contiene el controller para health checks.
package health

import (
	"net/http"

	"github.com/dropDatabas3/habo/internal/http/helpers"
	svc "github.com/dropDatabas3/habo/internal/http/services/health"
)

// HealthController maneja las rutas de health check.
type HealthController struct {
	service svc.HealthService
}

func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Healthz maneja GET /healthz. Siempre 200 mientras el proceso responda.
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	resp := c.service.Check(r.Context())
	if resp.Version != "" {
		w.Header().Set("X-Service-Version", resp.Version)
	}
	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, http.StatusOK, resp)
}

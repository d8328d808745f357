// Package health contiene DTOs para endpoints de health check.
package health

import "time"

// HealthStatus representa el estado de un componente específico.
type HealthStatus struct {
	Status  string `json:"status"`            // "ok" | "error" | "disabled"
	Message string `json:"message,omitempty"` // Detalle opcional
}

// HealthResponse es GET /healthz. Status siempre es "ok" si el proceso
// responde; oidc_ready refleja el discovery.
type HealthResponse struct {
	Status     string                  `json:"status"`
	OIDCReady  bool                    `json:"oidc_ready"`
	Components map[string]HealthStatus `json:"components,omitempty"`
	Version    string                  `json:"version,omitempty"`
	Timestamp  time.Time               `json:"timestamp"`
}

package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dropDatabas3/habo/internal/http/errors"
	"github.com/dropDatabas3/habo/internal/observability/logger"
	"github.com/dropDatabas3/habo/internal/rate"
)

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// IdentityRateKey: por subject si hay identidad, si no por IP.
func IdentityRateKey(r *http.Request) string {
	if id, ok := GetIdentity(r.Context()); ok {
		return "sub:" + id.Subject
	}
	return "ip:" + clientIP(r)
}

// IPOnlyRateKey genera una clave basada solo en IP.
func IPOnlyRateKey(r *http.Request) string { return clientIP(r) }

type RateLimitConfig struct {
	Limiter rate.Limiter
	KeyFunc RateKeyFunc
	Scope   string // prefijo de la clave, ej "chat"
}

// WithRateLimit aplica el limiter. Sin limiter es un no-op; si el limiter
// falla (Redis caído) el request pasa.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IdentityRateKey
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.KeyFunc(r)
			if cfg.Scope != "" {
				key = cfg.Scope + "|" + key
			}
			res, err := cfg.Limiter.Allow(r.Context(), key)
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter error, allowing request", logger.Component("rate"), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if res.WindowTTL > 0 {
				resetAt := time.Now().Add(res.WindowTTL).Unix()
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
			}
			if !res.Allowed {
				secs := int(res.RetryAfter.Round(time.Second) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				errors.WriteError(w, errors.ErrTooManyRequests)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}

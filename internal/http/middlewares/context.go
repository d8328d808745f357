package middlewares

import (
	"context"

	"github.com/dropDatabas3/habo/internal/domain/types"
)

type ctxKey string

const (
	ctxRequestIDKey      ctxKey = "request_id"
	ctxIdentityKey       ctxKey = "identity"
	ctxIdentitySourceKey ctxKey = "identity_source"
)

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID obtiene el request ID del contexto.
// Retorna cadena vacía si no hay request ID.
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return s
	}
	return ""
}

// WithIdentityContext inyecta la identidad resuelta y su origen.
func WithIdentityContext(ctx context.Context, id types.Identity, source string) context.Context {
	ctx = context.WithValue(ctx, ctxIdentityKey, id)
	return context.WithValue(ctx, ctxIdentitySourceKey, source)
}

// GetIdentity retorna la identidad resuelta por WithIdentity, si hubo.
func GetIdentity(ctx context.Context) (types.Identity, bool) {
	id, ok := ctx.Value(ctxIdentityKey).(types.Identity)
	if !ok || id.IsZero() {
		return types.Identity{}, false
	}
	return id, true
}

// GetIdentitySource: "bearer", "session" o "".
func GetIdentitySource(ctx context.Context) string {
	if s, ok := ctx.Value(ctxIdentitySourceKey).(string); ok {
		return s
	}
	return ""
}

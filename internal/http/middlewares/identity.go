package middlewares

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/habo/internal/domain/types"
	"github.com/dropDatabas3/habo/internal/http/errors"
	"github.com/dropDatabas3/habo/internal/observability/logger"
	"github.com/dropDatabas3/habo/internal/session"
)

const (
	SourceBearer  = "bearer"
	SourceSession = "session"
)

// Resolver obtiene una identidad del request. ok=false significa "no pude",
// y la cadena sigue con el próximo.
type Resolver interface {
	Name() string
	Resolve(r *http.Request) (types.Identity, bool)
}

// TokenVerifier valida un bearer token propio (jwt.Issuer).
type TokenVerifier interface {
	Verify(raw string) (types.Identity, error)
}

type bearerResolver struct{ v TokenVerifier }

// BearerResolver lee Authorization: Bearer <jwt>. Un token inválido no es
// error: se loguea en debug y se cae al siguiente resolver.
func BearerResolver(v TokenVerifier) Resolver { return bearerResolver{v: v} }

func (bearerResolver) Name() string { return SourceBearer }

func (b bearerResolver) Resolve(r *http.Request) (types.Identity, bool) {
	raw, ok := bearerToken(r)
	if !ok {
		return types.Identity{}, false
	}
	id, err := b.v.Verify(raw)
	if err != nil {
		logger.From(r.Context()).Debug("bearer token rejected", logger.Component("identity"), logger.Err(err))
		return types.Identity{}, false
	}
	return id, true
}

func bearerToken(r *http.Request) (string, bool) {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) < len("bearer ") || !strings.EqualFold(ah[:len("bearer ")], "bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(ah[len("bearer "):])
	return raw, raw != ""
}

type sessionResolver struct{}

// SessionResolver usa la identidad guardada en la sesión cargada por
// session.Manager.Middleware.
func SessionResolver() Resolver { return sessionResolver{} }

func (sessionResolver) Name() string { return SourceSession }

func (sessionResolver) Resolve(r *http.Request) (types.Identity, bool) {
	s := session.FromContext(r.Context())
	if s == nil {
		return types.Identity{}, false
	}
	return s.UserInfo()
}

// WithIdentity corre los resolvers en orden; el primero que resuelve gana.
// Nunca responde error: lo que falta lo decide RequireIdentity.
func WithIdentity(resolvers ...Resolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, res := range resolvers {
				if id, ok := res.Resolve(r); ok {
					ctx := WithIdentityContext(r.Context(), id, res.Name())
					ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.Subject(id.Subject), logger.Source(res.Name())))
					r = r.WithContext(ctx)
					break
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity responde 401 {"error":"Not authenticated"} sin identidad.
func RequireIdentity() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetIdentity(r.Context()); !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="habo"`)
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

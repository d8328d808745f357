// Package session maneja la sesión server-side ligada a la cookie
// "atm-session": carga por request, ventana deslizante de 24h y stores
// intercambiables (memory, redis, sqlite, postgres).
package session

import (
	"context"

	"github.com/dropDatabas3/habo/internal/domain/repository"
	"github.com/dropDatabas3/habo/internal/domain/types"
)

// Session es la sesión del request actual. No es segura para uso
// concurrente; vive lo que dura el request.
type Session struct {
	id        string
	rec       *repository.SessionRecord
	persisted bool
}

func newSession() *Session {
	return &Session{rec: &repository.SessionRecord{}}
}

// Record retorna el record mutable. Los cambios se guardan con Manager.Save.
func (s *Session) Record() *repository.SessionRecord { return s.rec }

// IsNew reporta si la sesión todavía no existe en el store.
func (s *Session) IsNew() bool { return !s.persisted }

// UserInfo retorna la identidad guardada tras el callback.
func (s *Session) UserInfo() (types.Identity, bool) {
	if s == nil || s.rec == nil || s.rec.UserInfo == nil || s.rec.UserInfo.IsZero() {
		return types.Identity{}, false
	}
	return *s.rec.UserInfo, true
}

// SetAuthorizationRequest guarda state y nonce del login en curso.
func (s *Session) SetAuthorizationRequest(state, nonce string) {
	s.rec.State = state
	s.rec.Nonce = nonce
}

// CompleteLogin guarda la identidad y descarta state/nonce.
func (s *Session) CompleteLogin(id types.Identity) {
	s.rec.UserInfo = &id
	s.rec.State = ""
	s.rec.Nonce = ""
}

type ctxKey struct{}

// WithContext adjunta la sesión al contexto.
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext retorna la sesión del request o nil si el middleware no corrió.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/habo/internal/domain/types"
)

// SessionRecord es el estado server-side asociado a la cookie de sesión.
// Nonce/State viven entre /auth/login y /auth/callback; UserInfo queda
// después del callback.
type SessionRecord struct {
	Nonce     string          `json:"nonce,omitempty"`
	State     string          `json:"state,omitempty"`
	UserInfo  *types.Identity `json:"userInfo,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// HasAuthorizationRequest indica si el login dejó state y nonce en la sesión.
func (r *SessionRecord) HasAuthorizationRequest() bool {
	return r != nil && r.State != "" && r.Nonce != ""
}

// SessionRepository persiste SessionRecords por hash de session id.
type SessionRepository interface {
	// Get retorna ErrNotFound si no existe o expiró.
	Get(ctx context.Context, key string) (*SessionRecord, error)

	// Set crea o reemplaza el record y reinicia su TTL.
	Set(ctx context.Context, key string, rec *SessionRecord, ttl time.Duration) error

	// Delete elimina el record. Idempotente.
	Delete(ctx context.Context, key string) error

	Close() error
}

// SessionSweeper lo implementan los stores que no expiran solos (SQL).
type SessionSweeper interface {
	// DeleteExpired elimina sesiones vencidas y retorna cuántas borró.
	DeleteExpired(ctx context.Context) (int, error)
}

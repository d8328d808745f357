package repository

import (
	"context"
	"time"
)

// AuthorizationRequest es el par state/nonce de un intento de login.
type AuthorizationRequest struct {
	State     string    `json:"state"`
	Nonce     string    `json:"nonce"`
	CreatedAt time.Time `json:"createdAt"`
}

// StateRepository es el canal secundario de state/nonce para cuando la
// cookie de sesión no sobrevive el redirect al IdP.
type StateRepository interface {
	// Put guarda el par con timestamp de inserción.
	Put(ctx context.Context, state, nonce string) error

	// Get retorna ErrNotFound si el state nunca se guardó o expiró.
	Get(ctx context.Context, state string) (AuthorizationRequest, error)

	// Delete es idempotente.
	Delete(ctx context.Context, state string) error

	Close() error
}

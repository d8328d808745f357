// Package auth contiene los services del flujo OIDC: login, callback y
// logout contra el IdP.
package auth

import (
	"context"
	"time"

	"github.com/dropDatabas3/habo/internal/domain/repository"
	"github.com/dropDatabas3/habo/internal/domain/types"
	"github.com/dropDatabas3/habo/internal/oidc"
)

// OIDCClient es lo que los services usan de *oidc.Client.
type OIDCClient interface {
	Ready() bool
	AuthorizationURL(state, nonce string, scopes []string) (string, error)
	ExchangeCode(ctx context.Context, params oidc.CallbackParams, expected repository.AuthorizationRequest) (*oidc.TokenSet, error)
	FetchUserInfo(ctx context.Context, accessToken string) (types.Identity, error)
	LogoutURL(returnTo string) (string, error)
}

// TokenMinter emite el bearer propio (jwt.Issuer).
type TokenMinter interface {
	Mint(id types.Identity) (string, time.Time, error)
}

// Deps contiene las dependencias para crear los services auth.
type Deps struct {
	OIDC        OIDCClient
	Tokens      TokenMinter
	States      repository.StateRepository
	FrontendURL string
	Scopes      []string

	// OnCallback se invoca al terminar cada callback (métricas).
	OnCallback func(path, result string)
}

// Services agrupa todos los services del dominio auth.
type Services struct {
	Login    LoginService
	Callback CallbackService
	Logout   LogoutService
}

// NewServices crea el agregador de services auth.
func NewServices(d Deps) Services {
	if len(d.Scopes) == 0 {
		d.Scopes = oidc.DefaultScopes
	}
	if d.OnCallback == nil {
		d.OnCallback = func(string, string) {}
	}
	return Services{
		Login:    NewLoginService(d),
		Callback: NewCallbackService(d),
		Logout:   NewLogoutService(d),
	}
}

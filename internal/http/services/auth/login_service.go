package auth

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/habo/internal/observability/logger"
	"github.com/dropDatabas3/habo/internal/oidc"
	tokens "github.com/dropDatabas3/habo/internal/security/token"
	"github.com/dropDatabas3/habo/internal/session"
)

// LoginService arranca el Authorization-Code flow.
type LoginService interface {
	// Begin genera state/nonce, los deja en la sesión y en el state cache, y
	// retorna la URL del IdP. El caller persiste la sesión.
	Begin(ctx context.Context, s *session.Session) (string, error)
}

type loginService struct {
	deps Deps
}

func NewLoginService(deps Deps) LoginService {
	return &loginService{deps: deps}
}

func (l *loginService) Begin(ctx context.Context, s *session.Session) (string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Begin"),
	)

	if !l.deps.OIDC.Ready() {
		return "", oidc.ErrClientNotReady
	}

	state, nonce, err := tokens.GenerateStateNonce()
	if err != nil {
		return "", fmt.Errorf("auth: generate state: %w", err)
	}
	s.SetAuthorizationRequest(state, nonce)

	// El cache es el canal de respaldo si la cookie no vuelve del IdP; si
	// falla, el login sigue solo con la sesión.
	if err := l.deps.States.Put(ctx, state, nonce); err != nil {
		log.Warn("state cache put failed", logger.State(state), logger.Err(err))
	}

	authURL, err := l.deps.OIDC.AuthorizationURL(state, nonce, l.deps.Scopes)
	if err != nil {
		return "", err
	}
	log.Debug("login started", logger.State(state))
	return authURL, nil
}

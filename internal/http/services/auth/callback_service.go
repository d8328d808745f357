package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dropDatabas3/habo/internal/domain/repository"
	"github.com/dropDatabas3/habo/internal/domain/types"
	dto "github.com/dropDatabas3/habo/internal/http/dto/auth"
	"github.com/dropDatabas3/habo/internal/observability/logger"
	"github.com/dropDatabas3/habo/internal/oidc"
	"github.com/dropDatabas3/habo/internal/session"
)

// Caminos de resolución del par state/nonce esperado.
const (
	PathSession  = "session"
	PathCache    = "cache"
	PathDegraded = "degraded"
)

// CallbackResult es lo que el controller necesita para redirigir.
type CallbackResult struct {
	Identity    types.Identity
	Token       string
	RedirectURL string
	Path        string
}

// CallbackService completa el flow con el code del IdP.
type CallbackService interface {
	// Complete canjea el code, deja la identidad en la sesión (el caller la
	// persiste) y emite el bearer. Cualquier falla es *oidc.AuthenticationError
	// salvo oidc.ErrClientNotReady.
	Complete(ctx context.Context, s *session.Session, req dto.CallbackRequest) (*CallbackResult, error)
}

type callbackService struct {
	deps Deps
}

func NewCallbackService(deps Deps) CallbackService {
	return &callbackService{deps: deps}
}

func (c *callbackService) Complete(ctx context.Context, s *session.Session, req dto.CallbackRequest) (res *CallbackResult, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.callback"),
		logger.Op("Complete"),
		logger.State(req.State),
	)

	if req.Error != "" {
		detail := req.Error
		if req.ErrorDescription != "" {
			detail += " (" + req.ErrorDescription + ")"
		}
		c.deps.OnCallback("provider", "failure")
		return nil, &oidc.AuthenticationError{Detail: detail}
	}
	if !c.deps.OIDC.Ready() {
		return nil, oidc.ErrClientNotReady
	}

	expected, path := c.resolveExpected(ctx, s, req.State)
	log = log.With(logger.String("path", path))
	if path == PathDegraded {
		log.Warn("authorization request not found in session or cache, assuming nonce == state", logger.Degraded(true))
	}
	defer func() {
		result := "success"
		if err != nil {
			result = "failure"
		}
		c.deps.OnCallback(path, result)
	}()

	// El canje no se corta si el browser se desconecta; los timeouts del
	// cliente OIDC lo acotan.
	exCtx := context.WithoutCancel(ctx)

	tok, err := c.deps.OIDC.ExchangeCode(exCtx, oidc.CallbackParams{Code: req.Code, State: req.State}, expected)
	if err != nil {
		log.Error("code exchange failed", logger.Err(err))
		return nil, err
	}
	id, err := c.deps.OIDC.FetchUserInfo(exCtx, tok.AccessToken)
	if err != nil {
		log.Error("userinfo failed", logger.Err(err))
		return nil, err
	}
	if tok.Subject != "" && id.Subject != tok.Subject {
		return nil, &oidc.AuthenticationError{Detail: "userinfo subject does not match id_token"}
	}

	s.CompleteLogin(id)

	token, _, err := c.deps.Tokens.Mint(id)
	if err != nil {
		return nil, &oidc.AuthenticationError{Detail: "token issuance failed", Err: err}
	}

	if err := c.deps.States.Delete(ctx, req.State); err != nil {
		log.Warn("state cache delete failed", logger.Err(err))
	}

	log.Info("login completed", logger.Subject(id.Subject), logger.Email(id.Email))
	return &CallbackResult{
		Identity:    id,
		Token:       token,
		RedirectURL: strings.TrimRight(c.deps.FrontendURL, "/") + "/callback?token=" + url.QueryEscape(token),
		Path:        path,
	}, nil
}

// resolveExpected: sesión, después cache por state, y si no hay nada el
// modo degradado state == nonce.
func (c *callbackService) resolveExpected(ctx context.Context, s *session.Session, state string) (repository.AuthorizationRequest, string) {
	if s != nil && s.Record().HasAuthorizationRequest() {
		rec := s.Record()
		return repository.AuthorizationRequest{State: rec.State, Nonce: rec.Nonce}, PathSession
	}
	if state != "" {
		ar, err := c.deps.States.Get(ctx, state)
		if err == nil {
			return ar, PathCache
		}
		if !repository.IsNotFound(err) {
			logger.From(ctx).Warn("state cache get failed", logger.Component("auth.callback"), logger.Err(fmt.Errorf("state lookup: %w", err)))
		}
	}
	return repository.AuthorizationRequest{State: state, Nonce: state}, PathDegraded
}

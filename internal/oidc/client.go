package oidc

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/dropDatabas3/habo/internal/domain/repository"
	"github.com/dropDatabas3/habo/internal/domain/types"
	"github.com/dropDatabas3/habo/internal/observability/logger"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// CallbackParams son los parámetros que el IdP manda a /auth/callback.
type CallbackParams struct {
	Code  string
	State string
}

// TokenSet es el resultado del canje ya verificado.
type TokenSet struct {
	AccessToken string
	IDToken     string
	Subject     string
	Expiry      time.Time
}

// provider es el estado que deja un discovery exitoso. Se reemplaza
// atómicamente, nunca se muta.
type provider struct {
	doc      *discoveryDoc
	from     string
	oidc     *gooidc.Provider
	verifier *gooidc.IDTokenVerifier
	oauth2   oauth2.Config
}

// Client es el cliente OIDC. Es seguro para uso concurrente.
type Client struct {
	cfg     Config
	http    *http.Client
	sf      singleflight.Group
	p       atomic.Pointer[provider]
	onReady func()
}

// Option personaliza el Client.
type Option func(*Client)

// WithHTTPClient reemplaza el http.Client (default: timeout HTTPTimeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithReadyHook se llama una vez por cada discovery exitoso.
func WithReadyHook(fn func()) Option {
	return func(c *Client) { c.onReady = fn }
}

func New(cfg Config, opts ...Option) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.HTTPTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Ready reporta si Initialize terminó bien.
func (c *Client) Ready() bool { return c.p.Load() != nil }

// Issuer retorna el issuer descubierto ("" si no está listo).
func (c *Client) Issuer() string {
	if p := c.p.Load(); p != nil {
		return p.doc.Issuer
	}
	return ""
}

// Initialize hace discovery y arma provider, verifier y oauth2.Config.
// Llamadas concurrentes comparten un único discovery.
func (c *Client) Initialize(ctx context.Context) error {
	if c.Ready() {
		return nil
	}
	_, err, _ := c.sf.Do("initialize", func() (any, error) {
		if c.Ready() {
			return nil, nil
		}
		doc, from, err := discover(ctx, c.http, c.cfg.DiscoveryCandidates(), c.cfg.HTTPTimeout)
		if err != nil {
			return nil, err
		}
		c.p.Store(c.build(doc, from))
		logger.From(ctx).Info("oidc client initialized",
			logger.Component("oidc"), logger.Issuer(doc.Issuer), logger.URL(from))
		if c.onReady != nil {
			c.onReady()
		}
		return nil, nil
	})
	return err
}

func (c *Client) build(doc *discoveryDoc, from string) *provider {
	// El contexto queda guardado por el RemoteKeySet para refrescar JWKS:
	// no puede ser el del request.
	pctx := gooidc.ClientContext(context.Background(), c.http)
	pcfg := &gooidc.ProviderConfig{
		IssuerURL:   doc.Issuer,
		AuthURL:     doc.AuthEndpoint,
		TokenURL:    doc.TokenEndpoint,
		UserInfoURL: doc.UserInfoEndpoint,
		JWKSURL:     doc.JWKSURI,
		Algorithms:  doc.SigningAlgs,
	}
	op := pcfg.NewProvider(pctx)

	style := oauth2.AuthStyleInHeader
	if c.cfg.PublicClient() {
		style = oauth2.AuthStyleInParams
	}
	return &provider{
		doc:      doc,
		from:     from,
		oidc:     op,
		verifier: op.Verifier(&gooidc.Config{ClientID: c.cfg.ClientID}),
		oauth2: oauth2.Config{
			ClientID:     c.cfg.ClientID,
			ClientSecret: c.cfg.ClientSecret,
			RedirectURL:  c.cfg.RedirectURL,
			Scopes:       DefaultScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   doc.AuthEndpoint,
				TokenURL:  doc.TokenEndpoint,
				AuthStyle: style,
			},
		},
	}
}

// Start reintenta Initialize en background con backoff exponencial hasta
// que funcione, se agote RetryMaxElapsed o se cancele ctx. El canal se
// cierra al terminar.
func (c *Client) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		log := logger.From(ctx).With(logger.Component("oidc"), logger.Op("Start"))
		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			return struct{}{}, c.Initialize(ctx)
		},
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxElapsedTime(c.cfg.RetryMaxElapsed),
			backoff.WithNotify(func(err error, next time.Duration) {
				log.Warn("oidc discovery retry", logger.Err(err), logger.Duration(next))
			}),
		)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("oidc discovery gave up, client stays not ready", logger.Err(err))
		}
	}()
	return done
}

func (c *Client) ready() (*provider, error) {
	p := c.p.Load()
	if p == nil {
		return nil, ErrClientNotReady
	}
	return p, nil
}

// AuthorizationURL arma la URL del authorization endpoint. No tiene efectos:
// guardar state/nonce es responsabilidad del caller.
func (c *Client) AuthorizationURL(state, nonce string, scopes []string) (string, error) {
	p, err := c.ready()
	if err != nil {
		return "", err
	}
	oc := p.oauth2
	if len(scopes) > 0 {
		oc.Scopes = scopes
	}
	return oc.AuthCodeURL(state, gooidc.Nonce(nonce)), nil
}

// ExchangeCode canjea el code y verifica el ID token. Falla con
// AuthenticationError si el state del callback no es el esperado, si el IdP
// rechaza el code, si la firma/aud/iss del ID token no validan o si su
// nonce no coincide.
func (c *Client) ExchangeCode(ctx context.Context, params CallbackParams, expected repository.AuthorizationRequest) (*TokenSet, error) {
	p, err := c.ready()
	if err != nil {
		return nil, err
	}
	if params.Code == "" {
		return nil, authFailed("missing authorization code", nil)
	}
	if params.State == "" {
		return nil, authFailed("missing state", nil)
	}
	if params.State != expected.State {
		return nil, authFailed("state mismatch, expected "+expected.State+", got: "+params.State, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.HTTPTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	tok, err := p.oauth2.Exchange(ctx, params.Code)
	if err != nil {
		return nil, authFailed("token exchange failed", err)
	}
	rawID, _ := tok.Extra("id_token").(string)
	if rawID == "" {
		return nil, authFailed("id_token not present in token endpoint response", nil)
	}

	idt, err := p.verifier.Verify(gooidc.ClientContext(ctx, c.http), rawID)
	if err != nil {
		return nil, authFailed("id_token verification failed", err)
	}
	if expected.Nonce == "" || idt.Nonce != expected.Nonce {
		return nil, authFailed("nonce mismatch, expected "+expected.Nonce+", got: "+idt.Nonce, nil)
	}

	return &TokenSet{
		AccessToken: tok.AccessToken,
		IDToken:     rawID,
		Subject:     idt.Subject,
		Expiry:      tok.Expiry,
	}, nil
}

// FetchUserInfo llama al userinfo endpoint con el access token.
func (c *Client) FetchUserInfo(ctx context.Context, accessToken string) (types.Identity, error) {
	p, err := c.ready()
	if err != nil {
		return types.Identity{}, err
	}
	if accessToken == "" {
		return types.Identity{}, authFailed("missing access token", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.HTTPTimeout)
	defer cancel()

	ui, err := p.oidc.UserInfo(gooidc.ClientContext(ctx, c.http),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}))
	if err != nil {
		return types.Identity{}, authFailed("userinfo request failed", err)
	}
	var claims types.UserInfoClaims
	if err := ui.Claims(&claims); err != nil {
		return types.Identity{}, authFailed("userinfo response malformed", err)
	}
	if claims.Sub == "" {
		claims.Sub = ui.Subject
	}
	if claims.Email == "" {
		claims.Email = ui.Email
	}
	id := claims.Identity()
	if id.IsZero() {
		return types.Identity{}, authFailed("userinfo without subject", nil)
	}
	return id, nil
}

// LogoutURL arma el logout del hosted UI de Cognito
// (https://<domain>/logout?client_id=..&logout_uri=..). Sin domain usa el
// end_session_endpoint del discovery.
func (c *Client) LogoutURL(returnTo string) (string, error) {
	if d := hostOnly(c.cfg.Domain); d != "" {
		q := url.Values{}
		q.Set("client_id", c.cfg.ClientID)
		q.Set("logout_uri", returnTo)
		return "https://" + d + "/logout?" + q.Encode(), nil
	}

	p, err := c.ready()
	if err != nil {
		return "", err
	}
	if p.doc.EndSessionEndpoint == "" {
		return "", errors.New("oidc: provider has no end_session_endpoint")
	}
	u, err := url.Parse(p.doc.EndSessionEndpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("client_id", c.cfg.ClientID)
	if returnTo != "" {
		q.Set("post_logout_redirect_uri", returnTo)
	}
	u.RawQuery = q.Encode()
	return strings.TrimSuffix(u.String(), "?"), nil
}

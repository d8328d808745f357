// Package app arma el gateway: services, controllers, rutas y middlewares
// globales a partir de dependencias ya construidas.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dropDatabas3/habo/internal/domain/repository"
	authctrl "github.com/dropDatabas3/habo/internal/http/controllers/auth"
	chatctrl "github.com/dropDatabas3/habo/internal/http/controllers/chat"
	healthctrl "github.com/dropDatabas3/habo/internal/http/controllers/health"
	stocksctrl "github.com/dropDatabas3/habo/internal/http/controllers/stocks"
	mw "github.com/dropDatabas3/habo/internal/http/middlewares"
	"github.com/dropDatabas3/habo/internal/http/router"
	authsvc "github.com/dropDatabas3/habo/internal/http/services/auth"
	chatsvc "github.com/dropDatabas3/habo/internal/http/services/chat"
	healthsvc "github.com/dropDatabas3/habo/internal/http/services/health"
	stockssvc "github.com/dropDatabas3/habo/internal/http/services/stocks"
	"github.com/dropDatabas3/habo/internal/rate"
	"github.com/dropDatabas3/habo/internal/session"
)

// Config holds configuration for the app.
type Config struct {
	FrontendURL string
	CORSOrigins []string
	Version     string
	Scopes      []string // vacío = oidc.DefaultScopes

	// MajorStocksTTL cachea /api/stock/major-stocks. <0 deshabilita.
	MajorStocksTTL time.Duration
}

// Deps holds raw dependencies required to build the app.
type Deps struct {
	OIDC     authsvc.OIDCClient
	Tokens   Tokens
	States   repository.StateRepository
	Sessions *session.Manager

	Chat        chatsvc.Completer
	Stocks      stockssvc.Client
	ChatLimiter rate.Limiter // nil = sin límite

	// ─── Observabilidad ───
	// nil en cualquiera de estos = deshabilitado.
	MetricsHandler http.Handler
	Metrics        mw.Middleware
	OnCallback     func(path, result string)
	RedisCheck     func(ctx context.Context) error
}

// Tokens emite y verifica el bearer propio (jwt.Issuer).
type Tokens interface {
	authsvc.TokenMinter
	mw.TokenVerifier
}

// App represents the wired application.
type App struct {
	Handler http.Handler
}

// New creates and wires the application.
func New(cfg Config, deps Deps) (*App, error) {
	if deps.OIDC == nil || deps.Tokens == nil || deps.States == nil || deps.Sessions == nil {
		return nil, errors.New("app: oidc, tokens, states and sessions are required")
	}

	// 1. Build Services
	authServices := authsvc.NewServices(authsvc.Deps{
		OIDC:        deps.OIDC,
		Tokens:      deps.Tokens,
		States:      deps.States,
		FrontendURL: cfg.FrontendURL,
		Scopes:      cfg.Scopes,
		OnCallback:  deps.OnCallback,
	})
	healthService := healthsvc.NewHealthService(healthsvc.Deps{
		OIDCReady:  deps.OIDC.Ready,
		RedisCheck: deps.RedisCheck,
		Version:    cfg.Version,
	})

	// 2. Build Controllers
	rd := router.RouterDeps{
		AuthControllers:  authctrl.NewControllers(authServices, deps.Sessions),
		HealthController: healthctrl.NewHealthController(healthService),
		MetricsHandler:   deps.MetricsHandler,

		Session:       deps.Sessions.Middleware,
		Resolvers:     []mw.Resolver{mw.BearerResolver(deps.Tokens), mw.SessionResolver()},
		Metrics:       deps.Metrics,
		CORSOrigins:   cfg.CORSOrigins,
		ChatRateLimit: deps.ChatLimiter,
	}
	if deps.Chat != nil {
		rd.ChatController = chatctrl.NewChatController(chatsvc.NewChatService(chatsvc.Deps{Client: deps.Chat}))
	}
	if deps.Stocks != nil {
		rd.StocksController = stocksctrl.NewStocksController(stockssvc.NewStocksService(stockssvc.Deps{
			Client:   deps.Stocks,
			MajorTTL: cfg.MajorStocksTTL,
		}))
	}

	// 3. Register Routes + 4. global middlewares (dentro de router.New)
	return &App{Handler: router.New(rd)}, nil
}

package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/habo/internal/cache"
	"github.com/dropDatabas3/habo/internal/config"
	httpx "github.com/dropDatabas3/habo/internal/http"
	jwtx "github.com/dropDatabas3/habo/internal/jwt"
	"github.com/dropDatabas3/habo/internal/observability/logger"
	"github.com/dropDatabas3/habo/internal/oidc"
	"github.com/dropDatabas3/habo/internal/rate"
	"github.com/dropDatabas3/habo/internal/session"
	"github.com/dropDatabas3/habo/internal/statecache"
	upchat "github.com/dropDatabas3/habo/internal/upstream/chat"
	upstocks "github.com/dropDatabas3/habo/internal/upstream/stocks"
)

const chatRatePrefix = "rl:chat"

// Built es la app cableada más lo que el proceso necesita para apagarla.
type Built struct {
	*App

	OIDC *oidc.Client

	// OIDCDone se cierra cuando termina el retry de discovery (éxito,
	// agotado o cancelado).
	OIDCDone <-chan struct{}
}

// Build construye todas las dependencias desde cfg, arranca los procesos de
// fondo (discovery OIDC, sweepers) y arma la app. cleanup cancela los
// procesos de fondo y cierra stores y Redis; se llama después de apagar el
// http.Server.
func Build(ctx context.Context, cfg *config.Config) (*Built, func() error, error) {
	log := logger.From(ctx).With(logger.Component("app"), logger.Op("Build"))

	bgCtx, cancel := context.WithCancel(ctx)
	var closers []func() error
	cleanup := func() error {
		cancel()
		var errs []error
		// orden inverso de apertura
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	fail := func(err error) (*Built, func() error, error) {
		_ = cleanup()
		return nil, nil, err
	}

	// ─── Redis (opcional) ───
	rcfg := cache.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	var rdb *redis.Client
	if rcfg.Enabled() {
		c, err := cache.Connect(ctx, rcfg)
		if err != nil {
			return fail(err)
		}
		rdb = c
		closers = append(closers, rdb.Close)
		log.Info("redis connected", logger.String("addr", rcfg.Addr))
	}

	// ─── State cache ───
	states, err := statecache.New(statecache.Config{
		Kind:          cfg.StateCache.Kind,
		TTL:           cfg.StateCache.TTL,
		SweepInterval: cfg.StateCache.SweepInterval,
	}, rdb)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, states.Close)
	if m, ok := states.(*statecache.Memory); ok {
		m.Start(bgCtx)
	}

	// ─── Sesiones ───
	store, err := session.NewStore(ctx, session.StoreConfig{
		Kind:        cfg.Session.Store,
		RedisPrefix: cfg.Session.RedisPrefix,
		SQLitePath:  cfg.Session.SQLitePath,
		PostgresDSN: cfg.Session.PostgresDSN,
	}, rdb)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, store.Close)

	sessions, err := session.NewManager(store, session.Config{
		Cookie:        cookieConfig(cfg),
		Secret:        cfg.Session.Secret,
		SweepInterval: cfg.Session.SweepInterval,
	})
	if err != nil {
		return fail(err)
	}
	sessions.StartSweeper(bgCtx)

	// ─── Tokens ───
	issuer, err := jwtx.NewIssuer(cfg.Session.Secret, jwtx.WithTTL(cfg.JWT.TTL))
	if err != nil {
		return fail(err)
	}

	// ─── Métricas ───
	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{})
	if err != nil {
		return fail(fmt.Errorf("app: register metrics: %w", err))
	}
	httpx.SetOIDCReady(false)

	// ─── OIDC ───
	oc := oidc.New(oidc.Config{
		ClientID:        cfg.OIDC.ClientID,
		ClientSecret:    cfg.OIDC.ClientSecret,
		RedirectURL:     cfg.RedirectURI(),
		Domain:          cfg.OIDC.Domain,
		Region:          cfg.OIDC.Region,
		UserPoolID:      cfg.OIDC.UserPoolID,
		DiscoveryURLs:   cfg.OIDC.DiscoveryURLs,
		HTTPTimeout:     cfg.OIDC.HTTPTimeout,
		RetryMaxElapsed: cfg.OIDC.RetryMaxElapsed,
	}, oidc.WithReadyHook(func() { httpx.SetOIDCReady(true) }))
	oidcDone := oc.Start(bgCtx)
	closers = append(closers, func() error {
		<-oidcDone
		return nil
	})

	// ─── Upstreams ───
	chatClient := upchat.New(upchat.Config{APIKey: cfg.Chat.APIKey, BaseURL: cfg.Chat.BaseURL})
	if !chatClient.Configured() {
		log.Warn("DEEPSEEK_API_KEY not set, /api/chat will fail")
	}
	stocksClient := upstocks.New(upstocks.Config{
		APIKey:     cfg.Stocks.APIKey,
		BaseURL:    cfg.Stocks.BaseURL,
		RatePerMin: cfg.Stocks.RatePerMin,
	})

	// ─── Rate limit del chat ───
	var limiter rate.Limiter
	if cfg.Chat.RateLimit > 0 {
		if rdb != nil {
			limiter = rate.NewRedisLimiter(rdb, chatRatePrefix, cfg.Chat.RateLimit, cfg.Chat.RateWindow)
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Chat.RateLimit, cfg.Chat.RateWindow)
		}
	}

	var redisCheck func(ctx context.Context) error
	if rdb != nil {
		redisCheck = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	a, err := New(Config{
		FrontendURL: cfg.FrontendURL(),
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
		Version:     cfg.App.Version,
		Scopes:      cfg.OIDC.Scopes,
	}, Deps{
		OIDC:           oc,
		Tokens:         issuer,
		States:         states,
		Sessions:       sessions,
		Chat:           chatClient,
		Stocks:         stocksClient,
		ChatLimiter:    limiter,
		MetricsHandler: metricsHandler,
		Metrics:        httpx.WithMetrics,
		OnCallback:     httpx.RecordAuthCallback,
		RedisCheck:     redisCheck,
	})
	if err != nil {
		return fail(err)
	}

	log.Info("app wired",
		logger.String("state_cache", cfg.StateCache.Kind),
		logger.String("session_store", firstNonEmpty(cfg.Session.Store, "memory")),
		logger.Bool("redis", rdb != nil),
		logger.Bool("production", cfg.IsProduction()),
	)
	return &Built{App: a, OIDC: oc, OIDCDone: oidcDone}, cleanup, nil
}

// cookieConfig: en prod la cookie cruza sitios (frontend y backend en
// dominios distintos) y necesita SameSite=None + Secure.
func cookieConfig(cfg *config.Config) session.CookieConfig {
	cc := session.CookieConfig{
		Name:     cfg.Session.CookieName,
		Domain:   cfg.Session.CookieDomain,
		SameSite: "lax",
		TTL:      cfg.Session.TTL,
	}
	if cfg.IsProduction() {
		cc.SameSite = "none"
		cc.Secure = true
	}
	return cc
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

package router

import (
	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/habo/internal/http/controllers/auth"
	chatctrl "github.com/dropDatabas3/habo/internal/http/controllers/chat"
	stocksctrl "github.com/dropDatabas3/habo/internal/http/controllers/stocks"
	mw "github.com/dropDatabas3/habo/internal/http/middlewares"
	"github.com/dropDatabas3/habo/internal/rate"
)

type APIRouterDeps struct {
	User          *authctrl.Controllers
	Chat          *chatctrl.ChatController
	Stocks        *stocksctrl.StocksController
	ChatRateLimit rate.Limiter
}

// RegisterAPIRoutes registra /api/*. user y chat requieren identidad; stock
// es público.
func RegisterAPIRoutes(r chi.Router, deps APIRouterDeps) {
	r.Route("/api", func(r chi.Router) {
		r.Use(mw.WithNoStore())

		if deps.User != nil {
			r.With(mw.RequireIdentity()).Get("/user", deps.User.User.Me)
		}
		if deps.Chat != nil {
			r.With(
				mw.RequireIdentity(),
				mw.WithRateLimit(mw.RateLimitConfig{Limiter: deps.ChatRateLimit, Scope: "chat"}),
			).Post("/chat", deps.Chat.Chat)
		}
		if deps.Stocks != nil {
			r.Route("/stock", func(r chi.Router) {
				r.Get("/quote/{symbol}", deps.Stocks.Quote)
				r.Get("/profile/{symbol}", deps.Stocks.Profile)
				r.Get("/major-stocks", deps.Stocks.MajorStocks)
			})
		}
	})
}

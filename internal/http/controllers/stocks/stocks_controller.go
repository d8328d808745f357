// Package stocks contiene los controllers de /api/stock/*.
package stocks

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/habo/internal/http/errors"
	"github.com/dropDatabas3/habo/internal/http/helpers"
	svc "github.com/dropDatabas3/habo/internal/http/services/stocks"
	"github.com/dropDatabas3/habo/internal/observability/logger"
	upstocks "github.com/dropDatabas3/habo/internal/upstream/stocks"
)

var (
	errQuote   = httperrors.ErrUpstreamUnavailable.WithMessage("Failed to fetch stock quote")
	errProfile = httperrors.ErrUpstreamUnavailable.WithMessage("Failed to fetch company profile")
	errMajor   = httperrors.ErrUpstreamUnavailable.WithMessage("Failed to fetch stock data")
	errSymbol  = httperrors.ErrInvalidParameter.WithMessage("Invalid stock symbol")
)

type StocksController struct {
	service svc.StocksService
}

func NewStocksController(service svc.StocksService) *StocksController {
	return &StocksController{service: service}
}

// Quote maneja GET /api/stock/quote/{symbol}
func (c *StocksController) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	q, err := c.service.Quote(r.Context(), symbol)
	if err != nil {
		c.fail(w, r, "Quote", symbol, errQuote, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, q)
}

// Profile maneja GET /api/stock/profile/{symbol}
func (c *StocksController) Profile(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	p, err := c.service.Profile(r.Context(), symbol)
	if err != nil {
		c.fail(w, r, "Profile", symbol, errProfile, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, p)
}

// MajorStocks maneja GET /api/stock/major-stocks
func (c *StocksController) MajorStocks(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.MajorStocks(r.Context())
	if err != nil {
		c.fail(w, r, "MajorStocks", "", errMajor, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

func (c *StocksController) fail(w http.ResponseWriter, r *http.Request, op, symbol string, base *httperrors.AppError, err error) {
	if errors.Is(err, upstocks.ErrInvalidSymbol) {
		httperrors.WriteError(w, errSymbol)
		return
	}
	logger.From(r.Context()).Error("stock request failed",
		logger.Layer("controller"), logger.Op("StocksController."+op), logger.Symbol(symbol), logger.Err(err))
	httperrors.WriteError(w, base.WithDetail(err.Error()).WithCause(err))
}

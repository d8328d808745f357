// Package stocks contiene el service de cotizaciones.
package stocks

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/habo/internal/observability/logger"
	upstocks "github.com/dropDatabas3/habo/internal/upstream/stocks"
)

const DefaultMajorTTL = 30 * time.Second

// Client es lo que usa el service de upstream/stocks.Client.
type Client interface {
	Quote(ctx context.Context, symbol string) (upstocks.Quote, error)
	Profile(ctx context.Context, symbol string) (upstocks.Profile, error)
	Major(ctx context.Context, list []upstocks.MajorStock) (map[string]upstocks.Summary, error)
}

type StocksService interface {
	Quote(ctx context.Context, symbol string) (upstocks.Quote, error)
	Profile(ctx context.Context, symbol string) (upstocks.Profile, error)
	MajorStocks(ctx context.Context) (map[string]upstocks.Summary, error)
}

type Deps struct {
	Client   Client
	MajorTTL time.Duration // cache del dashboard; <0 deshabilita
}

type stocksService struct {
	deps  Deps
	major *cache.Cache
}

const majorKey = "major"

func NewStocksService(deps Deps) StocksService {
	if deps.MajorTTL == 0 {
		deps.MajorTTL = DefaultMajorTTL
	}
	s := &stocksService{deps: deps}
	if deps.MajorTTL > 0 {
		s.major = cache.New(deps.MajorTTL, 2*deps.MajorTTL)
	}
	return s
}

func (s *stocksService) Quote(ctx context.Context, symbol string) (upstocks.Quote, error) {
	return s.deps.Client.Quote(ctx, symbol)
}

func (s *stocksService) Profile(ctx context.Context, symbol string) (upstocks.Profile, error) {
	return s.deps.Client.Profile(ctx, symbol)
}

// MajorStocks cachea el resultado completo unos segundos: el dashboard lo
// pide en cada render y son 14 llamadas a Finnhub.
func (s *stocksService) MajorStocks(ctx context.Context) (map[string]upstocks.Summary, error) {
	if s.major != nil {
		if v, ok := s.major.Get(majorKey); ok {
			return v.(map[string]upstocks.Summary), nil
		}
	}
	out, err := s.deps.Client.Major(ctx, upstocks.MajorStocks)
	if err != nil {
		return nil, err
	}
	// un resultado vacío probablemente es Finnhub caído; no se cachea
	if s.major != nil && len(out) > 0 {
		s.major.SetDefault(majorKey, out)
	}
	logger.From(ctx).Debug("major stocks", logger.Layer("service"), logger.Component("stocks"), logger.Count(len(out)))
	return out, nil
}

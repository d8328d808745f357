package stocks

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/habo/internal/observability/logger"
)

// MajorStock es un símbolo del dashboard con su clave en la respuesta.
type MajorStock struct {
	Symbol string
	Key    string
}

var MajorStocks = []MajorStock{
	{"NVDA", "nvidia"},
	{"AAPL", "apple"},
	{"2222.SR", "saudiAramco"},
	{"COST", "costco"},
	{"AMZN", "amazon"},
	{"MSFT", "microsoft"},
	{"GOOGL", "google"},
}

// Summary combina quote y profile de un símbolo.
type Summary struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previousClose"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        float64 `json:"volume"`
	Description   string  `json:"description"`
}

func Summarize(q Quote, p Profile) Summary {
	s := Summary{
		Symbol:        p.Ticker,
		Name:          p.Name,
		Price:         q.Current,
		PreviousClose: q.PreviousClose,
		Change:        q.Current - q.PreviousClose,
		High:          q.High,
		Low:           q.Low,
		Volume:        q.Volume,
		Description:   describe(p),
	}
	if q.PreviousClose != 0 {
		s.ChangePercent = (q.Current - q.PreviousClose) / q.PreviousClose * 100
	}
	return s
}

func describe(p Profile) string {
	if p.Industry == "" {
		return p.Name + " is a publicly traded company."
	}
	d := p.Name + " is a company in the " + p.Industry + " industry."
	if p.Currency != "" {
		d += " Trading in " + p.Currency + "."
	}
	return d
}

const majorConcurrency = 4

// Major trae quote y profile de cada símbolo en paralelo. Un símbolo que
// falla se loguea y queda fuera del mapa; solo se devuelve error si el ctx
// se cancela.
func (c *Client) Major(ctx context.Context, list []MajorStock) (map[string]Summary, error) {
	log := logger.From(ctx).With(logger.Component("stocks"), logger.Op("Major"))

	var (
		mu  sync.Mutex
		out = make(map[string]Summary, len(list))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(majorConcurrency)
	for _, ms := range list {
		g.Go(func() error {
			q, err := c.Quote(gctx, ms.Symbol)
			if err != nil {
				log.Warn("quote failed", logger.Symbol(ms.Symbol), logger.Err(err))
				return nil
			}
			p, err := c.Profile(gctx, ms.Symbol)
			if err != nil {
				log.Warn("profile failed", logger.Symbol(ms.Symbol), logger.Err(err))
				return nil
			}
			mu.Lock()
			out[ms.Key] = Summarize(q, p)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Debug("major stocks fetched", logger.Count(len(out)))
	return out, nil
}

package stocks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dropDatabas3/habo/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFinnhub responde /quote y /stock/profile2 desde mapas por símbolo.
func fakeFinnhub(t *testing.T, quotes, profiles map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		sym := r.URL.Query().Get("symbol")
		var body string
		var ok bool
		switch r.URL.Path {
		case "/quote":
			body, ok = quotes[sym]
		case "/stock/profile2":
			body, ok = profiles[sym]
		}
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return New(Config{APIKey: "test-key", BaseURL: srv.URL, RatePerMin: 6000})
}

func TestQuote(t *testing.T) {
	srv := fakeFinnhub(t, map[string]string{
		"AAPL": `{"c":195.5,"d":1.5,"dp":0.77,"h":196,"l":193,"o":194,"pc":194,"t":1700000000}`,
		"ZZZZ": `{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`,
	}, nil)
	c := newTestClient(srv)

	q, err := c.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 195.5, q.Current)
	assert.Equal(t, 194.0, q.PreviousClose)
	assert.Zero(t, q.Volume)

	_, err = c.Quote(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrInvalidData)
	assert.ErrorIs(t, err, upstream.ErrUnavailable)
}

func TestProfileRequiresNameAndTicker(t *testing.T) {
	srv := fakeFinnhub(t, nil, map[string]string{
		"MSFT": `{"name":"Microsoft Corp","ticker":"MSFT","finnhubIndustry":"Technology","currency":"USD"}`,
		"NONE": `{}`,
	})
	c := newTestClient(srv)

	p, err := c.Profile(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "Technology", p.Industry)

	_, err = c.Profile(context.Background(), "NONE")
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestInvalidSymbolIsRejectedLocally(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := c.Quote(context.Background(), "AAPL&token=x")
	assert.ErrorIs(t, err, ErrInvalidSymbol)
	assert.True(t, ValidSymbol("2222.SR"))
	assert.False(t, ValidSymbol(strings.Repeat("A", 21)))
}

func TestUpstreamErrorHidesToken(t *testing.T) {
	c := New(Config{APIKey: "secret-token", BaseURL: "http://127.0.0.1:1"})
	_, err := c.Quote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream.ErrUnavailable)
	assert.NotContains(t, err.Error(), "secret-token")
}

func TestSummarize(t *testing.T) {
	s := Summarize(
		Quote{Current: 110, PreviousClose: 100, High: 111, Low: 99, Volume: 0},
		Profile{Name: "Acme", Ticker: "ACME", Industry: "Retail", Currency: "USD"},
	)
	assert.Equal(t, 10.0, s.Change)
	assert.InDelta(t, 10.0, s.ChangePercent, 0.0001)
	assert.Equal(t, "Acme is a company in the Retail industry. Trading in USD.", s.Description)

	s = Summarize(Quote{Current: 5}, Profile{Name: "Solo", Ticker: "S"})
	assert.Zero(t, s.ChangePercent)
	assert.Equal(t, "Solo is a publicly traded company.", s.Description)
}

func TestMajorOmitsFailedSymbols(t *testing.T) {
	srv := fakeFinnhub(t,
		map[string]string{
			"NVDA": `{"c":900,"h":910,"l":880,"o":890,"pc":870,"t":1}`,
			"AAPL": `{"c":195,"h":196,"l":193,"o":194,"pc":194,"t":1}`,
		},
		map[string]string{
			"NVDA": `{"name":"NVIDIA Corp","ticker":"NVDA"}`,
		},
	)
	c := newTestClient(srv)

	out, err := c.Major(context.Background(), MajorStocks)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "NVDA", out["nvidia"].Symbol)
	assert.InDelta(t, 30.0, out["nvidia"].Change, 0.0001)
}

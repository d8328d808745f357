package stocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	upstocks "github.com/dropDatabas3/habo/internal/upstream/stocks"
)

type fakeClient struct {
	majorCalls int
	major      map[string]upstocks.Summary
}

func (f *fakeClient) Quote(context.Context, string) (upstocks.Quote, error) {
	return upstocks.Quote{Current: 10}, nil
}

func (f *fakeClient) Profile(context.Context, string) (upstocks.Profile, error) {
	return upstocks.Profile{Name: "Apple Inc", Ticker: "AAPL"}, nil
}

func (f *fakeClient) Major(_ context.Context, list []upstocks.MajorStock) (map[string]upstocks.Summary, error) {
	f.majorCalls++
	return f.major, nil
}

func TestMajorStocksIsCached(t *testing.T) {
	fc := &fakeClient{major: map[string]upstocks.Summary{"nvidia": {Symbol: "NVDA"}}}
	svc := NewStocksService(Deps{Client: fc})

	for i := 0; i < 3; i++ {
		out, err := svc.MajorStocks(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "NVDA", out["nvidia"].Symbol)
	}
	assert.Equal(t, 1, fc.majorCalls)
}

func TestMajorStocksEmptyNotCached(t *testing.T) {
	fc := &fakeClient{major: map[string]upstocks.Summary{}}
	svc := NewStocksService(Deps{Client: fc})

	_, _ = svc.MajorStocks(context.Background())
	_, _ = svc.MajorStocks(context.Background())
	assert.Equal(t, 2, fc.majorCalls)
}

func TestMajorStocksCacheDisabled(t *testing.T) {
	fc := &fakeClient{major: map[string]upstocks.Summary{"nvidia": {Symbol: "NVDA"}}}
	svc := NewStocksService(Deps{Client: fc, MajorTTL: -1})

	_, _ = svc.MajorStocks(context.Background())
	_, _ = svc.MajorStocks(context.Background())
	assert.Equal(t, 2, fc.majorCalls)
}

func TestQuoteAndProfilePassThrough(t *testing.T) {
	svc := NewStocksService(Deps{Client: &fakeClient{}})

	q, err := svc.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 10.0, q.Current)

	p, err := svc.Profile(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", p.Ticker)
}

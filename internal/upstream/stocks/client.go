// Package stocks es el cliente de Finnhub (quote y profile2) con throttle
// del lado cliente.
package stocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dropDatabas3/habo/internal/upstream"
)

const (
	DefaultBaseURL    = "https://finnhub.io/api/v1"
	DefaultRatePerMin = 60 // free tier
	DefaultTimeout    = 10 * time.Second

	serviceName = "Finnhub"
)

var (
	ErrInvalidSymbol = errors.New("invalid stock symbol")
	ErrInvalidData   = errors.New("invalid stock data")
)

var symbolRe = regexp.MustCompile(`^[A-Za-z0-9.\-:]{1,20}$`)

// ValidSymbol acepta tickers tipo "AAPL", "2222.SR" o "BRK-B".
func ValidSymbol(s string) bool { return symbolRe.MatchString(s) }

type Config struct {
	APIKey     string
	BaseURL    string
	RatePerMin int
	Timeout    time.Duration
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func New(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RatePerMin <= 0 {
		cfg.RatePerMin = DefaultRatePerMin
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMin)), max(1, cfg.RatePerMin/2)),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Quote con los campos de /quote. Change y PercentChange llegan null para
// símbolos sin cotización.
type Quote struct {
	Current       float64  `json:"c"`
	Change        *float64 `json:"d"`
	PercentChange *float64 `json:"dp"`
	High          float64  `json:"h"`
	Low           float64  `json:"l"`
	Open          float64  `json:"o"`
	PreviousClose float64  `json:"pc"`
	Volume        float64  `json:"v"`
	Timestamp     int64    `json:"t"`
}

// Profile con los campos de /stock/profile2.
type Profile struct {
	Country          string  `json:"country,omitempty"`
	Currency         string  `json:"currency,omitempty"`
	Exchange         string  `json:"exchange,omitempty"`
	Industry         string  `json:"finnhubIndustry,omitempty"`
	IPO              string  `json:"ipo,omitempty"`
	Logo             string  `json:"logo,omitempty"`
	MarketCap        float64 `json:"marketCapitalization,omitempty"`
	Name             string  `json:"name"`
	Phone            string  `json:"phone,omitempty"`
	ShareOutstanding float64 `json:"shareOutstanding,omitempty"`
	Ticker           string  `json:"ticker"`
	WebURL           string  `json:"weburl,omitempty"`
}

type rawQuote struct {
	C  *float64 `json:"c"`
	D  *float64 `json:"d"`
	DP *float64 `json:"dp"`
	H  *float64 `json:"h"`
	L  *float64 `json:"l"`
	O  *float64 `json:"o"`
	PC *float64 `json:"pc"`
	V  *float64 `json:"v"`
	T  int64    `json:"t"`
}

func (q rawQuote) validate() (Quote, error) {
	// Finnhub responde 200 con todo en 0 para símbolos desconocidos.
	if q.C == nil || *q.C == 0 || q.PC == nil || q.H == nil || q.L == nil {
		return Quote{}, ErrInvalidData
	}
	out := Quote{
		Current:       *q.C,
		Change:        q.D,
		PercentChange: q.DP,
		High:          *q.H,
		Low:           *q.L,
		PreviousClose: *q.PC,
		Timestamp:     q.T,
	}
	if q.O != nil {
		out.Open = *q.O
	}
	if q.V != nil {
		out.Volume = *q.V
	}
	return out, nil
}

// Quote devuelve la cotización validada.
func (c *Client) Quote(ctx context.Context, symbol string) (Quote, error) {
	var raw rawQuote
	if err := c.get(ctx, "/quote", symbol, &raw); err != nil {
		return Quote{}, err
	}
	q, err := raw.validate()
	if err != nil {
		return Quote{}, &upstream.Error{Service: serviceName, Err: fmt.Errorf("quote %s: %w", symbol, err)}
	}
	return q, nil
}

// Profile devuelve el perfil validado (name y ticker obligatorios).
func (c *Client) Profile(ctx context.Context, symbol string) (Profile, error) {
	var p Profile
	if err := c.get(ctx, "/stock/profile2", symbol, &p); err != nil {
		return Profile{}, err
	}
	if p.Name == "" || p.Ticker == "" {
		return Profile{}, &upstream.Error{Service: serviceName, Err: fmt.Errorf("profile %s: %w", symbol, ErrInvalidData)}
	}
	return p, nil
}

func (c *Client) get(ctx context.Context, path, symbol string, out any) error {
	if !ValidSymbol(symbol) {
		return ErrInvalidSymbol
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return &upstream.Error{Service: serviceName, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("token", c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("stocks: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &upstream.Error{Service: serviceName, Err: redactToken(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return upstream.FromResponse(serviceName, resp)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return &upstream.Error{Service: serviceName, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// redactToken saca la URL (con ?token=) de los *url.Error.
func redactToken(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}

package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dropDatabas3/habo/internal/observability/logger"
)

type discoveryDoc struct {
	Issuer             string   `json:"issuer"`
	AuthEndpoint       string   `json:"authorization_endpoint"`
	TokenEndpoint      string   `json:"token_endpoint"`
	UserInfoEndpoint   string   `json:"userinfo_endpoint"`
	JWKSURI            string   `json:"jwks_uri"`
	EndSessionEndpoint string   `json:"end_session_endpoint"`
	SigningAlgs        []string `json:"id_token_signing_alg_values_supported"`
}

func (d *discoveryDoc) validate() error {
	switch {
	case d.Issuer == "":
		return errors.New("missing issuer")
	case d.AuthEndpoint == "":
		return errors.New("missing authorization_endpoint")
	case d.TokenEndpoint == "":
		return errors.New("missing token_endpoint")
	case d.JWKSURI == "":
		return errors.New("missing jwks_uri")
	}
	return nil
}

// discover prueba las URLs en orden y retorna el primer documento válido.
// Cada candidato tiene su propio timeout; solo la cancelación de ctx corta
// el recorrido.
func discover(ctx context.Context, hc *http.Client, candidates []string, timeout time.Duration) (*discoveryDoc, string, error) {
	log := logger.From(ctx).With(logger.Component("oidc"), logger.Op("discover"))
	derr := &DiscoveryError{}
	for _, u := range candidates {
		doc, err := fetchDiscoveryWithTimeout(ctx, hc, u, timeout)
		if err == nil {
			return doc, u, nil
		}
		log.Warn("discovery url failed", logger.URL(u), logger.Err(err))
		derr.Attempts = append(derr.Attempts, DiscoveryAttempt{URL: u, Err: err})
		if ctx.Err() != nil {
			break
		}
	}
	return nil, "", derr
}

func fetchDiscoveryWithTimeout(ctx context.Context, hc *http.Client, u string, timeout time.Duration) (*discoveryDoc, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fetchDiscovery(ctx, hc, u)
}

func fetchDiscovery(ctx context.Context, hc *http.Client, u string) (*discoveryDoc, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("discovery http %d", resp.StatusCode)
	}
	var doc discoveryDoc
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("malformed discovery document: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("malformed discovery document: %w", err)
	}
	return &doc, nil
}

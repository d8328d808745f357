// Package oidc es el cliente OpenID Connect contra el IdP (Cognito):
// discovery con URLs alternativas, armado de la URL de autorización,
// canje del code con verificación de state/nonce y userinfo.
package oidc

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultScopes son los scopes que pide /auth/login.
var DefaultScopes = []string{"email", "openid", "phone"}

const (
	DefaultHTTPTimeout     = 10 * time.Second
	DefaultRetryMaxElapsed = 15 * time.Minute
)

// Config del cliente.
type Config struct {
	ClientID     string
	ClientSecret string // vacío = public client
	RedirectURL  string // <backend>/auth/callback

	// Cognito: hosted UI domain y user pool. Con ellos se arman las dos URLs
	// de discovery.
	Domain     string
	Region     string
	UserPoolID string

	// DiscoveryURLs reemplaza a las URLs derivadas de Cognito.
	DiscoveryURLs []string

	HTTPTimeout     time.Duration
	RetryMaxElapsed time.Duration
}

// PublicClient reporta si el cliente no tiene secreto.
func (c Config) PublicClient() bool { return strings.TrimSpace(c.ClientSecret) == "" }

// DiscoveryCandidates retorna las URLs de discovery en orden: primero el
// dominio del hosted UI, después el endpoint canónico cognito-idp.
func (c Config) DiscoveryCandidates() []string {
	if len(c.DiscoveryURLs) > 0 {
		out := make([]string, 0, len(c.DiscoveryURLs))
		for _, u := range c.DiscoveryURLs {
			if u = strings.TrimSpace(u); u != "" {
				out = append(out, u)
			}
		}
		return out
	}

	var out []string
	if d := hostOnly(c.Domain); d != "" {
		out = append(out, "https://"+d+"/.well-known/openid-configuration")
	}
	if c.Region != "" && c.UserPoolID != "" {
		out = append(out, fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s/.well-known/openid-configuration",
			c.Region, c.UserPoolID))
	}
	return out
}

// hostOnly acepta "x.auth.region.amazoncognito.com" o con esquema.
func hostOnly(domain string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return ""
	}
	if strings.Contains(domain, "://") {
		if u, err := url.Parse(domain); err == nil {
			return u.Host
		}
	}
	return strings.TrimSuffix(domain, "/")
}

func (c Config) withDefaults() Config {
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.RetryMaxElapsed <= 0 {
		c.RetryMaxElapsed = DefaultRetryMaxElapsed
	}
	return c
}

// Package oidctest levanta un IdP OIDC mínimo sobre httptest para tests:
// discovery, token, userinfo y JWKS, con ID tokens RS256.
package oidctest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/habo/internal/domain/types"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const keyID = "oidctest-key"

// Grant es lo que el IdP asocia a un code emitido.
type Grant struct {
	Nonce  string
	Claims types.UserInfoClaims
}

// Server es el IdP falso.
type Server struct {
	*httptest.Server

	ClientID     string
	ClientSecret string

	key *rsa.PrivateKey

	mu         sync.Mutex
	codes      map[string]Grant
	tokens     map[string]types.UserInfoClaims
	discoveryN int

	// Overrides para escenarios de falla.
	TokenStatus      int  // != 0 fuerza el status del token endpoint
	UserInfoStatus   int  // != 0 fuerza el status de userinfo
	OmitIDToken      bool // token response sin id_token
	DiscoveryFailing bool // discovery responde 503
}

// New arranca el servidor y lo cierra con t.Cleanup.
func New(t testing.TB, clientID string) *Server {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	s := &Server{
		ClientID: clientID,
		key:      key,
		codes:    map[string]Grant{},
		tokens:   map[string]types.UserInfoClaims{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", s.handleDiscovery)
	mux.HandleFunc("/oauth2/token", s.handleToken)
	mux.HandleFunc("/oauth2/userInfo", s.handleUserInfo)
	mux.HandleFunc("/.well-known/jwks.json", s.handleJWKS)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Issuer es la URL base del servidor.
func (s *Server) Issuer() string { return s.URL }

// DiscoveryURL es la URL del documento de discovery.
func (s *Server) DiscoveryURL() string { return s.URL + "/.well-known/openid-configuration" }

// DiscoveryHits cuenta los requests a discovery.
func (s *Server) DiscoveryHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discoveryN
}

// SetDiscoveryFailing activa o desactiva la falla de discovery.
func (s *Server) SetDiscoveryFailing(v bool) {
	s.mu.Lock()
	s.DiscoveryFailing = v
	s.mu.Unlock()
}

// IssueCode registra un code que el token endpoint va a canjear una vez,
// emitiendo un ID token con el nonce dado.
func (s *Server) IssueCode(nonce string, claims types.UserInfoClaims) string {
	code := randomString()
	s.mu.Lock()
	s.codes[code] = Grant{Nonce: nonce, Claims: claims}
	s.mu.Unlock()
	return code
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.discoveryN++
	failing := s.DiscoveryFailing
	s.mu.Unlock()
	if failing {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                s.URL,
		"authorization_endpoint":                s.URL + "/oauth2/authorize",
		"token_endpoint":                        s.URL + "/oauth2/token",
		"userinfo_endpoint":                     s.URL + "/oauth2/userInfo",
		"jwks_uri":                              s.URL + "/.well-known/jwks.json",
		"response_types_supported":              []string{"code"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
	})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		oauthError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if s.TokenStatus != 0 {
		oauthError(w, s.TokenStatus, "server_error", "forced failure")
		return
	}
	if r.PostForm.Get("grant_type") != "authorization_code" {
		oauthError(w, http.StatusBadRequest, "unsupported_grant_type", "")
		return
	}
	clientID, secret, ok := r.BasicAuth()
	if !ok {
		clientID, secret = r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
	}
	if clientID != s.ClientID || secret != s.ClientSecret {
		oauthError(w, http.StatusUnauthorized, "invalid_client", "")
		return
	}

	code := r.PostForm.Get("code")
	s.mu.Lock()
	g, ok := s.codes[code]
	delete(s.codes, code)
	s.mu.Unlock()
	if !ok {
		oauthError(w, http.StatusBadRequest, "invalid_grant", "authorization code is invalid or already used")
		return
	}

	access := randomString()
	s.mu.Lock()
	s.tokens[access] = g.Claims
	s.mu.Unlock()

	resp := map[string]any{
		"access_token": access,
		"token_type":   "Bearer",
		"expires_in":   3600,
	}
	if !s.OmitIDToken {
		idt, err := s.SignIDToken(g.Claims.Sub, g.Nonce, s.ClientID, time.Hour)
		if err != nil {
			oauthError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		resp["id_token"] = idt
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}

// SignIDToken firma un ID token con la clave del servidor.
func (s *Server) SignIDToken(sub, nonce, aud string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwtv5.MapClaims{
		"iss": s.URL,
		"sub": sub,
		"aud": aud,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if nonce != "" {
		claims["nonce"] = nonce
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims)
	tk.Header["kid"] = keyID
	return tk.SignedString(s.key)
}

func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	if s.UserInfoStatus != 0 {
		http.Error(w, "forced failure", s.UserInfoStatus)
		return
	}
	access := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	claims, ok := s.tokens[access]
	s.mu.Unlock()
	if !ok {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, claims)
}

func (s *Server) handleJWKS(w http.ResponseWriter, r *http.Request) {
	pub := s.key.PublicKey
	writeJSON(w, http.StatusOK, map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": keyID,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
}

func oauthError(w http.ResponseWriter, status int, code, desc string) {
	body := map[string]string{"error": code}
	if desc != "" {
		body["error_description"] = desc
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func randomString() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

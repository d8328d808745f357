// Package jwt emite y valida el bearer token de la app (HS256, 24h).
//
// El token no se guarda server-side ni se revoca: expira solo.
package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/habo/internal/domain/types"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const (
	DefaultIssuer = "habo"
	DefaultTTL    = 24 * time.Hour
)

// ErrInvalidToken cubre token malformado, vencido, firma inválida o
// algoritmo inesperado. No se distinguen hacia afuera.
var ErrInvalidToken = errors.New("invalid token")

// Claims del bearer token.
type Claims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	jwtv5.RegisteredClaims
}

// Issuer firma tokens HS256 con el secreto del servidor.
type Issuer struct {
	Iss    string
	TTL    time.Duration
	secret []byte
	now    func() time.Time
}

// Option personaliza el Issuer.
type Option func(*Issuer)

// WithTTL cambia la vida del token (default 24h).
func WithTTL(d time.Duration) Option {
	return func(i *Issuer) {
		if d > 0 {
			i.TTL = d
		}
	}
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer crea el issuer. El secreto no puede ser vacío.
func NewIssuer(secret string, opts ...Option) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt: empty signing secret")
	}
	i := &Issuer{
		Iss:    DefaultIssuer,
		TTL:    DefaultTTL,
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, o := range opts {
		o(i)
	}
	return i, nil
}

// Mint emite un token para la identidad y retorna su expiración.
func (i *Issuer) Mint(id types.Identity) (string, time.Time, error) {
	if id.IsZero() {
		return "", time.Time{}, errors.New("jwt: identity without subject")
	}
	now := i.now().UTC()
	exp := now.Add(i.TTL)
	claims := Claims{
		Email:    id.Email,
		Username: id.Username,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.Iss,
			Subject:   id.Subject,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, exp, nil
}

// Verify valida firma, algoritmo, issuer y exp, y retorna la identidad.
// Cualquier falla es ErrInvalidToken.
func (i *Issuer) Verify(raw string) (types.Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Identity{}, ErrInvalidToken
	}

	var claims Claims
	tk, err := jwtv5.ParseWithClaims(raw, &claims, func(*jwtv5.Token) (any, error) {
		return i.secret, nil
	},
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithIssuer(i.Iss),
		jwtv5.WithTimeFunc(i.now),
	)
	if err != nil || !tk.Valid || claims.Subject == "" {
		return types.Identity{}, ErrInvalidToken
	}

	return types.Identity{
		Subject:  claims.Subject,
		Email:    claims.Email,
		Username: claims.Username,
	}, nil
}

// Package tokens genera los valores opacos del flujo (state, nonce, session id)
// y firma/verifica valores de cookie.
package tokens

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// DefaultBytes es el tamaño de state, nonce y session id (256 bits).
const DefaultBytes = 32

// ErrBadSignature indica un valor firmado alterado o con formato inválido.
var ErrBadSignature = errors.New("tokens: bad signature")

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
func GenerateOpaqueToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = DefaultBytes
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("tokens: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateStateNonce genera un par state/nonce independiente.
func GenerateStateNonce() (state, nonce string, err error) {
	if state, err = GenerateOpaqueToken(DefaultBytes); err != nil {
		return "", "", err
	}
	if nonce, err = GenerateOpaqueToken(DefaultBytes); err != nil {
		return "", "", err
	}
	return state, nonce, nil
}

// SHA256Base64URL devuelve sha256(input) en base64url sin padding. Se usa
// para no guardar session ids en claro en el store.
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Signer firma valores con HMAC-SHA256 usando una clave derivada por HKDF
// del secreto de sesión, así el mismo secreto no se reusa tal cual para el
// JWT y para las cookies.
type Signer struct {
	key []byte
}

// NewSigner deriva la clave de firma para el propósito indicado (info).
func NewSigner(secret []byte, info string) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("tokens: empty secret")
	}
	key := make([]byte, sha256.Size)
	r := hkdf.New(sha256.New, secret, nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("tokens: derive key: %w", err)
	}
	return &Signer{key: key}, nil
}

// Sign retorna "value.mac".
func (s *Signer) Sign(value string) string {
	return value + "." + s.mac(value)
}

// Verify valida "value.mac" y retorna value.
func (s *Signer) Verify(signed string) (string, error) {
	i := strings.LastIndexByte(signed, '.')
	if i <= 0 || i == len(signed)-1 {
		return "", ErrBadSignature
	}
	value, got := signed[:i], signed[i+1:]
	if !hmac.Equal([]byte(got), []byte(s.mac(value))) {
		return "", ErrBadSignature
	}
	return value, nil
}

func (s *Signer) mac(value string) string {
	m := hmac.New(sha256.New, s.key)
	m.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil))
}

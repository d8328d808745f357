package session

import (
	"net/http"
	"strings"
	"time"
)

// ParseSameSite convierte el string de config a http.SameSite.
// Acepta "", "lax", "strict", "none". Default: Lax.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// CookieConfig son los flags de la cookie de sesión.
type CookieConfig struct {
	Name     string
	Domain   string
	SameSite string
	Secure   bool
	TTL      time.Duration
}

// BuildCookie construye la cookie de sesión con HttpOnly y Path=/.
func (c CookieConfig) BuildCookie(value string, now time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: ParseSameSite(c.SameSite),
	}
	if strings.TrimSpace(c.Domain) != "" {
		ck.Domain = c.Domain
	}
	if c.TTL > 0 {
		ck.Expires = now.Add(c.TTL).UTC()
		ck.MaxAge = int(c.TTL.Seconds())
	}
	return ck
}

// BuildDeletionCookie usa el mismo name/domain/samesite/secure para que el
// browser sobreescriba la cookie existente.
func (c CookieConfig) BuildDeletionCookie() *http.Cookie {
	ck := &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: ParseSameSite(c.SameSite),
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
	}
	if strings.TrimSpace(c.Domain) != "" {
		ck.Domain = c.Domain
	}
	return ck
}

// Package util tiene helpers chicos sin dependencias.
package util

import "strings"

// MaskEmail deja la primera letra del usuario y del dominio:
// "alice@habo.dev" -> "a…@h….dev". Sin "@" enmascara como secreto.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		return MaskSecret(s)
	}
	user, dom := s[:i], s[i+1:]
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	parts := strings.Split(dom, ".")
	if len(parts[0]) > 1 {
		parts[0] = parts[0][:1] + "…"
	}
	return user + "@" + strings.Join(parts, ".")
}

// MaskSecret deja visibles los últimos 4 caracteres de API keys y secretos
// largos. Los cortos se reemplazan enteros.
func MaskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "***"
	default:
		return "***" + s[len(s)-4:]
	}
}

// Package types define tipos de dominio compartidos entre paquetes.
package types

import "strings"

// Identity es la identidad normalizada del usuario autenticado.
type Identity struct {
	Subject  string `json:"subject"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// IsZero reporta si no hay sujeto.
func (i Identity) IsZero() bool { return strings.TrimSpace(i.Subject) == "" }

// UserInfoClaims son los claims de /oauth2/userInfo de Cognito que usamos.
type UserInfoClaims struct {
	Sub             string `json:"sub"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	CognitoUsername string `json:"cognito:username"`
}

// Identity normaliza los claims. El username cae a email y luego a sub
// cuando el IdP no lo envía.
func (c UserInfoClaims) Identity() Identity {
	username := firstNonEmpty(c.Username, c.CognitoUsername, c.Email, c.Sub)
	return Identity{Subject: c.Sub, Email: c.Email, Username: username}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// Package validation valida inputs de configuración.
package validation

import (
	"fmt"
	"regexp"
	"slices"
)

// scope-token de RFC 6749 §3.3: 1*( %x21 / %x23-5B / %x5D-7E ).
// Acepta scopes de Cognito tipo "aws.cognito.signin.user.admin" y de
// resource servers tipo "https://api.habo.dev/read".
var scopeRe = regexp.MustCompile(`^[\x21\x23-\x5B\x5D-\x7E]{1,256}$`)

// ValidScopeName reporta si name es un scope-token válido.
func ValidScopeName(name string) bool {
	return scopeRe.MatchString(name)
}

// Scopes valida la lista pedida al authorization endpoint: cada item debe
// ser un scope-token, sin repetidos, e incluir "openid".
func Scopes(scopes []string) error {
	if len(scopes) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		if !ValidScopeName(s) {
			return fmt.Errorf("invalid scope %q", s)
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("duplicated scope %q", s)
		}
		seen[s] = struct{}{}
	}
	if !slices.Contains(scopes, "openid") {
		return fmt.Errorf("scopes must include openid")
	}
	return nil
}

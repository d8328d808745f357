package oidc

import (
	"errors"
	"strings"

	"golang.org/x/oauth2"
)

var (
	// ErrClientNotReady: discovery nunca terminó bien.
	ErrClientNotReady = errors.New("oidc client not initialized")

	// ErrAuthenticationFailed agrupa state/nonce mismatch, rechazo del IdP
	// y fallas de red durante el canje o userinfo.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// DiscoveryAttempt es el resultado fallido de una URL de discovery.
type DiscoveryAttempt struct {
	URL string
	Err error
}

// DiscoveryError agrega las fallas de todas las URLs candidatas.
type DiscoveryError struct {
	Attempts []DiscoveryAttempt
}

func (e *DiscoveryError) Error() string {
	if len(e.Attempts) == 0 {
		return "oidc discovery: no discovery urls configured"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.URL+": "+a.Err.Error())
	}
	return "oidc discovery failed: " + strings.Join(parts, "; ")
}

func (e *DiscoveryError) Unwrap() []error {
	out := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		out = append(out, a.Err)
	}
	return out
}

// AuthenticationError lleva el detalle que se muestra en el callback.
type AuthenticationError struct {
	Detail string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthenticationFailed }

func authFailed(detail string, err error) error {
	return &AuthenticationError{Detail: detail, Err: providerError(err)}
}

// providerError reemplaza un *oauth2.RetrieveError por "code (description)"
// para no volcar el body crudo del IdP.
func providerError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return err
	}
	msg := re.ErrorCode
	if msg == "" && re.Response != nil {
		msg = re.Response.Status
	}
	if re.ErrorDescription != "" {
		msg += " (" + re.ErrorDescription + ")"
	}
	return errors.New(msg)
}

// Package errors define el error HTTP de la API (AppError), los errores
// predefinidos y el mapeo desde los errores de dominio.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	jwtx "github.com/dropDatabas3/habo/internal/jwt"
	"github.com/dropDatabas3/habo/internal/oidc"
	"github.com/dropDatabas3/habo/internal/upstream"
)

// AppError es el error estándar que devuelven los controllers.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"error"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa, solo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// New crea un nuevo AppError.
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// WithDetail devuelve una COPIA con detalle; no muta los errores base.
func (e *AppError) WithDetail(detail string) *AppError {
	c := *e
	c.Detail = detail
	return &c
}

// WithCause devuelve una COPIA con la causa.
func (e *AppError) WithCause(err error) *AppError {
	c := *e
	c.Err = err
	return &c
}

// WithMessage devuelve una COPIA con otro mensaje visible.
func (e *AppError) WithMessage(msg string) *AppError {
	c := *e
	c.Message = msg
	return &c
}

// FromError convierte errores de dominio en AppError. Lo desconocido es 500
// sin detalle.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var upErr *upstream.Error
	switch {
	case errors.Is(err, oidc.ErrClientNotReady):
		return ErrClientNotReady.WithCause(err)
	case errors.Is(err, oidc.ErrAuthenticationFailed):
		return ErrAuthenticationFailed.WithDetail(err.Error()).WithCause(err)
	case errors.Is(err, jwtx.ErrInvalidToken):
		return ErrTokenInvalid.WithCause(err)
	case errors.As(err, &upErr):
		return ErrUpstreamUnavailable.WithDetail(upErr.Error()).WithCause(err)
	case errors.Is(err, upstream.ErrUnavailable):
		return ErrUpstreamUnavailable.WithDetail(err.Error()).WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}

var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Bad request",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "Request body is not valid JSON",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidParameter = &AppError{
		Code:       "INVALID_PARAMETER",
		Message:    "Invalid path or query parameter",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Not authenticated",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenInvalid = &AppError{
		Code:       "TOKEN_INVALID",
		Message:    "Invalid token",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Method not allowed",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrTooManyRequests = &AppError{
		Code:       "TOO_MANY_REQUESTS",
		Message:    "Too many requests",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}

	// ErrAuthenticationFailed se sirve como texto plano en el callback.
	ErrAuthenticationFailed = &AppError{
		Code:       "AUTHENTICATION_FAILED",
		Message:    "Authentication failed",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrUpstreamUnavailable = &AppError{
		Code:       "UPSTREAM_UNAVAILABLE",
		Message:    "Upstream service unavailable",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrClientNotReady = &AppError{
		Code:       "OIDC_NOT_READY",
		Message:    "OIDC client not initialized",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)

// Package upstream contiene los errores compartidos por los clientes de las
// APIs externas que el gateway proxya (chat y mercado).
package upstream

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrUnavailable: la API externa no respondió algo utilizable.
var ErrUnavailable = errors.New("upstream unavailable")

// Error describe una falla de una API externa. Status es 0 cuando no hubo
// respuesta (timeout, DNS, etc).
type Error struct {
	Service string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Service)
	if e.Status != 0 {
		fmt.Fprintf(&b, " API error: %d - %s", e.Status, http.StatusText(e.Status))
	} else {
		b.WriteString(" API error")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrUnavailable }

// FromResponse construye un *Error desde una respuesta no-2xx, leyendo un
// prefijo acotado del body.
func FromResponse(service string, resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	e := &Error{Service: service, Status: resp.StatusCode}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		e.Err = errors.New(msg)
	}
	return e
}

package logger

import (
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/habo/internal/util"
)

// ---------------------------------------------------------------------------
// HTTP
// ---------------------------------------------------------------------------

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field { return zap.String("request_id", v) }

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field { return zap.String("method", v) }

// Path crea un campo para el path del request.
func Path(v string) zap.Field { return zap.String("path", v) }

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

// Subject es el "sub" del IdP.
func Subject(v string) zap.Field { return zap.String("sub", v) }

// Email loguea el email enmascarado.
func Email(v string) zap.Field { return zap.String("email", util.MaskEmail(v)) }

// State loguea solo un prefijo del state; el valor completo es un secreto de
// correlación y no debe quedar en logs.
func State(v string) zap.Field {
	if len(v) > 8 {
		v = v[:8] + "…"
	}
	return zap.String("state", v)
}

// Source indica de dónde salió la identidad o el AuthorizationRequest
// (bearer, session, cache, degraded).
func Source(v string) zap.Field { return zap.String("source", v) }

// Degraded marca el camino de callback sin state/nonce persistidos.
func Degraded(v bool) zap.Field { return zap.Bool("degraded", v) }

// Issuer crea un campo para el issuer OIDC.
func Issuer(v string) zap.Field { return zap.String("issuer", v) }

func URL(v string) zap.Field { return zap.String("url", v) }

// Symbol crea un campo para un ticker bursátil.
func Symbol(v string) zap.Field { return zap.String("symbol", v) }

// ---------------------------------------------------------------------------
// Sistema
// ---------------------------------------------------------------------------

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field { return zap.String("component", v) }

// Op crea un campo para la operación actual.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer crea un campo para la capa (controller, service, store).
func Layer(v string) zap.Field { return zap.String("layer", v) }

// Err crea un campo para un error.
func Err(err error) zap.Field { return zap.Error(err) }

func Count(v int) zap.Field { return zap.Int("count", v) }

func Key(v string) zap.Field { return zap.String("key", v) }

func Any(key string, v any) zap.Field { return zap.Any(key, v) }

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }

func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }

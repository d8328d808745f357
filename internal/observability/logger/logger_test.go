package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(" warning "))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nope"))
}

func TestFromFallsBackToSingleton(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))

	From(context.Background()).Info("hola")
	require.Equal(t, 1, logs.Len())

	scoped := zap.New(core).With(RequestID("r1"))
	ctx := ToContext(context.Background(), scoped)
	From(ctx).Info("scoped")

	entries := logs.FilterMessage("scoped").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "r1", entries[0].ContextMap()["request_id"])
}

func TestStateIsTruncated(t *testing.T) {
	f := State("abcdefghijklmnop")
	assert.Equal(t, "abcdefgh…", f.String)

	short := State("abc")
	assert.Equal(t, "abc", short.String)
}

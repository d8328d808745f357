package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		deps      Deps
		wantOIDC  string
		wantRedis string
	}{
		{
			name:      "ready without redis",
			deps:      Deps{OIDCReady: func() bool { return true }},
			wantOIDC:  "ok",
			wantRedis: "disabled",
		},
		{
			name:      "discovery pending",
			deps:      Deps{OIDCReady: func() bool { return false }, RedisCheck: func(context.Context) error { return nil }},
			wantOIDC:  "error",
			wantRedis: "ok",
		},
		{
			name:      "redis down",
			deps:      Deps{OIDCReady: func() bool { return true }, RedisCheck: func(context.Context) error { return errors.New("dial tcp: refused") }},
			wantOIDC:  "ok",
			wantRedis: "error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.deps.Version = "1.2.3"
			resp := NewHealthService(tt.deps).Check(context.Background())
			assert.Equal(t, "ok", resp.Status)
			assert.Equal(t, tt.wantOIDC == "ok", resp.OIDCReady)
			assert.Equal(t, tt.wantOIDC, resp.Components["oidc"].Status)
			assert.Equal(t, tt.wantRedis, resp.Components["redis"].Status)
			assert.Equal(t, "1.2.3", resp.Version)
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":5001", c.Server.Addr)
	assert.Equal(t, "memory", c.StateCache.Kind)
	assert.Equal(t, 5*time.Minute, c.StateCache.TTL)
	assert.Equal(t, 24*time.Hour, c.Session.TTL)
	assert.Equal(t, DevSessionSecret, c.Session.Secret)
	assert.Equal(t, 20, c.Chat.RateLimit)
	assert.Equal(t, "http://localhost:5001/auth/callback", c.RedirectURI())
	assert.Equal(t, []string{"http://localhost:3000"}, c.Server.CORSAllowedOrigins)
}

func TestLoadYAMLThenEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":7000"
oidc:
  client_id: yaml-client
  domain: auth.example.com
state_cache:
  ttl: 2m
`), 0o600))

	t.Setenv("PORT", "8081")
	t.Setenv("COGNITO_CLIENT_ID", "env-client")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8081", c.Server.Addr)
	assert.Equal(t, "env-client", c.OIDC.ClientID)
	assert.Equal(t, "auth.example.com", c.OIDC.Domain)
	assert.Equal(t, 2*time.Minute, c.StateCache.TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Server.CORSAllowedOrigins)
	require.NoError(t, c.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestProductionURLsAndValidation(t *testing.T) {
	t.Setenv("NODE_ENV", "production")
	t.Setenv("COGNITO_CLIENT_ID", "cid")
	t.Setenv("COGNITO_REGION", "us-east-2")
	t.Setenv("COGNITO_USER_POOL_ID", "us-east-2_pool")
	t.Setenv("BACKEND_URL", "https://api.habo.test/")
	t.Setenv("FRONTEND_URL", "https://habo.test")

	c, err := Load("")
	require.NoError(t, err)
	assert.True(t, c.IsProduction())
	assert.Equal(t, "https://api.habo.test/auth/callback", c.RedirectURI())
	assert.Equal(t, "https://habo.test", c.FrontendURL())
	assert.Equal(t, "info", c.Log.Level)

	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")

	c.Session.Secret = "a-real-production-secret"
	assert.NoError(t, c.Validate())
}

func TestValidateRequiresIssuerLocation(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	c.OIDC.ClientID = "cid"

	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COGNITO_DOMAIN")

	c.OIDC.DiscoveryURLs = []string{"http://idp.local/.well-known/openid-configuration"}
	assert.NoError(t, c.Validate())
}

func TestValidateStoreRequirements(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	c.OIDC.ClientID = "cid"
	c.OIDC.Domain = "auth.example.com"

	c.Session.Store = "redis"
	assert.ErrorContains(t, c.Validate(), "REDIS_ADDR")

	c.Session.Store = "postgres"
	assert.ErrorContains(t, c.Validate(), "SESSION_POSTGRES_DSN")

	c.Session.Store = "mongo"
	assert.ErrorContains(t, c.Validate(), "unknown SESSION_STORE")
}

func TestOIDCScopesFromEnv(t *testing.T) {
	t.Setenv("OIDC_SCOPES", "openid, email aws.cognito.signin.user.admin")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"openid", "email", "aws.cognito.signin.user.admin"}, c.OIDC.Scopes)

	c.OIDC.ClientID = "cid"
	c.OIDC.Domain = "auth.example.com"
	require.NoError(t, c.Validate())

	c.OIDC.Scopes = []string{"email"}
	assert.ErrorContains(t, c.Validate(), "OIDC_SCOPES")
}

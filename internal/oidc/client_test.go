package oidc_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dropDatabas3/habo/internal/domain/repository"
	"github.com/dropDatabas3/habo/internal/domain/types"
	"github.com/dropDatabas3/habo/internal/oidc"
	"github.com/dropDatabas3/habo/internal/oidc/oidctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientID = "4ecd14vqq0niscmt2lhv7cqac7"

var alice = types.UserInfoClaims{Sub: "sub-alice", Email: "alice@habo.dev", Username: "alice"}

func newClient(t *testing.T, idp *oidctest.Server, extra ...string) *oidc.Client {
	t.Helper()
	urls := append(extra, idp.DiscoveryURL())
	return oidc.New(oidc.Config{
		ClientID:      testClientID,
		ClientSecret:  idp.ClientSecret,
		RedirectURL:   "http://localhost:5001/auth/callback",
		DiscoveryURLs: urls,
		HTTPTimeout:   2 * time.Second,
	})
}

func readyClient(t *testing.T, idp *oidctest.Server) *oidc.Client {
	t.Helper()
	c := newClient(t, idp)
	require.NoError(t, c.Initialize(context.Background()))
	require.True(t, c.Ready())
	return c
}

func TestDiscoveryCandidatesFromCognito(t *testing.T) {
	cfg := oidc.Config{
		Domain:     "us-east-2lylzuyppl.auth.us-east-2.amazoncognito.com",
		Region:     "us-east-2",
		UserPoolID: "us-east-2_Lylzuyppl",
	}
	assert.Equal(t, []string{
		"https://us-east-2lylzuyppl.auth.us-east-2.amazoncognito.com/.well-known/openid-configuration",
		"https://cognito-idp.us-east-2.amazonaws.com/us-east-2_Lylzuyppl/.well-known/openid-configuration",
	}, cfg.DiscoveryCandidates())

	cfg.DiscoveryURLs = []string{" https://idp.example/.well-known/openid-configuration ", ""}
	assert.Equal(t, []string{"https://idp.example/.well-known/openid-configuration"}, cfg.DiscoveryCandidates())
}

func TestNotReadyFailsFast(t *testing.T) {
	c := oidc.New(oidc.Config{ClientID: testClientID})
	assert.False(t, c.Ready())

	_, err := c.AuthorizationURL("s", "n", nil)
	assert.ErrorIs(t, err, oidc.ErrClientNotReady)

	_, err = c.ExchangeCode(context.Background(), oidc.CallbackParams{Code: "c", State: "s"},
		repository.AuthorizationRequest{State: "s", Nonce: "n"})
	assert.ErrorIs(t, err, oidc.ErrClientNotReady)

	_, err = c.FetchUserInfo(context.Background(), "at")
	assert.ErrorIs(t, err, oidc.ErrClientNotReady)

	_, err = c.LogoutURL("http://localhost:3000")
	assert.ErrorIs(t, err, oidc.ErrClientNotReady)
}

func TestInitializeFallsBackToSecondURL(t *testing.T) {
	idp := oidctest.New(t, testClientID)
	broken := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(broken.Close)

	c := newClient(t, idp, broken.URL+"/.well-known/openid-configuration")
	require.NoError(t, c.Initialize(context.Background()))
	assert.True(t, c.Ready())
	assert.Equal(t, idp.Issuer(), c.Issuer())
}

func TestInitializeFallsBackWhenFirstURLHangs(t *testing.T) {
	idp := oidctest.New(t, testClientID)

	var hits atomic.Int32
	release := make(chan struct{})
	hang := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(hang.Close)
	t.Cleanup(func() { close(release) })

	c := oidc.New(oidc.Config{
		ClientID:      testClientID,
		DiscoveryURLs: []string{hang.URL + "/.well-known/openid-configuration", idp.DiscoveryURL()},
		HTTPTimeout:   300 * time.Millisecond,
	})
	require.NoError(t, c.Initialize(context.Background()))
	assert.True(t, c.Ready())
	assert.Equal(t, idp.Issuer(), c.Issuer())
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, idp.DiscoveryHits())
}

func TestInitializeAggregatesErrors(t *testing.T) {
	malformed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"issuer":"x"}`))
	}))
	t.Cleanup(malformed.Close)
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()

	c := oidc.New(oidc.Config{
		ClientID:      testClientID,
		DiscoveryURLs: []string{malformed.URL, down.URL},
		HTTPTimeout:   time.Second,
	})
	err := c.Initialize(context.Background())
	require.Error(t, err)

	var derr *oidc.DiscoveryError
	require.True(t, errors.As(err, &derr))
	require.Len(t, derr.Attempts, 2)
	assert.Equal(t, malformed.URL, derr.Attempts[0].URL)
	assert.Contains(t, derr.Error(), "malformed discovery document")
	assert.False(t, c.Ready())
}

func TestInitializeNoCandidates(t *testing.T) {
	err := oidc.New(oidc.Config{ClientID: testClientID}).Initialize(context.Background())
	var derr *oidc.DiscoveryError
	require.ErrorAs(t, err, &derr)
	assert.Empty(t, derr.Attempts)
}

func TestInitializeConcurrentSingleDiscovery(t *testing.T) {
	idp := oidctest.New(t, testClientID)
	c := newClient(t, idp)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Initialize(context.Background()))
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, idp.DiscoveryHits(), 10)
	require.NoError(t, c.Initialize(context.Background()))
	hits := idp.DiscoveryHits()
	require.NoError(t, c.Initialize(context.Background()))
	assert.Equal(t, hits, idp.DiscoveryHits(), "ready client must not rediscover")
}

func TestStartRetriesUntilReady(t *testing.T) {
	idp := oidctest.New(t, testClientID)
	idp.SetDiscoveryFailing(true)

	ready := make(chan struct{})
	var once sync.Once
	c := oidc.New(oidc.Config{
		ClientID:      testClientID,
		DiscoveryURLs: []string{idp.DiscoveryURL()},
		HTTPTimeout:   time.Second,
	}, oidc.WithReadyHook(func() { once.Do(func() { close(ready) }) }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.Error(t, c.Initialize(ctx))

	done := c.Start(ctx)
	require.Eventually(t, func() bool { return idp.DiscoveryHits() >= 2 }, 5*time.Second, 10*time.Millisecond)
	idp.SetDiscoveryFailing(false)

	select {
	case <-ready:
	case <-time.After(10 * time.Second):
		t.Fatal("client never became ready")
	}
	<-done
	assert.True(t, c.Ready())
}

func TestAuthorizationURL(t *testing.T) {
	idp := oidctest.New(t, testClientID)
	c := readyClient(t, idp)

	raw, err := c.AuthorizationURL("state-1", "nonce-1", oidc.DefaultScopes)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, idp.Issuer()+"/oauth2/authorize", u.Scheme+"://"+u.Host+u.Path)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, testClientID, q.Get("client_id"))
	assert.Equal(t, "http://localhost:5001/auth/callback", q.Get("redirect_uri"))
	assert.Equal(t, "email openid phone", q.Get("scope"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "nonce-1", q.Get("nonce"))

	again, err := c.AuthorizationURL("state-1", "nonce-1", oidc.DefaultScopes)
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}

func TestExchangeCodeAndUserInfo(t *testing.T) {
	for _, secret := range []string{"", "s3cret"} {
		name := "public client"
		if secret != "" {
			name = "confidential client"
		}
		t.Run(name, func(t *testing.T) {
			idp := oidctest.New(t, testClientID)
			idp.ClientSecret = secret
			c := readyClient(t, idp)
			ctx := context.Background()

			code := idp.IssueCode("nonce-1", alice)
			ts, err := c.ExchangeCode(ctx, oidc.CallbackParams{Code: code, State: "state-1"},
				repository.AuthorizationRequest{State: "state-1", Nonce: "nonce-1"})
			require.NoError(t, err)
			assert.NotEmpty(t, ts.AccessToken)
			assert.Equal(t, alice.Sub, ts.Subject)

			id, err := c.FetchUserInfo(ctx, ts.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, types.Identity{Subject: alice.Sub, Email: alice.Email, Username: "alice"}, id)
		})
	}
}

func TestExchangeCodeFailures(t *testing.T) {
	ctx := context.Background()
	expected := repository.AuthorizationRequest{State: "state-1", Nonce: "nonce-1"}

	t.Run("state mismatch", func(t *testing.T) {
		idp := oidctest.New(t, testClientID)
		c := readyClient(t, idp)
		code := idp.IssueCode("nonce-1", alice)
		_, err := c.ExchangeCode(ctx, oidc.CallbackParams{Code: code, State: "other"}, expected)
		require.ErrorIs(t, err, oidc.ErrAuthenticationFailed)
		assert.Contains(t, err.Error(), "state mismatch")
	})

	t.Run("nonce mismatch", func(t *testing.T) {
		idp := oidctest.New(t, testClientID)
		c := readyClient(t, idp)
		code := idp.IssueCode("attacker-nonce", alice)
		_, err := c.ExchangeCode(ctx, oidc.CallbackParams{Code: code, State: "state-1"}, expected)
		require.ErrorIs(t, err, oidc.ErrAuthenticationFailed)
		assert.Contains(t, err.Error(), "nonce mismatch")
	})

	t.Run("missing nonce claim", func(t *testing.T) {
		idp := oidctest.New(t, testClientID)
		c := readyClient(t, idp)
		code := idp.IssueCode("", alice)
		_, err := c.ExchangeCode(ctx, oidc.CallbackParams{Code: code, State: "state-1"}, expected)
		require.ErrorIs(t, err, oidc.ErrAuthenticationFailed)
	})

	t.Run("invalid grant carries provider detail", func(t *testing.T) {
		idp := oidctest.New(t, testClientID)
		c := readyClient(t, idp)
		_, err := c.ExchangeCode(ctx, oidc.CallbackParams{Code: "unknown", State: "state-1"}, expected)
		require.ErrorIs(t, err, oidc.ErrAuthenticationFailed)
		assert.Contains(t, err.Error(), "invalid_grant")

		var aerr *oidc.AuthenticationError
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, "token exchange failed", aerr.Detail)
	})

	t.Run("code reuse", func(t *testing.T) {
		idp := oidctest.New(t, testClientID)
		c := readyClient(t, idp)
		code := idp.IssueCode("nonce-1", alice)
		_, err := c.ExchangeCode(ctx, oidc.CallbackParams{Code: code, State: "state-1"}, expected)
		require.NoError(t, err)
		_, err = c.ExchangeCode(ctx, oidc.CallbackParams{Code: code, State: "state-1"}, expected)
		require.ErrorIs(t, err, oidc.ErrAuthenticationFailed)
	})

	t.Run("no id_token", func(t *testing.T) {
		idp := oidctest.New(t, testClientID)
		idp.OmitIDToken = true
		c := readyClient(t, idp)
		code := idp.IssueCode("nonce-1", alice)
		_, err := c.ExchangeCode(ctx, oidc.CallbackParams{Code: code, State: "state-1"}, expected)
		require.ErrorIs(t, err, oidc.ErrAuthenticationFailed)
		assert.Contains(t, err.Error(), "id_token")
	})

	t.Run("provider down", func(t *testing.T) {
		idp := oidctest.New(t, testClientID)
		c := readyClient(t, idp)
		idp.Close()
		_, err := c.ExchangeCode(ctx, oidc.CallbackParams{Code: "x", State: "state-1"}, expected)
		require.ErrorIs(t, err, oidc.ErrAuthenticationFailed)
	})

	t.Run("missing state does not spend the code", func(t *testing.T) {
		idp := oidctest.New(t, testClientID)
		c := readyClient(t, idp)
		code := idp.IssueCode("nonce-1", alice)
		_, err := c.ExchangeCode(ctx, oidc.CallbackParams{Code: code}, repository.AuthorizationRequest{})
		require.ErrorIs(t, err, oidc.ErrAuthenticationFailed)
		assert.Contains(t, err.Error(), "missing state")

		_, err = c.ExchangeCode(ctx, oidc.CallbackParams{Code: code, State: "state-1"}, expected)
		require.NoError(t, err)
	})

	t.Run("missing code", func(t *testing.T) {
		idp := oidctest.New(t, testClientID)
		c := readyClient(t, idp)
		_, err := c.ExchangeCode(ctx, oidc.CallbackParams{State: "state-1"}, expected)
		require.ErrorIs(t, err, oidc.ErrAuthenticationFailed)
	})
}

func TestFetchUserInfoRejectedToken(t *testing.T) {
	idp := oidctest.New(t, testClientID)
	c := readyClient(t, idp)

	_, err := c.FetchUserInfo(context.Background(), "not-issued")
	require.ErrorIs(t, err, oidc.ErrAuthenticationFailed)

	_, err = c.FetchUserInfo(context.Background(), "")
	require.ErrorIs(t, err, oidc.ErrAuthenticationFailed)
}

func TestLogoutURL(t *testing.T) {
	c := oidc.New(oidc.Config{ClientID: testClientID, Domain: "habo.auth.us-east-2.amazoncognito.com"})
	got, err := c.LogoutURL("http://localhost:3000")
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "habo.auth.us-east-2.amazoncognito.com", u.Host)
	assert.Equal(t, "/logout", u.Path)
	assert.Equal(t, testClientID, u.Query().Get("client_id"))
	assert.Equal(t, "http://localhost:3000", u.Query().Get("logout_uri"))
}

func TestLogoutURLWithoutEndSession(t *testing.T) {
	idp := oidctest.New(t, testClientID)
	c := readyClient(t, idp)
	_, err := c.LogoutURL("http://localhost:3000")
	require.Error(t, err)
}

package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/habo/internal/domain/repository"
	"github.com/dropDatabas3/habo/internal/domain/types"
	dto "github.com/dropDatabas3/habo/internal/http/dto/auth"
	"github.com/dropDatabas3/habo/internal/oidc"
	"github.com/dropDatabas3/habo/internal/session"
	"github.com/dropDatabas3/habo/internal/statecache"
)

var alice = types.Identity{Subject: "sub-alice", Email: "alice@habo.dev", Username: "alice"}

type fakeOIDC struct {
	ready       bool
	exchangeErr error
	userinfo    types.Identity
	idSubject   string
	logoutErr   error

	gotExpected repository.AuthorizationRequest
	gotParams   oidc.CallbackParams
}

func (f *fakeOIDC) Ready() bool { return f.ready }

func (f *fakeOIDC) AuthorizationURL(state, nonce string, scopes []string) (string, error) {
	if !f.ready {
		return "", oidc.ErrClientNotReady
	}
	q := url.Values{"state": {state}, "nonce": {nonce}}
	return "https://idp.test/authorize?" + q.Encode(), nil
}

func (f *fakeOIDC) ExchangeCode(_ context.Context, params oidc.CallbackParams, expected repository.AuthorizationRequest) (*oidc.TokenSet, error) {
	f.gotParams = params
	f.gotExpected = expected
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oidc.TokenSet{AccessToken: "at", Subject: f.idSubject}, nil
}

func (f *fakeOIDC) FetchUserInfo(context.Context, string) (types.Identity, error) {
	return f.userinfo, nil
}

func (f *fakeOIDC) LogoutURL(returnTo string) (string, error) {
	if f.logoutErr != nil {
		return "", f.logoutErr
	}
	return "https://idp.test/logout?logout_uri=" + url.QueryEscape(returnTo), nil
}

type fakeMinter struct{}

func (fakeMinter) Mint(id types.Identity) (string, time.Time, error) {
	return "tok+" + id.Subject, time.Now().Add(time.Hour), nil
}

type callbackEvent struct{ path, result string }

type fixture struct {
	oidc   *fakeOIDC
	states *statecache.Memory
	events []callbackEvent
	svcs   Services
	mgr    *session.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		oidc:   &fakeOIDC{ready: true, userinfo: alice, idSubject: alice.Subject},
		states: statecache.NewMemory(time.Minute, time.Minute),
	}
	t.Cleanup(func() { _ = f.states.Close() })
	f.svcs = NewServices(Deps{
		OIDC:        f.oidc,
		Tokens:      fakeMinter{},
		States:      f.states,
		FrontendURL: "http://localhost:3000/",
		OnCallback:  func(path, result string) { f.events = append(f.events, callbackEvent{path, result}) },
	})
	mgr, err := session.NewManager(session.NewMemoryStore(), session.Config{Secret: "test-secret"})
	require.NoError(t, err)
	f.mgr = mgr
	return f
}

func (f *fixture) newSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := f.mgr.Load(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	return s
}

func TestLoginBegin(t *testing.T) {
	f := newFixture(t)
	s := f.newSession(t)

	authURL, err := f.svcs.Login.Begin(context.Background(), s)
	require.NoError(t, err)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state, nonce := u.Query().Get("state"), u.Query().Get("nonce")
	assert.NotEqual(t, state, nonce)
	assert.Equal(t, state, s.Record().State)
	assert.Equal(t, nonce, s.Record().Nonce)

	ar, err := f.states.Get(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, nonce, ar.Nonce)
}

func TestLoginBeginNotReady(t *testing.T) {
	f := newFixture(t)
	f.oidc.ready = false

	_, err := f.svcs.Login.Begin(context.Background(), f.newSession(t))
	require.ErrorIs(t, err, oidc.ErrClientNotReady)
	assert.Zero(t, f.states.Len())
}

func TestCallbackResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("session", func(t *testing.T) {
		f := newFixture(t)
		s := f.newSession(t)
		s.SetAuthorizationRequest("st-1", "nn-1")
		require.NoError(t, f.states.Put(ctx, "st-1", "nn-1"))

		res, err := f.svcs.Callback.Complete(ctx, s, dto.CallbackRequest{Code: "c", State: "st-1"})
		require.NoError(t, err)
		assert.Equal(t, PathSession, res.Path)
		assert.Equal(t, repository.AuthorizationRequest{State: "st-1", Nonce: "nn-1"}, f.oidc.gotExpected)
		assert.Equal(t, "http://localhost:3000/callback?token=tok%2Bsub-alice", res.RedirectURL)

		id, ok := s.UserInfo()
		require.True(t, ok)
		assert.Equal(t, alice, id)
		assert.False(t, s.Record().HasAuthorizationRequest())

		// el state se consume
		_, err = f.states.Get(ctx, "st-1")
		assert.True(t, repository.IsNotFound(err))
		assert.Equal(t, []callbackEvent{{PathSession, "success"}}, f.events)
	})

	t.Run("cache", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.states.Put(ctx, "st-2", "nn-2"))

		res, err := f.svcs.Callback.Complete(ctx, f.newSession(t), dto.CallbackRequest{Code: "c", State: "st-2"})
		require.NoError(t, err)
		assert.Equal(t, PathCache, res.Path)
		assert.Equal(t, "nn-2", f.oidc.gotExpected.Nonce)
	})

	t.Run("degraded", func(t *testing.T) {
		f := newFixture(t)

		res, err := f.svcs.Callback.Complete(ctx, f.newSession(t), dto.CallbackRequest{Code: "c", State: "st-3"})
		require.NoError(t, err)
		assert.Equal(t, PathDegraded, res.Path)
		assert.Equal(t, repository.AuthorizationRequest{State: "st-3", Nonce: "st-3"}, f.oidc.gotExpected)
	})
}

func TestCallbackFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("provider error", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svcs.Callback.Complete(ctx, f.newSession(t), dto.CallbackRequest{Error: "access_denied", ErrorDescription: "nope"})
		require.ErrorIs(t, err, oidc.ErrAuthenticationFailed)
		assert.Equal(t, "access_denied (nope)", err.Error())
		assert.Equal(t, []callbackEvent{{"provider", "failure"}}, f.events)
	})

	t.Run("not ready", func(t *testing.T) {
		f := newFixture(t)
		f.oidc.ready = false
		_, err := f.svcs.Callback.Complete(ctx, f.newSession(t), dto.CallbackRequest{Code: "c", State: "s"})
		require.ErrorIs(t, err, oidc.ErrClientNotReady)
	})

	t.Run("exchange fails", func(t *testing.T) {
		f := newFixture(t)
		f.oidc.exchangeErr = &oidc.AuthenticationError{Detail: "nonce mismatch"}
		s := f.newSession(t)
		_, err := f.svcs.Callback.Complete(ctx, s, dto.CallbackRequest{Code: "c", State: "s"})
		require.ErrorIs(t, err, oidc.ErrAuthenticationFailed)
		_, ok := s.UserInfo()
		assert.False(t, ok)
		assert.Equal(t, []callbackEvent{{PathDegraded, "failure"}}, f.events)
	})

	t.Run("subject mismatch", func(t *testing.T) {
		f := newFixture(t)
		f.oidc.idSubject = "sub-mallory"
		_, err := f.svcs.Callback.Complete(ctx, f.newSession(t), dto.CallbackRequest{Code: "c", State: "s"})
		require.ErrorIs(t, err, oidc.ErrAuthenticationFailed)
	})
}

func TestLogoutRedirect(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "https://idp.test/logout?logout_uri=http%3A%2F%2Flocalhost%3A3000%2F", f.svcs.Logout.RedirectURL(context.Background()))

	f.oidc.logoutErr = errors.New("no end_session_endpoint")
	assert.Equal(t, "http://localhost:3000/", f.svcs.Logout.RedirectURL(context.Background()))
}

package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/go-ad-auth/auth"
	fakeclients "github.com/jrsteele09/go-ad-auth/auth/clientfakes"
	"github.com/jrsteele09/go-ad-auth/internal/config"
	"github.com/jrsteele09/go-ad-auth/server"
	"github.com/jrsteele09/go-ad-auth/server/loginsession"
	"github.com/jrsteele09/go-ad-auth/server/statestore"
	"github.com/jrsteele09/go-ad-auth/sessions"
	fakesessionrepo "github.com/jrsteele09/go-ad-auth/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

const (
	testIdentity     = "alice@example.com"
	testAuthCode     = "abc123"
	testAccessToken  = "access-token-1"
	testRefreshToken = "refresh-token-1"
	testGroupID      = "11111111-1111-1111-1111-111111111111"
	otherGroupID     = "22222222-2222-2222-2222-222222222222"

	fakeAuthorizeURL = "https://login.example.com/authorize"
	sessionCookie    = "loggedInSessionId"
)

type fakeSignIn struct{}

func (fakeSignIn) SignInURL(state string) string {
	return fakeAuthorizeURL + "?state=" + url.QueryEscape(state)
}

type serverFixture struct {
	tokens        *fakeclients.FakeTokenClient
	directory     *fakeclients.FakeDirectoryClient
	sessionRepo   *fakesessionrepo.FakeSessionRepo
	loginSessions *loginsession.InMemoryLoginSessionRepo
	authState     *statestore.InMemoryRepo
	server        *server.Server
}

// setupServerFixture builds a Server wired to fakes. Config is read from the
// environment, so tests adjust it with t.Setenv before calling this.
func setupServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	fixture := &serverFixture{
		tokens:        &fakeclients.FakeTokenClient{},
		directory:     &fakeclients.FakeDirectoryClient{},
		sessionRepo:   fakesessionrepo.NewFakeSessionRepo(),
		loginSessions: loginsession.NewInMemoryLoginSessionRepo(),
		authState:     statestore.NewInMemoryRepo(10 * time.Minute),
	}
	t.Cleanup(fixture.authState.Close)

	manager, err := auth.NewSessionManager(auth.Clients{
		Tokens:    fixture.tokens,
		Directory: fixture.directory,
		Sessions:  fixture.sessionRepo,
	})
	require.NoError(t, err)

	srv, err := server.New(config.New(), manager, fakeSignIn{}, fixture.loginSessions, fixture.authState)
	require.NoError(t, err)
	fixture.server = srv

	return fixture
}

func (f *serverFixture) do(req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	f.server.ServeHTTP(recorder, req)
	return recorder
}

// startLogin performs GET /login and returns the state minted for the flow.
func startLogin(t *testing.T, fixture *serverFixture, next string) string {
	t.Helper()

	target := server.RouteLogin
	if next != "" {
		target += "?next=" + url.QueryEscape(next)
	}
	recorder := fixture.do(httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusSeeOther, recorder.Code)

	location, err := url.Parse(recorder.Header().Get("Location"))
	require.NoError(t, err)
	require.Contains(t, location.String(), fakeAuthorizeURL)

	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

// seedLoginSession binds a cookie session id to the identity and returns it.
func seedLoginSession(t *testing.T, fixture *serverFixture, identity string, expiresAt time.Time) string {
	t.Helper()

	const sessionID = "test-session-id"
	require.NoError(t, fixture.loginSessions.Upsert(sessionID, loginsession.Session{
		Identity:  identity,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}))
	return sessionID
}

// seedStoredSession stores a directory session for the identity.
func seedStoredSession(t *testing.T, fixture *serverFixture, expiresOn int64, groups ...string) {
	t.Helper()

	require.NoError(t, fixture.sessionRepo.Upsert(context.Background(), &sessions.Session{
		Identity:     testIdentity,
		AccessToken:  testAccessToken,
		RefreshToken: testRefreshToken,
		ExpiresOn:    expiresOn,
		TokenType:    "Bearer",
		Resource:     "https://graph.windows.net",
		Scope:        "user_impersonation",
		Groups:       groups,
	}))
}

func authedRequest(method, target, sessionID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionID})
	return req
}

func browserRequest(req *http.Request) *http.Request {
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	return req
}

func findCookie(t *testing.T, recorder *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set on response", name)
	return nil
}

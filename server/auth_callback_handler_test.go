package server_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-ad-auth/auth"
	"github.com/jrsteele09/go-ad-auth/server"
	"github.com/jrsteele09/go-ad-auth/server/loginsession"
	"github.com/stretchr/testify/require"
)

func exchangeGrant() *auth.TokenGrant {
	return &auth.TokenGrant{
		Identity:     testIdentity,
		AccessToken:  testAccessToken,
		RefreshToken: testRefreshToken,
		ExpiresOn:    time.Now().Add(time.Hour).Unix(),
		TokenType:    "Bearer",
		Resource:     "https://graph.windows.net",
		Scope:        "user_impersonation",
	}
}

func decodeErrorBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	body := map[string]string{}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	return body
}

// TestLoginHandler_RedirectsToProvider tests that /login mints a one-shot state and redirects to the provider.
func TestLoginHandler_RedirectsToProvider(t *testing.T) {
	fixture := setupServerFixture(t)

	state := startLogin(t, fixture, "/reports")

	authState, err := fixture.authState.Consume(state)
	require.NoError(t, err)
	require.Equal(t, "/reports", authState.ReturnURL)
}

// TestLoginHandler_RejectsOffsiteReturnURL tests that a crafted next parameter is not stored.
func TestLoginHandler_RejectsOffsiteReturnURL(t *testing.T) {
	testCases := []struct {
		name string
		next string
	}{
		{name: "absolute url", next: "https://evil.example.com/"},
		{name: "protocol-relative url", next: "//evil.example.com/"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fixture := setupServerFixture(t)

			state := startLogin(t, fixture, tc.next)

			authState, err := fixture.authState.Consume(state)
			require.NoError(t, err)
			require.Empty(t, authState.ReturnURL)
		})
	}
}

// TestOAuthCallbackHandler_CompletesSignIn tests the full browser flow from /login to the post-callback redirect.
func TestOAuthCallbackHandler_CompletesSignIn(t *testing.T) {
	fixture := setupServerFixture(t)
	fixture.tokens.ExchangeGrant = exchangeGrant()
	fixture.directory.Groups = []string{testGroupID}

	state := startLogin(t, fixture, "/reports")
	recorder := fixture.do(httptest.NewRequest(http.MethodGet, "/connect/get_token?code="+testAuthCode+"&state="+state, nil))

	require.Equal(t, http.StatusSeeOther, recorder.Code)
	require.Equal(t, "/reports", recorder.Header().Get("Location"))
	require.Equal(t, testAuthCode, fixture.tokens.LastCode())

	cookie := findCookie(t, recorder, sessionCookie)
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Positive(t, cookie.MaxAge)

	loginSession, err := fixture.loginSessions.Get(cookie.Value)
	require.NoError(t, err)
	require.Equal(t, testIdentity, loginSession.Identity)
	require.False(t, loginSession.Expired())

	require.Equal(t, 1, fixture.sessionRepo.UpsertCalls())
}

// TestOAuthCallbackHandler_DefaultRedirect tests that a flow without a return URL lands on the configured page.
func TestOAuthCallbackHandler_DefaultRedirect(t *testing.T) {
	t.Setenv("AD_LOGIN_REDIRECT", "/home")
	fixture := setupServerFixture(t)
	fixture.tokens.ExchangeGrant = exchangeGrant()
	fixture.directory.Groups = []string{testGroupID}

	state := startLogin(t, fixture, "")
	recorder := fixture.do(httptest.NewRequest(http.MethodGet, "/connect/get_token?code="+testAuthCode+"&state="+state, nil))

	require.Equal(t, http.StatusSeeOther, recorder.Code)
	require.Equal(t, "/home", recorder.Header().Get("Location"))
}

// TestOAuthCallbackHandler_ProviderError tests that a provider error redirect is surfaced, not exchanged.
func TestOAuthCallbackHandler_ProviderError(t *testing.T) {
	fixture := setupServerFixture(t)

	recorder := fixture.do(httptest.NewRequest(http.MethodGet, "/connect/get_token?error=access_denied&error_description=user+cancelled", nil))

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	body := decodeErrorBody(t, recorder)
	require.Equal(t, "access_denied", body["error"])
	require.Equal(t, 0, fixture.tokens.ExchangeCalls())
}

// TestOAuthCallbackHandler_MissingParameters tests that the callback insists on both code and state.
func TestOAuthCallbackHandler_MissingParameters(t *testing.T) {
	testCases := []struct {
		name   string
		target string
	}{
		{name: "missing code", target: "/connect/get_token?state=some-state"},
		{name: "missing state", target: "/connect/get_token?code=" + testAuthCode},
		{name: "missing both", target: "/connect/get_token"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fixture := setupServerFixture(t)

			recorder := fixture.do(httptest.NewRequest(http.MethodGet, tc.target, nil))

			require.Equal(t, http.StatusBadRequest, recorder.Code)
			require.Equal(t, 0, fixture.tokens.ExchangeCalls())
		})
	}
}

// TestOAuthCallbackHandler_UnknownState tests that a state the server never minted is rejected.
func TestOAuthCallbackHandler_UnknownState(t *testing.T) {
	fixture := setupServerFixture(t)
	fixture.tokens.ExchangeGrant = exchangeGrant()

	recorder := fixture.do(httptest.NewRequest(http.MethodGet, "/connect/get_token?code="+testAuthCode+"&state=forged-state", nil))

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, 0, fixture.tokens.ExchangeCalls())
}

// TestOAuthCallbackHandler_StateReplay tests that a state cannot complete two sign-ins.
func TestOAuthCallbackHandler_StateReplay(t *testing.T) {
	fixture := setupServerFixture(t)
	fixture.tokens.ExchangeGrant = exchangeGrant()
	fixture.directory.Groups = []string{testGroupID}

	state := startLogin(t, fixture, "")
	target := "/connect/get_token?code=" + testAuthCode + "&state=" + state

	first := fixture.do(httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusSeeOther, first.Code)

	replay := fixture.do(httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusBadRequest, replay.Code)
	require.Equal(t, 1, fixture.tokens.ExchangeCalls())
}

// TestOAuthCallbackHandler_RejectedCode tests that a rejected exchange leaves no session behind.
func TestOAuthCallbackHandler_RejectedCode(t *testing.T) {
	fixture := setupServerFixture(t)
	fixture.tokens.ExchangeErr = fmt.Errorf("%w: status 400", auth.ProviderRejectedErr)

	state := startLogin(t, fixture, "")
	recorder := fixture.do(httptest.NewRequest(http.MethodGet, "/connect/get_token?code=bad-code&state="+state, nil))

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	body := decodeErrorBody(t, recorder)
	require.Equal(t, "login_failed", body["error"])
	require.Empty(t, recorder.Result().Cookies())
	require.Equal(t, 0, fixture.sessionRepo.UpsertCalls())
}

// TestOAuthCallbackHandler_ProviderOutage tests that an unreachable provider reports a gateway error.
func TestOAuthCallbackHandler_ProviderOutage(t *testing.T) {
	fixture := setupServerFixture(t)
	fixture.tokens.ExchangeErr = fmt.Errorf("%w: connection refused", auth.ProviderUnavailableErr)

	state := startLogin(t, fixture, "")
	recorder := fixture.do(httptest.NewRequest(http.MethodGet, "/connect/get_token?code="+testAuthCode+"&state="+state, nil))

	require.Equal(t, http.StatusBadGateway, recorder.Code)
	body := decodeErrorBody(t, recorder)
	require.Equal(t, "temporarily_unavailable", body["error"])
}

// TestOAuthCallbackHandler_CustomPath tests that AD_CALLBACK_PATH moves the callback route.
func TestOAuthCallbackHandler_CustomPath(t *testing.T) {
	t.Setenv("AD_CALLBACK_PATH", "/oauth/return")
	fixture := setupServerFixture(t)
	fixture.tokens.ExchangeGrant = exchangeGrant()
	fixture.directory.Groups = []string{testGroupID}

	state := startLogin(t, fixture, "")
	recorder := fixture.do(httptest.NewRequest(http.MethodGet, "/oauth/return?code="+testAuthCode+"&state="+state, nil))

	require.Equal(t, http.StatusSeeOther, recorder.Code)
}

// TestLogoutHandler_ClearsSession tests that logout deletes the login session and expires the cookie.
func TestLogoutHandler_ClearsSession(t *testing.T) {
	fixture := setupServerFixture(t)
	sessionID := seedLoginSession(t, fixture, testIdentity, time.Now().Add(time.Hour))

	recorder := fixture.do(authedRequest(http.MethodGet, server.RouteLogout, sessionID))

	require.Equal(t, http.StatusSeeOther, recorder.Code)
	require.Equal(t, server.RouteLogin, recorder.Header().Get("Location"))

	cookie := findCookie(t, recorder, sessionCookie)
	require.Empty(t, cookie.Value)
	require.Negative(t, cookie.MaxAge)

	_, err := fixture.loginSessions.Get(sessionID)
	require.ErrorIs(t, err, loginsession.LoginSessionNotFoundErr)
}

package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-ad-auth/auth"
	"github.com/jrsteele09/go-ad-auth/sessions"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the resolved directory session for the request
const ContextKeySession ContextKey = "session"

// ContextWithSession returns a context carrying the resolved session.
func ContextWithSession(ctx context.Context, session *sessions.Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, session)
}

// SessionFromContext returns the session RequireSession resolved for this
// request, if any.
func SessionFromContext(ctx context.Context) (*sessions.Session, bool) {
	session, ok := ctx.Value(ContextKeySession).(*sessions.Session)
	return session, ok
}

// RequireSession is middleware that resolves the caller's directory session
// from the login cookie, refreshing expired provider tokens transparently.
// Requests without a usable session are sent back through the sign-in flow.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(loggedInSessionID)
			if err != nil {
				s.redirectToLogin(w, r, "Sign-in required")
				return
			}

			loginSession, err := s.loginSessions.Get(cookie.Value)
			if err != nil {
				s.ClearLoginSessionCookie(w, r)
				s.redirectToLogin(w, r, "Invalid session")
				return
			}

			if loginSession.Expired() {
				_ = s.loginSessions.Delete(cookie.Value)
				s.ClearLoginSessionCookie(w, r)
				s.redirectToLogin(w, r, "Session expired")
				return
			}

			session, err := s.sessions.Resolve(r.Context(), loginSession.Identity)
			if err != nil {
				s.handleResolveFailure(w, r, cookie.Value, loginSession.Identity, err)
				return
			}

			next(w, r.WithContext(ContextWithSession(r.Context(), session)))
		}
	}
}

// RequireDefaultGroup is middleware that enforces membership of the
// configured baseline auth group. It must run after RequireSession. When no
// group is configured every signed-in user passes.
func (s *Server) RequireDefaultGroup() func(http.HandlerFunc) http.HandlerFunc {
	return s.RequireGroup(s.config.GetAuthGroup())
}

// RequireGroup is middleware that enforces membership of one directory
// group. It must run after RequireSession.
func (s *Server) RequireGroup(groupID string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if groupID == "" {
				next(w, r)
				return
			}

			session, ok := SessionFromContext(r.Context())
			if !ok {
				s.redirectToLogin(w, r, "Sign-in required")
				return
			}

			if !session.HasGroup(groupID) {
				s.forbidden(w, r)
				return
			}

			next(w, r)
		}
	}
}

// handleResolveFailure maps a failed session resolution to the boundary
// behaviour: dead sessions start a fresh sign-in, transient provider or
// directory outages do not clear anything.
func (s *Server) handleResolveFailure(w http.ResponseWriter, r *http.Request, sessionID, identity string, err error) {
	switch {
	case errors.Is(err, sessions.SessionNotFoundErr):
		_ = s.loginSessions.Delete(sessionID)
		s.ClearLoginSessionCookie(w, r)
		s.redirectToLogin(w, r, "Sign-in required")
	case errors.Is(err, auth.ProviderRejectedErr):
		// The provider refused the refresh token, so the stored session is
		// no longer redeemable.
		log.Warn().Err(err).Str("identity", identity).Msg("Refresh rejected, sign-in required")
		_ = s.loginSessions.Delete(sessionID)
		s.ClearLoginSessionCookie(w, r)
		s.redirectToLogin(w, r, "Session expired")
	default:
		log.Err(err).Str("identity", identity).Msg("Session resolution failed")
		if isBrowserRequest(r) {
			http.Error(w, "Sign-in temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSONError(w, "temporarily_unavailable", "Session could not be resolved", http.StatusServiceUnavailable)
	}
}

func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request, reason string) {
	if isBrowserRequest(r) {
		http.Redirect(w, r, RouteLogin+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
		return
	}
	writeJSONError(w, "unauthorized", reason, http.StatusUnauthorized)
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	if isBrowserRequest(r) {
		if redirect := s.config.GetForbiddenRedirect(); redirect != "" {
			http.Redirect(w, r, redirect, http.StatusSeeOther)
			return
		}
		http.Error(w, "You don't have the necessary group to access this view", http.StatusForbidden)
		return
	}
	writeJSONError(w, "forbidden", "Missing required group membership", http.StatusForbidden)
}

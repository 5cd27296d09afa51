package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-ad-auth/auth"
	"github.com/jrsteele09/go-ad-auth/server/loginsession"
	"github.com/rs/zerolog/log"
)

// OAuthCallbackHandler completes a sign-in after the provider redirects
// back: it validates the one-shot state, exchanges the authorization code
// for a directory session and binds a login cookie to the identity.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		errorParam := r.URL.Query().Get("error")
		errorDesc := r.URL.Query().Get("error_description")
		if errorParam != "" {
			writeJSONError(w, errorParam, errorDesc, http.StatusUnauthorized)
			return
		}

		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		// One-shot: a replayed state fails here regardless of the code.
		authState, err := s.authState.Consume(state)
		if err != nil {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		session, err := s.sessions.CompleteLogin(r.Context(), code)
		if err != nil {
			s.handleLoginFailure(w, err)
			return
		}

		sessionID := uuid.NewString()
		loginSession := loginsession.Session{
			Identity:  session.Identity,
			ExpiresAt: time.Now().Add(s.config.GetLoginSessionTTL()),
			CreatedAt: time.Now(),
		}
		if err := s.loginSessions.Upsert(sessionID, loginSession); err != nil {
			log.Err(err).Str("identity", session.Identity).Msg("Failed to create login session")
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}

		s.SetLoginSessionCookie(w, r, sessionID, int(s.config.GetLoginSessionTTL().Seconds()))
		log.Warn().Str("identity", session.Identity).Msg("User logged in")

		returnURL := authState.ReturnURL
		if returnURL == "" {
			returnURL = s.config.GetLoginRedirect()
		}
		http.Redirect(w, r, returnURL, http.StatusSeeOther)
	}
}

// handleLoginFailure maps a failed code exchange to a response: rejected or
// unreadable grants are the caller's problem, unreachable backends are ours.
func (s *Server) handleLoginFailure(w http.ResponseWriter, err error) {
	log.Err(err).Msg("Login failed")

	switch {
	case errors.Is(err, auth.ProviderRejectedErr),
		errors.Is(err, auth.MalformedIdentityTokenErr),
		errors.Is(err, auth.MissingFieldErr):
		writeJSONError(w, "login_failed", "The authorization code could not be redeemed", http.StatusUnauthorized)
	case errors.Is(err, auth.ProviderUnavailableErr),
		errors.Is(err, auth.DirectoryUnavailableErr):
		writeJSONError(w, "temporarily_unavailable", "Sign-in is temporarily unavailable", http.StatusBadGateway)
	default:
		http.Error(w, "Sign-in failed", http.StatusInternalServerError)
	}
}

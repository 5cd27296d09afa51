package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-ad-auth/server/statestore"
	"github.com/rs/zerolog/log"
)

// LoginHandler starts a sign-in: it stores a one-shot state capturing where
// the browser should return to and redirects to the provider.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnURL := r.URL.Query().Get("next")
		if !isSafeReturnURL(returnURL) {
			returnURL = ""
		}

		state := uuid.NewString()
		err := s.authState.Put(state, &statestore.AuthState{
			ReturnURL: returnURL,
			CreatedAt: time.Now(),
		})
		if err != nil {
			log.Err(err).Msg("Failed to store sign-in state")
			http.Error(w, "Failed to start sign-in", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, s.signIn.SignInURL(state), http.StatusSeeOther)
	}
}

// LogoutHandler deletes the login session bound to the cookie and clears
// it. The stored directory session is left alone; a later sign-in for the
// same identity simply replaces it.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(loggedInSessionID); err == nil {
			_ = s.loginSessions.Delete(cookie.Value)
		}
		s.ClearLoginSessionCookie(w, r)

		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jrsteele09/go-ad-auth/auth"
	"github.com/rs/zerolog/log"
)

type meResponse struct {
	Identity    string            `json:"identity"`
	ExpiresOn   int64             `json:"expires_on"`
	ExpiresIn   int64             `json:"expires_in_seconds"`
	Groups      []string          `json:"groups"`
	GroupsNamed []auth.NamedGroup `json:"groups_named"`
}

// MeHandler returns the caller's resolved session: identity, token expiry
// and group memberships with their directory display names.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			writeJSONError(w, "unauthorized", "No session in request context", http.StatusUnauthorized)
			return
		}

		named, err := s.sessions.GroupsNamed(r.Context(), session.AccessToken, session.Groups)
		if err != nil {
			log.Err(err).Str("identity", session.Identity).Msg("Failed to resolve group names")
			if errors.Is(err, auth.DirectoryUnavailableErr) || errors.Is(err, auth.ProviderUnavailableErr) {
				writeJSONError(w, "temporarily_unavailable", "Directory lookup failed", http.StatusBadGateway)
				return
			}
			writeJSONError(w, "internal_error", "Failed to resolve group names", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		_ = json.NewEncoder(w).Encode(meResponse{
			Identity:    session.Identity,
			ExpiresOn:   session.ExpiresOn,
			ExpiresIn:   int64(session.ExpiresIn() / time.Second),
			Groups:      session.Groups,
			GroupsNamed: named,
		})
	}
}

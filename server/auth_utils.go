package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

const (
	// loggedInSessionID is the name of the cookie binding a browser to a
	// signed-in identity
	loggedInSessionID = "loggedInSessionId"

	contentTypeJSON = "application/json; charset=utf-8"
)

func (s *Server) SetLoginSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string, maxAge int) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     loggedInSessionID,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) ClearLoginSessionCookie(w http.ResponseWriter, r *http.Request) {
	s.SetLoginSessionCookie(w, r, "", -1)
}

// isBrowserRequest reports whether the caller expects an HTML response,
// which selects redirects over JSON error bodies.
func isBrowserRequest(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// isSafeReturnURL accepts only local paths, so a crafted ?next= cannot send
// a signed-in browser off-site.
func isSafeReturnURL(returnURL string) bool {
	return strings.HasPrefix(returnURL, "/") && !strings.HasPrefix(returnURL, "//")
}

// writeJSONError writes an OAuth2-style error response
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

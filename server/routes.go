package server

import (
	"net/http"
)

func (s *Server) initRoutes() {
	callbackPath := s.config.GetCallbackPath()
	if callbackPath == "" {
		callbackPath = DefaultCallbackPath
	}

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+callbackPath, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleware()...))

	// API routes (require a resolved directory session)
	s.RegisterRouteHandler("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireSession(), s.RequireDefaultGroup())...))

	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleware()...))
}

// IndexHandler sends browsers to the session view; RequireSession on that
// route bounces anyone not signed in to the login flow.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteMe, http.StatusSeeOther)
	}
}

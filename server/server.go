package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-ad-auth/auth"
	"github.com/jrsteele09/go-ad-auth/internal/config"
	"github.com/jrsteele09/go-ad-auth/server/loginsession"
	"github.com/jrsteele09/go-ad-auth/server/statestore"
)

// SignInURLBuilder builds the provider URL a sign-in is started at, carrying
// the opaque state of one flow.
type SignInURLBuilder interface {
	SignInURL(state string) string
}

type Server struct {
	env           string // Environment (e.g., "DEV", "production")
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	sessions      *auth.SessionManager
	signIn        SignInURLBuilder
	loginSessions loginsession.Repo
	authState     statestore.Repo
}

func New(config config.Config, sessionManager *auth.SessionManager, signIn SignInURLBuilder, loginSessionRepo loginsession.Repo, authStateRepo statestore.Repo) (*Server, error) {
	if sessionManager == nil {
		return nil, fmt.Errorf("[Server New] session manager is required")
	}
	if signIn == nil {
		return nil, fmt.Errorf("[Server New] sign-in URL builder is required")
	}
	if loginSessionRepo == nil {
		return nil, fmt.Errorf("[Server New] login session repo is required")
	}
	if authStateRepo == nil {
		return nil, fmt.Errorf("[Server New] auth state repo is required")
	}

	s := &Server{
		mux:           http.NewServeMux(),
		config:        config,
		sessions:      sessionManager,
		signIn:        signIn,
		loginSessions: loginSessionRepo,
		authState:     authStateRepo,
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

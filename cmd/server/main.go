package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-ad-auth/auth"
	"github.com/jrsteele09/go-ad-auth/directory"
	"github.com/jrsteele09/go-ad-auth/internal/config"
	"github.com/jrsteele09/go-ad-auth/provider"
	"github.com/jrsteele09/go-ad-auth/server"
	"github.com/jrsteele09/go-ad-auth/server/loginsession"
	"github.com/jrsteele09/go-ad-auth/server/statestore"
	"github.com/jrsteele09/go-ad-auth/sessions"
	"github.com/jrsteele09/go-ad-auth/sessions/redisstore"
	"github.com/jrsteele09/go-ad-auth/sessions/sqlite"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	ctx := context.Background()

	sessionRepo, closeRepo, err := newSessionRepo(ctx, c)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer closeRepo()

	providerClient, err := provider.New(ctx, provider.Config{
		AppID:        c.GetAppID(),
		AppSecret:    c.GetAppSecret(),
		RedirectURI:  c.GetRedirectURI(),
		AuthorizeURL: c.GetAuthorizeURL(),
		TokenURL:     c.GetTokenURL(),
		Resource:     c.GetGraphURL(),
		IssuerURL:    c.GetIssuerURL(),
	})
	if err != nil {
		return fmt.Errorf("provider client: %w", err)
	}

	directoryClient, err := directory.New(directory.Config{
		GraphURL: c.GetGraphURL(),
		Tenant:   c.GetDirectoryTenant(),
	})
	if err != nil {
		return fmt.Errorf("directory client: %w", err)
	}

	sessionManager, err := auth.NewSessionManager(auth.Clients{
		Tokens:    providerClient,
		Directory: directoryClient,
		Sessions:  sessionRepo,
	})
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}

	authState := statestore.NewInMemoryRepo(c.GetStateTTL())
	defer authState.Close()

	srv, err := server.New(c, sessionManager, providerClient, loginsession.NewInMemoryLoginSessionRepo(), authState)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// newSessionRepo builds the configured session store backend. The returned
// close function releases the backend's resources and is safe to call even
// for the in-memory store.
func newSessionRepo(ctx context.Context, c config.Config) (sessions.Repo, func(), error) {
	switch backend := c.GetStoreBackend(); backend {
	case config.StoreBackendMemory:
		return sessions.NewInMemorySessionRepo(), func() {}, nil

	case config.StoreBackendSQLite:
		dsn := c.GetSQLiteDSN()
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating data folder: %w", err)
		}
		store, err := sqlite.New(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	case config.StoreBackendRedis:
		store, err := redisstore.New(ctx, c.GetRedisURL(), c.GetRedisKeyPrefix())
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", backend)
	}
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

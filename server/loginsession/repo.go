package loginsession

import (
	"errors"
	"time"
)

// LoginSessionNotFoundErr is returned by Get when no login session exists
// for the id, which usually means the cookie outlived the session.
var LoginSessionNotFoundErr = errors.New("login session not found")

// Session binds a browser cookie to a signed-in identity. The provider
// tokens themselves live in the session store, keyed by that identity; the
// login session holds only the linkage and its own lifetime.
type Session struct {
	Identity string // Directory identity (UPN) the cookie belongs to

	// Session management
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the login session's absolute lifetime has passed.
func (s Session) Expired() bool {
	return s.ExpiresAt.Before(time.Now())
}

type Repo interface {
	Upsert(sessionID string, session Session) error
	Get(sessionID string) (Session, error)
	Delete(sessionID string) error
}

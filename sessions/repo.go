package sessions

import (
	"context"
	"errors"
)

// SessionNotFoundErr is returned by Get when no session is stored for the
// identity. Callers treat it as a normal branch, not a failure.
var SessionNotFoundErr = errors.New("session not found")

// Repo defines the interface for session storage, keyed by identity (UPN).
type Repo interface {
	// Upsert stores the session, replacing any existing session for the
	// same identity
	Upsert(ctx context.Context, session *Session) error

	// Get retrieves the session for an identity, returning
	// SessionNotFoundErr when none exists
	Get(ctx context.Context, identity string) (*Session, error)

	// Delete removes the session for an identity. Deleting an unknown
	// identity is not an error
	Delete(ctx context.Context, identity string) error
}

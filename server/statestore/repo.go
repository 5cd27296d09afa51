package statestore

import (
	"errors"
	"time"
)

var (
	// StateNotFoundErr is returned by Consume for unknown states, including
	// states already consumed once.
	StateNotFoundErr = errors.New("state not found")

	// StateExpiredErr is returned by Consume when the sign-in took longer
	// than the store's TTL.
	StateExpiredErr = errors.New("state expired")
)

// AuthState carries what the sign-in flow needs to resume once the provider
// redirects back to the callback.
type AuthState struct {
	ReturnURL string
	CreatedAt time.Time
}

// Repo stores pending sign-in states keyed by the opaque state parameter.
// States are one-shot: Consume returns a state at most once.
type Repo interface {
	Put(state string, authState *AuthState) error
	Consume(state string) (*AuthState, error)
}

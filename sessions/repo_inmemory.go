package sessions

import (
	"context"
	"fmt"
	"sync"
)

// InMemorySessionRepo is an in-memory implementation of Repo, suitable for
// tests and single-process deployments.
type InMemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Session // identity -> Session
}

// NewInMemorySessionRepo creates a new in-memory session repository
func NewInMemorySessionRepo() *InMemorySessionRepo {
	return &InMemorySessionRepo{
		sessions: make(map[string]*Session),
	}
}

// Upsert creates or replaces the session stored for session.Identity
func (r *InMemorySessionRepo) Upsert(_ context.Context, session *Session) error {
	if session == nil || session.Identity == "" {
		return fmt.Errorf("session identity is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy so later changes by the caller don't leak into the repo
	r.sessions[session.Identity] = cloneSession(session)
	return nil
}

// Get retrieves the session for an identity
func (r *InMemorySessionRepo) Get(_ context.Context, identity string) (*Session, error) {
	if identity == "" {
		return nil, fmt.Errorf("identity is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[identity]
	if !ok {
		return nil, SessionNotFoundErr
	}
	return cloneSession(session), nil
}

// Delete removes the session for an identity
func (r *InMemorySessionRepo) Delete(_ context.Context, identity string) error {
	if identity == "" {
		return fmt.Errorf("identity is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, identity)
	return nil
}

func cloneSession(s *Session) *Session {
	clone := *s
	if s.Groups != nil {
		clone.Groups = make([]string, len(s.Groups))
		copy(clone.Groups, s.Groups)
	}
	return &clone
}

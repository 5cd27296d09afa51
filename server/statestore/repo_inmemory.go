package statestore

import (
	"errors"
	"sync"
	"time"
)

const cleanupInterval = 5 * time.Minute

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface. A background goroutine sweeps out states the callback never
// consumed.
type InMemoryRepo struct {
	mu     sync.Mutex
	states map[string]*AuthState
	ttl    time.Duration

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewInMemoryRepo creates a new in-memory auth state repository whose states
// expire after ttl.
func NewInMemoryRepo(ttl time.Duration) *InMemoryRepo {
	r := &InMemoryRepo{
		states:      make(map[string]*AuthState),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	go r.cleanupLoop()

	return r
}

// Put stores a pending sign-in state
func (r *InMemoryRepo) Put(state string, authState *AuthState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if authState == nil {
		return errors.New("authState cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Create a copy to prevent external modifications
	stored := *authState
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.states[state] = &stored

	return nil
}

// Consume removes and returns a pending state. A second Consume of the same
// state reports StateNotFoundErr.
func (r *InMemoryRepo) Consume(state string) (*AuthState, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	authState, exists := r.states[state]
	if !exists {
		return nil, StateNotFoundErr
	}
	delete(r.states, state)

	if time.Since(authState.CreatedAt) > r.ttl {
		return nil, StateExpiredErr
	}

	returned := *authState
	return &returned, nil
}

// Close stops the background cleanup goroutine.
func (r *InMemoryRepo) Close() {
	r.stopOnce.Do(func() { close(r.stopCleanup) })
}

func (r *InMemoryRepo) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanup()
		case <-r.stopCleanup:
			return
		}
	}
}

// cleanup removes states for sign-ins that were abandoned mid-flow.
func (r *InMemoryRepo) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for state, authState := range r.states {
		if time.Since(authState.CreatedAt) > r.ttl {
			delete(r.states, state)
		}
	}
}

package fakesessionrepo

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-ad-auth/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory sessions.Repo with call counters and
// injectable errors for exercising failure paths.
type FakeSessionRepo struct {
	sessions map[string]*sessions.Session
	lock     sync.RWMutex

	UpsertErr error // Returned by Upsert when set
	GetErr    error // Returned by Get when set

	upsertCalls int
	getCalls    int
	deleteCalls int
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		sessions: make(map[string]*sessions.Session),
	}
}

func (sr *FakeSessionRepo) Upsert(_ context.Context, session *sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.upsertCalls++
	if sr.UpsertErr != nil {
		return sr.UpsertErr
	}

	stored := *session
	stored.Groups = append([]string(nil), session.Groups...)
	sr.sessions[session.Identity] = &stored
	return nil
}

func (sr *FakeSessionRepo) Get(_ context.Context, identity string) (*sessions.Session, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.getCalls++
	if sr.GetErr != nil {
		return nil, sr.GetErr
	}

	session, ok := sr.sessions[identity]
	if !ok {
		return nil, sessions.SessionNotFoundErr
	}

	stored := *session
	stored.Groups = append([]string(nil), session.Groups...)
	return &stored, nil
}

func (sr *FakeSessionRepo) Delete(_ context.Context, identity string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.deleteCalls++
	delete(sr.sessions, identity)
	return nil
}

// UpsertCalls reports how many times Upsert has been invoked.
func (sr *FakeSessionRepo) UpsertCalls() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.upsertCalls
}

// GetCalls reports how many times Get has been invoked.
func (sr *FakeSessionRepo) GetCalls() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.getCalls
}

// DeleteCalls reports how many times Delete has been invoked.
func (sr *FakeSessionRepo) DeleteCalls() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return sr.deleteCalls
}

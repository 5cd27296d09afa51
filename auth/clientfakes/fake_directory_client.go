package fakeclients

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-ad-auth/auth"
)

var _ auth.DirectoryClient = (*FakeDirectoryClient)(nil)

// FakeDirectoryClient is an in-memory implementation of auth.DirectoryClient
// for testing. It records every access token presented to it.
type FakeDirectoryClient struct {
	lock sync.Mutex

	Groups       []string          // Returned by GetUserGroups
	GroupsErr    error             // Returned by GetUserGroups instead, when set
	AllGroups    map[string]string // Returned by GetAllGroups
	AllGroupsErr error             // Returned by GetAllGroups instead, when set

	userGroupsCalls int
	allGroupsCalls  int
	tokensSeen      []string
}

func (f *FakeDirectoryClient) GetUserGroups(_ context.Context, accessToken string) ([]string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.userGroupsCalls++
	f.tokensSeen = append(f.tokensSeen, accessToken)
	if f.GroupsErr != nil {
		return nil, f.GroupsErr
	}
	return append([]string(nil), f.Groups...), nil
}

func (f *FakeDirectoryClient) GetAllGroups(_ context.Context, _ string) (map[string]string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.allGroupsCalls++
	if f.AllGroupsErr != nil {
		return nil, f.AllGroupsErr
	}
	all := make(map[string]string, len(f.AllGroups))
	for id, name := range f.AllGroups {
		all[id] = name
	}
	return all, nil
}

// UserGroupsCalls returns how many times GetUserGroups was called.
func (f *FakeDirectoryClient) UserGroupsCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.userGroupsCalls
}

// AllGroupsCalls returns how many times GetAllGroups was called.
func (f *FakeDirectoryClient) AllGroupsCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.allGroupsCalls
}

// TokensSeen returns the access tokens presented to GetUserGroups, in order.
func (f *FakeDirectoryClient) TokensSeen() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]string(nil), f.tokensSeen...)
}

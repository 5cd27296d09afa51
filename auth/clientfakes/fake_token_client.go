package fakeclients

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-ad-auth/auth"
)

var _ auth.TokenClient = (*FakeTokenClient)(nil)

// FakeTokenClient is an in-memory implementation of auth.TokenClient for
// testing. Configured grants are returned and every call is counted.
type FakeTokenClient struct {
	lock sync.Mutex

	ExchangeGrant *auth.TokenGrant // Returned by ExchangeCode
	ExchangeErr   error            // Returned by ExchangeCode instead, when set
	RefreshGrant  *auth.TokenGrant // Returned by Refresh
	RefreshErr    error            // Returned by Refresh instead, when set

	exchangeCalls    int
	refreshCalls     int
	lastCode         string
	lastRefreshToken string
}

func (f *FakeTokenClient) ExchangeCode(_ context.Context, code string) (*auth.TokenGrant, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.exchangeCalls++
	f.lastCode = code
	if f.ExchangeErr != nil {
		return nil, f.ExchangeErr
	}
	return cloneGrant(f.ExchangeGrant), nil
}

func (f *FakeTokenClient) Refresh(_ context.Context, refreshToken string) (*auth.TokenGrant, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.refreshCalls++
	f.lastRefreshToken = refreshToken
	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}
	return cloneGrant(f.RefreshGrant), nil
}

// ExchangeCalls returns how many times ExchangeCode was called.
func (f *FakeTokenClient) ExchangeCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.exchangeCalls
}

// RefreshCalls returns how many times Refresh was called.
func (f *FakeTokenClient) RefreshCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.refreshCalls
}

// LastCode returns the authorization code from the most recent ExchangeCode.
func (f *FakeTokenClient) LastCode() string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.lastCode
}

// LastRefreshToken returns the token from the most recent Refresh.
func (f *FakeTokenClient) LastRefreshToken() string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.lastRefreshToken
}

func cloneGrant(grant *auth.TokenGrant) *auth.TokenGrant {
	if grant == nil {
		return nil
	}
	copied := *grant
	return &copied
}

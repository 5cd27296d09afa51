package auth

import (
	"context"

	"github.com/jrsteele09/go-ad-auth/sessions"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// UnknownGroupName is used for group ids the directory has no display name for.
const UnknownGroupName = "unknown"

// NamedGroup pairs a directory group id with its display name.
type NamedGroup struct {
	ID   string `json:"id"`   // Directory object id
	Name string `json:"name"` // Display name, "unknown" when unmapped
}

// SessionManager owns the session lifecycle: completing provider logins,
// resolving stored sessions and transparently refreshing expired ones.
type SessionManager struct {
	clients      Clients
	refreshGroup singleflight.Group // Collapses concurrent refreshes of one identity
}

// NewSessionManager creates a SessionManager from its collaborators.
func NewSessionManager(clients Clients) (*SessionManager, error) {
	if clients.Tokens == nil {
		return nil, errors.New("[NewSessionManager] Tokens client is required")
	}
	if clients.Directory == nil {
		return nil, errors.New("[NewSessionManager] Directory client is required")
	}
	if clients.Sessions == nil {
		return nil, errors.New("[NewSessionManager] Sessions repo is required")
	}

	return &SessionManager{clients: clients}, nil
}

// CompleteLogin redeems an authorization code, reads the user's group
// membership and persists the resulting session. Any failure aborts the
// login and nothing is persisted.
func (s *SessionManager) CompleteLogin(ctx context.Context, code string) (*sessions.Session, error) {
	if code == "" {
		return nil, errors.New("[SessionManager.CompleteLogin] authorization code is required")
	}

	grant, err := s.clients.Tokens.ExchangeCode(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "[SessionManager.CompleteLogin] tokens.ExchangeCode")
	}

	// Membership is always read with the newly issued access token, never a
	// previously stored one.
	groups, err := s.clients.Directory.GetUserGroups(ctx, grant.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "[SessionManager.CompleteLogin] directory.GetUserGroups")
	}

	session := grantSession(grant.Identity, grant, groups)
	if err := s.clients.Sessions.Upsert(ctx, session); err != nil {
		return nil, errors.Wrap(err, "[SessionManager.CompleteLogin] sessions.Upsert")
	}

	return session, nil
}

// Resolve returns the stored session for an identity, refreshing it first if
// it has expired. A fresh session is returned without any network calls. A
// failed refresh propagates its error and the stored row is left untouched.
func (s *SessionManager) Resolve(ctx context.Context, identity string) (*sessions.Session, error) {
	if identity == "" {
		return nil, errors.New("[SessionManager.Resolve] identity is required")
	}

	session, err := s.clients.Sessions.Get(ctx, identity)
	if err != nil {
		return nil, errors.Wrap(err, "[SessionManager.Resolve] sessions.Get")
	}
	if !session.IsExpired() {
		return session, nil
	}

	refreshed, err, _ := s.refreshGroup.Do(identity, func() (interface{}, error) {
		return s.refreshSession(ctx, identity)
	})
	if err != nil {
		return nil, err
	}

	return refreshed.(*sessions.Session), nil
}

// GroupsNamed resolves directory display names for the given group ids,
// preserving order. Ids the directory does not report are named "unknown".
func (s *SessionManager) GroupsNamed(ctx context.Context, accessToken string, groupIDs []string) ([]NamedGroup, error) {
	all, err := s.clients.Directory.GetAllGroups(ctx, accessToken)
	if err != nil {
		return nil, errors.Wrap(err, "[SessionManager.GroupsNamed] directory.GetAllGroups")
	}

	named := make([]NamedGroup, 0, len(groupIDs))
	for _, id := range groupIDs {
		name, found := all[id]
		if !found {
			name = UnknownGroupName
		}
		named = append(named, NamedGroup{ID: id, Name: name})
	}

	return named, nil
}

func (s *SessionManager) refreshSession(ctx context.Context, identity string) (*sessions.Session, error) {
	// Another caller may have refreshed this identity while we waited on the
	// flight, so re-read before going to the provider.
	current, err := s.clients.Sessions.Get(ctx, identity)
	if err != nil {
		return nil, errors.Wrap(err, "[SessionManager.refreshSession] sessions.Get")
	}
	if !current.IsExpired() {
		return current, nil
	}

	grant, err := s.clients.Tokens.Refresh(ctx, current.RefreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "[SessionManager.refreshSession] tokens.Refresh")
	}

	groups, err := s.clients.Directory.GetUserGroups(ctx, grant.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "[SessionManager.refreshSession] directory.GetUserGroups")
	}

	session := grantSession(identity, grant, groups)
	if err := s.clients.Sessions.Upsert(ctx, session); err != nil {
		return nil, errors.Wrap(err, "[SessionManager.refreshSession] sessions.Upsert")
	}

	return session, nil
}

func grantSession(identity string, grant *TokenGrant, groups []string) *sessions.Session {
	return &sessions.Session{
		Identity:     identity,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresOn:    grant.ExpiresOn,
		TokenType:    grant.TokenType,
		Resource:     grant.Resource,
		Scope:        grant.Scope,
		Groups:       groups,
	}
}

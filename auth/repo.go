package auth

import (
	"context"

	"github.com/jrsteele09/go-ad-auth/sessions"
)

// TokenClient talks to the identity provider's token endpoint.
type TokenClient interface {
	// ExchangeCode redeems an authorization code for a grant, decoding the
	// user's identity from the returned id_token.
	ExchangeCode(ctx context.Context, code string) (*TokenGrant, error)

	// Refresh obtains a replacement grant for a refresh token.
	Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error)
}

// DirectoryClient reads group information from the directory graph API.
type DirectoryClient interface {
	// GetUserGroups returns the ids of every group the token's user is a
	// member of, including transitive memberships.
	GetUserGroups(ctx context.Context, accessToken string) ([]string, error)

	// GetAllGroups returns id to display name for every group in the
	// directory.
	GetAllGroups(ctx context.Context, accessToken string) (map[string]string, error)
}

// Clients is a struct that holds the collaborators used by the SessionManager
type Clients struct {
	Tokens    TokenClient     // Identity provider token endpoint
	Directory DirectoryClient // Directory graph API
	Sessions  sessions.Repo   // Session persistence
}

package sessions

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ExpirySkew is subtracted from a session's expiry when deciding whether the
// access token is still usable, so a token is treated as expired slightly
// before the provider would start rejecting it.
const ExpirySkew = 10 * time.Second

// NowTimeFunc returns the current time - replaceable for testing
var NowTimeFunc = time.Now

// Session holds the tokens and directory group memberships obtained for a
// single signed-in identity. Sessions are keyed by identity (UPN): a new
// sign-in for the same identity replaces the previous session.
type Session struct {
	Identity     string   `json:"identity"`      // User principal name from the identity token
	AccessToken  string   `json:"access_token"`  // Bearer token for the directory resource
	RefreshToken string   `json:"refresh_token"` // Token used to obtain a replacement grant
	ExpiresOn    int64    `json:"expires_on"`    // Access token expiry as Unix seconds
	TokenType    string   `json:"token_type"`    // Usually "Bearer"
	Resource     string   `json:"resource"`      // Resource the access token was issued for
	Scope        string   `json:"scope"`         // Scopes granted by the provider
	Groups       []string `json:"groups"`        // Directory group object IDs the identity belongs to
}

// IsExpired reports whether the access token should no longer be used. The
// expiry is brought forward by ExpirySkew.
func (s *Session) IsExpired() bool {
	return NowTimeFunc().Unix() >= s.ExpiresOn-int64(ExpirySkew/time.Second)
}

// ExpiresIn returns the remaining lifetime of the access token, negative once
// the expiry has passed.
func (s *Session) ExpiresIn() time.Duration {
	return time.Unix(s.ExpiresOn, 0).Sub(NowTimeFunc())
}

// HasGroup reports whether the identity is a member of the given directory
// group. Denials are logged for auditing.
func (s *Session) HasGroup(groupID string) bool {
	for _, g := range s.Groups {
		if g == groupID {
			return true
		}
	}
	log.Warn().Str("identity", s.Identity).Str("group", groupID).Msg("User not in group")
	return false
}

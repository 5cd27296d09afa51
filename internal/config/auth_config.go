package config

import "time"

// AuthConfig describes the boundary behaviour around sign-in: where the
// provider calls back to, where users land afterwards, and which directory
// group gates baseline access.
type AuthConfig interface {
	GetCallbackPath() string
	GetLoginRedirect() string
	GetForbiddenRedirect() string
	GetAuthGroup() string
	GetLoginSessionTTL() time.Duration
	GetStateTTL() time.Duration
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetCallbackPath() string {
	return GetEnv("AD_CALLBACK_PATH", "/connect/get_token")
}

func (Auth) GetLoginRedirect() string {
	return GetEnv("AD_LOGIN_REDIRECT", "/")
}

// GetForbiddenRedirect returns where browsers are sent when a group check
// denies access. Empty means a plain 403 response.
func (Auth) GetForbiddenRedirect() string {
	return GetEnv("AD_GROUP_FORBIDDEN_REDIRECT", "")
}

// GetAuthGroup returns the directory group required for baseline access.
// Empty means any authenticated directory user is allowed.
func (Auth) GetAuthGroup() string {
	return GetEnv("AD_AUTH_GROUP", "")
}

func (Auth) GetLoginSessionTTL() time.Duration {
	return 24 * time.Hour
}

// GetStateTTL bounds how long a sign-in redirect may take before its state
// is discarded.
func (Auth) GetStateTTL() time.Duration {
	return 10 * time.Minute
}

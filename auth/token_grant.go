package auth

// TokenGrant is the outcome of a successful token-endpoint request, either
// an authorization-code exchange or a refresh. Identity is populated only by
// the code exchange, where it is decoded from the id_token.
type TokenGrant struct {
	Identity     string // User principal name from the id_token, empty on refresh
	AccessToken  string // Bearer token for the configured resource
	RefreshToken string // Token used to obtain the next grant
	ExpiresOn    int64  // Absolute expiry, unix seconds
	TokenType    string // Usually "Bearer"
	Resource     string // Resource the access token was issued for
	Scope        string // Space-separated scopes granted
}

package config

// ProviderConfig describes the identity provider registration: the
// application credentials and the endpoints codes and refresh tokens are
// redeemed at.
type ProviderConfig interface {
	GetAppID() string
	GetAppSecret() string
	GetRedirectURI() string
	GetAuthorizeURL() string
	GetTokenURL() string
	GetIssuerURL() string
}

type Provider struct{}

var _ ProviderConfig = Provider{}

func (Provider) GetAppID() string {
	return GetEnv("AD_APP_ID", "")
}

func (Provider) GetAppSecret() string {
	return GetEnv("AD_APP_KEY", "")
}

func (Provider) GetRedirectURI() string {
	return GetEnv("AD_REDIRECT_URI", "")
}

func (Provider) GetAuthorizeURL() string {
	return GetEnv("AD_AUTH_URL", "https://login.microsoftonline.com/common/oauth2/authorize")
}

func (Provider) GetTokenURL() string {
	return GetEnv("AD_TOKEN_URL", "https://login.microsoftonline.com/common/oauth2/token")
}

// GetIssuerURL returns the OIDC issuer used to verify id_token signatures.
// When empty, identity tokens are decoded without signature verification.
func (Provider) GetIssuerURL() string {
	return GetEnv("AD_ISSUER_URL", "")
}

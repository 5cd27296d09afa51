// Package provider implements the client side of an Azure AD style OAuth2
// identity provider: building sign-in URLs and redeeming authorization codes
// and refresh tokens at the classic token endpoint.
package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// defaultHTTPTimeout bounds every token-endpoint request.
const defaultHTTPTimeout = 30 * time.Second

// Config holds the provider endpoints and application credentials.
type Config struct {
	AppID        string // Application id registered with the provider
	AppSecret    string // Application secret
	RedirectURI  string // Callback URL registered for the application
	AuthorizeURL string // Authorization endpoint users are sent to
	TokenURL     string // Token endpoint codes and refresh tokens are redeemed at
	Resource     string // Resource access tokens are requested for
	IssuerURL    string // When set, id_token signatures are verified against this issuer
}

// Client talks to the identity provider on behalf of one registered
// application.
type Client struct {
	config     Config
	httpClient *http.Client
	verifier   *oidc.IDTokenVerifier
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a Client for the configured provider. When an issuer URL is
// configured, OIDC discovery runs once and id_token verification is enabled
// for every code exchange.
func New(ctx context.Context, config Config, options ...Option) (*Client, error) {
	if config.AppID == "" {
		return nil, errors.New("[provider.New] AppID is required")
	}
	if config.AppSecret == "" {
		return nil, errors.New("[provider.New] AppSecret is required")
	}
	if config.RedirectURI == "" {
		return nil, errors.New("[provider.New] RedirectURI is required")
	}
	if config.AuthorizeURL == "" {
		return nil, errors.New("[provider.New] AuthorizeURL is required")
	}
	if config.TokenURL == "" {
		return nil, errors.New("[provider.New] TokenURL is required")
	}
	if config.Resource == "" {
		return nil, errors.New("[provider.New] Resource is required")
	}

	client := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}

	for _, option := range options {
		option(client)
	}

	if config.IssuerURL != "" {
		oidcProvider, err := oidc.NewProvider(ctx, config.IssuerURL)
		if err != nil {
			return nil, errors.Wrap(err, "[provider.New] oidc discovery")
		}
		client.verifier = oidcProvider.Verifier(&oidc.Config{ClientID: config.AppID})
	}

	return client, nil
}

// SignInURL returns the authorization endpoint URL a user is sent to in order
// to start a login, carrying the given opaque state.
func (c *Client) SignInURL(state string) string {
	oauthConfig := oauth2.Config{
		ClientID:    c.config.AppID,
		RedirectURL: c.config.RedirectURI,
		Endpoint:    oauth2.Endpoint{AuthURL: c.config.AuthorizeURL},
	}

	return oauthConfig.AuthCodeURL(state)
}

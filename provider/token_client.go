package provider

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-ad-auth/auth"
	"github.com/pkg/errors"
)

// Compile-time interface compliance check.
var _ auth.TokenClient = (*Client)(nil)

// maxResponseSize is the maximum allowed token response size.
const maxResponseSize = 1024 * 1024 // 1MB

var (
	codeGrantFields    = []string{"access_token", "refresh_token", "expires_on", "token_type", "resource", "scope", "id_token"}
	refreshGrantFields = []string{"access_token", "refresh_token", "expires_on"}
)

// ExchangeCode redeems an authorization code at the token endpoint. Every
// grant field is required in the response and the user's identity is decoded
// from the id_token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*auth.TokenGrant, error) {
	if code == "" {
		return nil, errors.New("[Client.ExchangeCode] authorization code is required")
	}

	params := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.config.RedirectURI},
		"client_id":     {c.config.AppID},
		"client_secret": {c.config.AppSecret},
		"resource":      {c.config.Resource},
	}

	wire, err := c.tokenRequest(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.ExchangeCode]")
	}
	if err := wire.requireFields(codeGrantFields...); err != nil {
		return nil, errors.Wrap(err, "[Client.ExchangeCode]")
	}

	identity, err := c.identityFromToken(ctx, wire.IDToken)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.ExchangeCode]")
	}

	grant := wire.grant()
	grant.Identity = identity

	return grant, nil
}

// Refresh redeems a refresh token for a replacement grant. Only the token and
// expiry fields are required in the response.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*auth.TokenGrant, error) {
	if refreshToken == "" {
		return nil, errors.New("[Client.Refresh] refresh token is required")
	}

	params := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"redirect_uri":  {c.config.RedirectURI},
		"client_id":     {c.config.AppID},
		"client_secret": {c.config.AppSecret},
		"resource":      {c.config.Resource},
	}

	wire, err := c.tokenRequest(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Refresh]")
	}
	if err := wire.requireFields(refreshGrantFields...); err != nil {
		return nil, errors.Wrap(err, "[Client.Refresh]")
	}

	return wire.grant(), nil
}

func (c *Client) tokenRequest(ctx context.Context, params url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create token request")
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(auth.ProviderUnavailableErr, "token request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Wrapf(auth.ProviderUnavailableErr, "reading token response: %v", err)
	}

	return parseTokenResponse(body, resp.StatusCode)
}

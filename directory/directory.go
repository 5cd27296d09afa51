// Package directory reads group membership from the classic AD graph API.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/go-ad-auth/auth"
	"github.com/pkg/errors"
)

// Compile-time interface compliance check.
var _ auth.DirectoryClient = (*Client)(nil)

const (
	// apiVersion is the graph API version every request pins.
	apiVersion = "1.6"

	// DefaultTenant addresses the home tenant of the signed-in user.
	DefaultTenant = "myorganization"

	defaultHTTPTimeout = 30 * time.Second
	maxResponseSize    = 1024 * 1024 // 1MB
)

// Config holds the graph endpoint settings.
type Config struct {
	GraphURL string // Graph API base URL, e.g. https://graph.windows.net
	Tenant   string // Tenant segment for organization-wide queries, DefaultTenant when empty
}

// Client reads group information from the directory graph API.
type Client struct {
	config     Config
	httpClient *http.Client
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a directory Client.
func New(config Config, options ...Option) (*Client, error) {
	if config.GraphURL == "" {
		return nil, errors.New("[directory.New] GraphURL is required")
	}
	if config.Tenant == "" {
		config.Tenant = DefaultTenant
	}

	client := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}

	for _, option := range options {
		option(client)
	}

	return client, nil
}

// memberGroupsRequest is the getMemberGroups operation body. Membership is
// requested for all groups, not only security-enabled ones.
type memberGroupsRequest struct {
	SecurityEnabledOnly bool `json:"securityEnabledOnly"`
}

type groupIDsResponse struct {
	Value []string `json:"value"`
}

type directoryGroup struct {
	ObjectID    string `json:"objectId"`
	DisplayName string `json:"displayName"`
}

type groupListResponse struct {
	Value []directoryGroup `json:"value"`
}

// GetUserGroups returns the ids of every group the token's user is a member
// of, including transitive memberships.
func (c *Client) GetUserGroups(ctx context.Context, accessToken string) ([]string, error) {
	requestBody, err := json.Marshal(memberGroupsRequest{SecurityEnabledOnly: false})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.GetUserGroups] encoding request")
	}

	body, err := c.graphRequest(ctx, http.MethodPost, c.memberGroupsURL(), accessToken, requestBody)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.GetUserGroups]")
	}

	var wire groupIDsResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, errors.Wrapf(auth.DirectoryUnavailableErr, "[Client.GetUserGroups] decoding response: %v", err)
	}

	return wire.Value, nil
}

// GetAllGroups returns id to display name for every group in the directory.
// Names are used for display only, never for authorization decisions.
func (c *Client) GetAllGroups(ctx context.Context, accessToken string) (map[string]string, error) {
	body, err := c.graphRequest(ctx, http.MethodGet, c.allGroupsURL(), accessToken, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.GetAllGroups]")
	}

	var wire groupListResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, errors.Wrapf(auth.DirectoryUnavailableErr, "[Client.GetAllGroups] decoding response: %v", err)
	}

	groups := make(map[string]string, len(wire.Value))
	for _, group := range wire.Value {
		groups[group.ObjectID] = group.DisplayName
	}

	return groups, nil
}

func (c *Client) graphRequest(ctx context.Context, method, requestURL, accessToken string, requestBody []byte) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		bodyReader = bytes.NewReader(requestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create graph request")
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(auth.ProviderUnavailableErr, "graph request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Wrapf(auth.ProviderUnavailableErr, "reading graph response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Wrapf(auth.DirectoryUnavailableErr, "status %d", resp.StatusCode)
	}

	return body, nil
}

func (c *Client) memberGroupsURL() string {
	return c.config.GraphURL + "/me/getMemberGroups?" + apiVersionQuery()
}

func (c *Client) allGroupsURL() string {
	return c.config.GraphURL + "/" + c.config.Tenant + "/groups?" + apiVersionQuery()
}

func apiVersionQuery() string {
	return url.Values{"api-version": {apiVersion}}.Encode()
}

package provider

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-ad-auth/auth"
	"github.com/pkg/errors"
)

// tokenResponse is the wire form of a token-endpoint response.
type tokenResponse struct {
	AccessToken      string       `json:"access_token"`
	RefreshToken     string       `json:"refresh_token"`
	ExpiresOn        epochSeconds `json:"expires_on"`
	TokenType        string       `json:"token_type"`
	Resource         string       `json:"resource"`
	Scope            string       `json:"scope"`
	IDToken          string       `json:"id_token"`
	Error            string       `json:"error"`
	ErrorDescription string       `json:"error_description"`
}

func parseTokenResponse(body []byte, statusCode int) (*tokenResponse, error) {
	var wire tokenResponse
	if statusCode < 200 || statusCode >= 300 {
		// Error bodies are best-effort JSON, used only to enrich the message.
		_ = json.Unmarshal(body, &wire)
		if wire.Error != "" {
			return nil, errors.Wrapf(auth.ProviderRejectedErr, "status %d: %s: %s", statusCode, wire.Error, wire.ErrorDescription)
		}
		return nil, errors.Wrapf(auth.ProviderRejectedErr, "status %d", statusCode)
	}

	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, errors.Wrapf(auth.MissingFieldErr, "decoding token response: %v", err)
	}

	return &wire, nil
}

// grant converts the wire response into a TokenGrant. Identity is filled in
// by the caller after decoding the id_token.
func (tr *tokenResponse) grant() *auth.TokenGrant {
	return &auth.TokenGrant{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresOn:    int64(tr.ExpiresOn),
		TokenType:    tr.TokenType,
		Resource:     tr.Resource,
		Scope:        tr.Scope,
	}
}

func (tr *tokenResponse) requireFields(fields ...string) error {
	present := map[string]bool{
		"access_token":  tr.AccessToken != "",
		"refresh_token": tr.RefreshToken != "",
		"expires_on":    tr.ExpiresOn != 0,
		"token_type":    tr.TokenType != "",
		"resource":      tr.Resource != "",
		"scope":         tr.Scope != "",
		"id_token":      tr.IDToken != "",
	}

	for _, field := range fields {
		if !present[field] {
			return errors.Wrap(auth.MissingFieldErr, field)
		}
	}

	return nil
}

// epochSeconds is a unix timestamp the provider encodes either as a JSON
// number or as a numeric string, depending on the endpoint.
type epochSeconds int64

func (e *epochSeconds) UnmarshalJSON(data []byte) error {
	value := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if value == "" || value == "null" {
		*e = 0
		return nil
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return errors.Errorf("expires_on %q is not a unix timestamp", value)
	}

	*e = epochSeconds(parsed)
	return nil
}

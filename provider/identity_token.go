package provider

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-ad-auth/auth"
	"github.com/pkg/errors"
)

// upnClaim is the id_token claim carrying the user principal name.
const upnClaim = "upn"

// identityFromToken extracts the user principal name from an id_token. The
// token is structurally decoded; when an issuer is configured its signature
// and issuer are verified first.
func (c *Client) identityFromToken(ctx context.Context, rawIDToken string) (string, error) {
	if c.verifier != nil {
		if _, err := c.verifier.Verify(ctx, rawIDToken); err != nil {
			return "", errors.Wrapf(auth.MalformedIdentityTokenErr, "verification failed: %v", err)
		}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, claims); err != nil {
		return "", errors.Wrapf(auth.MalformedIdentityTokenErr, "%v", err)
	}

	identity, _ := claims[upnClaim].(string)
	if identity == "" {
		return "", errors.Wrap(auth.MissingFieldErr, upnClaim)
	}

	return identity, nil
}

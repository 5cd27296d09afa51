package auth

import "errors"

var (
	ProviderRejectedErr       = errors.New("provider rejected the grant")
	ProviderUnavailableErr    = errors.New("provider unavailable")
	MalformedIdentityTokenErr = errors.New("malformed identity token")
	MissingFieldErr           = errors.New("missing required field")
	DirectoryUnavailableErr   = errors.New("directory unavailable")
)

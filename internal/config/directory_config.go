package config

// DirectoryConfig describes the graph endpoint group membership is read from.
// The graph URL doubles as the OAuth2 resource access tokens are requested
// for.
type DirectoryConfig interface {
	GetGraphURL() string
	GetDirectoryTenant() string
}

type Directory struct{}

var _ DirectoryConfig = Directory{}

func (Directory) GetGraphURL() string {
	return GetEnv("AD_GRAPH_URL", "https://graph.windows.net")
}

// GetDirectoryTenant returns the tenant segment used for organisation-wide
// group listings. Empty selects the signed-in user's home tenant.
func (Directory) GetDirectoryTenant() string {
	return GetEnv("AD_TENANT", "")
}

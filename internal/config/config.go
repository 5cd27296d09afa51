package config

type Config interface {
	EnvConfig
	ProviderConfig
	DirectoryConfig
	AuthConfig
	StoreConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Provider
	Directory
	Auth
	Store
	Cors
}

func New() Config {
	return mainConfig{}
}

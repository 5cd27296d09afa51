package config

// Session store backends selectable via SESSION_BACKEND.
const (
	StoreBackendMemory = "memory"
	StoreBackendSQLite = "sqlite"
	StoreBackendRedis  = "redis"
)

// StoreConfig selects and configures the session store backend.
type StoreConfig interface {
	GetStoreBackend() string
	GetSQLiteDSN() string
	GetRedisURL() string
	GetRedisKeyPrefix() string
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetStoreBackend() string {
	return GetEnv("SESSION_BACKEND", StoreBackendSQLite)
}

func (s Store) GetSQLiteDSN() string {
	return GetEnv("AD_SQLITE_DB", EnvVars{}.GetDataFolder()+"/sessions.db")
}

func (Store) GetRedisURL() string {
	return GetEnv("REDIS_URL", "redis://localhost:6379/0")
}

func (Store) GetRedisKeyPrefix() string {
	return GetEnv("REDIS_KEY_PREFIX", "")
}

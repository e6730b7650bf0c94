package config

// EnvPrefix namespaces every environment variable consumed by the app.
const EnvPrefix = "REGISTRA"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error text).
const (
	EnvAppEnv   = "REGISTRA_APP_ENV"
	EnvPort     = "REGISTRA_APP_PORT"
	EnvDBDriver = "REGISTRA_DB_DRIVER"
	EnvDBDSN    = "REGISTRA_DB_DSN"
	EnvDBPath   = "REGISTRA_DB_PATH"
	EnvRedisURL = "REGISTRA_REDIS_URL"
)

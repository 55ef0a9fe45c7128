package config

// EnvPrefix is passed to envconfig; struct tags carry the full variable names.
const EnvPrefix = "bookhaven"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "BOOKHAVEN_APP_ENV"
	EnvPort       = "BOOKHAVEN_APP_PORT"
	EnvDBDSN      = "BOOKHAVEN_DB_DSN"
	EnvDBHost     = "BOOKHAVEN_DB_HOST"
	EnvDBUser     = "BOOKHAVEN_DB_USER"
	EnvDBName     = "BOOKHAVEN_DB_NAME"
	EnvRedisURL   = "BOOKHAVEN_REDIS_URL"
	EnvJWTSecret  = "BOOKHAVEN_JWT_SECRET"
	EnvJWTIssuer  = "BOOKHAVEN_JWT_ISSUER"
	EnvJWTExpMins = "BOOKHAVEN_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

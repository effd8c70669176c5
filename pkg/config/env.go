package config

// EnvPrefix is passed to envconfig; individual fields carry fully-qualified
// names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv                 = "LOTBRIDGE_APP_ENV"
	EnvPort                   = "LOTBRIDGE_APP_PORT"
	EnvDBDSN                  = "LOTBRIDGE_DB_DSN"
	EnvDBHost                 = "LOTBRIDGE_DB_HOST"
	EnvDBUser                 = "LOTBRIDGE_DB_USER"
	EnvDBName                 = "LOTBRIDGE_DB_NAME"
	EnvRedisURL               = "LOTBRIDGE_REDIS_URL"
	EnvJWTSecret              = "LOTBRIDGE_JWT_SECRET"
	EnvJWTIssuer              = "LOTBRIDGE_JWT_ISSUER"
	EnvJWTExpMins             = "LOTBRIDGE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "LOTBRIDGE_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "LOTBRIDGE_GCP_PROJECT_ID"
	EnvGCSBucket              = "LOTBRIDGE_GCS_BUCKET_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	VIN           VINConfig
	Sheets        SheetsConfig
	Offers        OffersConfig
	BuyCodes      BuyCodesConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LOTBRIDGE_APP_ENV" required:"true"`
	Port         string `envconfig:"LOTBRIDGE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOTBRIDGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOTBRIDGE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LOTBRIDGE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LOTBRIDGE_DB_DSN"`
	Driver string `envconfig:"LOTBRIDGE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LOTBRIDGE_DB_HOST"`
	LegacyPort     int    `envconfig:"LOTBRIDGE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOTBRIDGE_DB_USER"`
	LegacyPassword string `envconfig:"LOTBRIDGE_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOTBRIDGE_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOTBRIDGE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOTBRIDGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOTBRIDGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOTBRIDGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOTBRIDGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LOTBRIDGE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LOTBRIDGE_REDIS_ADDR"`
	Password     string        `envconfig:"LOTBRIDGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOTBRIDGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOTBRIDGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOTBRIDGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOTBRIDGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOTBRIDGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOTBRIDGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"LOTBRIDGE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"LOTBRIDGE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"LOTBRIDGE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"LOTBRIDGE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LOTBRIDGE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LOTBRIDGE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LOTBRIDGE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LOTBRIDGE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LOTBRIDGE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"LOTBRIDGE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"LOTBRIDGE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"LOTBRIDGE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LOTBRIDGE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"LOTBRIDGE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"LOTBRIDGE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"LOTBRIDGE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"LOTBRIDGE_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry   time.Duration `envconfig:"LOTBRIDGE_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"LOTBRIDGE_GCS_DOWNLOAD_URL_EXPIRY" default:"24h"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"LOTBRIDGE_MAX_UPLOAD_MB" default:"200"`
}

// VINConfig points at the external decode registry.
type VINConfig struct {
	BaseURL string        `envconfig:"LOTBRIDGE_VIN_DECODE_BASE_URL" default:"https://vpic.nhtsa.dot.gov/api"`
	Timeout time.Duration `envconfig:"LOTBRIDGE_VIN_DECODE_TIMEOUT" default:"10s"`
}

// SheetsConfig identifies the intake spreadsheet consumed by batch import.
type SheetsConfig struct {
	SpreadsheetID string `envconfig:"LOTBRIDGE_SHEETS_SPREADSHEET_ID"`
	ReadRange     string `envconfig:"LOTBRIDGE_SHEETS_READ_RANGE" default:"Inventory!A2:E"`
}

type OffersConfig struct {
	DefaultTTL time.Duration `envconfig:"LOTBRIDGE_OFFER_DEFAULT_TTL" default:"72h"`
}

type BuyCodesConfig struct {
	CodeLength int `envconfig:"LOTBRIDGE_BUY_CODE_LENGTH" default:"8"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"LOTBRIDGE_CRON_INTERVAL" default:"1h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

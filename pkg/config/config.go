package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable the service reads.
	EnvPrefix = "TRENDORA"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv    = "TRENDORA_APP_ENV"
	EnvPort      = "TRENDORA_APP_PORT"
	EnvDBDSN     = "TRENDORA_DB_DSN"
	EnvDBHost    = "TRENDORA_DB_HOST"
	EnvDBUser    = "TRENDORA_DB_USER"
	EnvDBName    = "TRENDORA_DB_NAME"
	EnvRedisURL  = "TRENDORA_REDIS_URL"
	EnvJWTSecret = "TRENDORA_JWT_SECRET"
	EnvJWTIssuer = "TRENDORA_JWT_ISSUER"
	EnvJWTExpMin = "TRENDORA_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Shipping     ShippingConfig
	Steadfast    SteadfastConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"TRENDORA_APP_ENV" required:"true"`
	Port         string `envconfig:"TRENDORA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRENDORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRENDORA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TRENDORA_DB_DSN"`
	Driver string `envconfig:"TRENDORA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRENDORA_DB_HOST"`
	LegacyPort     int    `envconfig:"TRENDORA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRENDORA_DB_USER"`
	LegacyPassword string `envconfig:"TRENDORA_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRENDORA_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRENDORA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRENDORA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRENDORA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRENDORA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRENDORA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRENDORA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TRENDORA_REDIS_ADDR"`
	Password     string        `envconfig:"TRENDORA_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRENDORA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRENDORA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRENDORA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRENDORA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRENDORA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRENDORA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TRENDORA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TRENDORA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TRENDORA_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"TRENDORA_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session lifetime.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TRENDORA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TRENDORA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TRENDORA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TRENDORA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TRENDORA_ARGON_KEY_LEN" default:"32"`
}

// ShippingConfig carries the flat delivery charges applied when site settings
// do not override them.
type ShippingConfig struct {
	InsideDhaka  int `envconfig:"TRENDORA_SHIPPING_INSIDE_DHAKA" default:"60"`
	OutsideDhaka int `envconfig:"TRENDORA_SHIPPING_OUTSIDE_DHAKA" default:"120"`
}

type SteadfastConfig struct {
	BaseURL   string        `envconfig:"TRENDORA_STEADFAST_BASE_URL" default:"https://portal.packzy.com/api/v1"`
	APIKey    string        `envconfig:"TRENDORA_STEADFAST_API_KEY"`
	SecretKey string        `envconfig:"TRENDORA_STEADFAST_SECRET_KEY"`
	Timeout   time.Duration `envconfig:"TRENDORA_STEADFAST_TIMEOUT" default:"15s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TRENDORA_AUTO_MIGRATE" default:"false"`
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

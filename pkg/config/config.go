package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Uploads      UploadsConfig
	Retention    RetentionConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"REGISTRA_APP_ENV" required:"true"`
	Port         string `envconfig:"REGISTRA_APP_PORT" default:"4000"`
	LogLevel     string `envconfig:"REGISTRA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REGISTRA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"REGISTRA_SERVICE_KIND" default:"api"`
}

// DBConfig selects the datastore. The packaged desktop build runs on an
// embedded SQLite file; server installs point DSN at Postgres.
type DBConfig struct {
	Driver string `envconfig:"REGISTRA_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"REGISTRA_DB_DSN"`
	Path   string `envconfig:"REGISTRA_DB_PATH" default:"data/registra.db"`

	MaxOpenConns    int           `envconfig:"REGISTRA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REGISTRA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REGISTRA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REGISTRA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func (db *DBConfig) validate() error {
	switch db.Driver {
	case DriverSQLite:
		if db.Path == "" {
			return fmt.Errorf("%s is required for the sqlite driver", EnvDBPath)
		}
	case DriverPostgres:
		if db.DSN == "" {
			return fmt.Errorf("%s is required for the postgres driver", EnvDBDSN)
		}
	default:
		return fmt.Errorf("unsupported db driver %q (%s)", db.Driver, EnvDBDriver)
	}
	return nil
}

// RedisConfig is optional; when URL is empty the retention lock falls back to
// the in-process mutex, which is correct for single-process installs.
type RedisConfig struct {
	URL          string        `envconfig:"REGISTRA_REDIS_URL"`
	Address      string        `envconfig:"REGISTRA_REDIS_ADDR"`
	Password     string        `envconfig:"REGISTRA_REDIS_PASSWORD"`
	DB           int           `envconfig:"REGISTRA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REGISTRA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REGISTRA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REGISTRA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REGISTRA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REGISTRA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type UploadsConfig struct {
	Dir string `envconfig:"REGISTRA_UPLOADS_DIR" default:"data/uploads"`
}

// RetentionConfig tunes the scheduler cadence. The purge windows themselves
// (3 months, 14 days) are product constants, not configuration.
type RetentionConfig struct {
	RunAtHour    int           `envconfig:"REGISTRA_RETENTION_RUN_AT_HOUR" default:"2"`
	Interval     time.Duration `envconfig:"REGISTRA_RETENTION_INTERVAL" default:"24h"`
	StartupDelay time.Duration `envconfig:"REGISTRA_RETENTION_STARTUP_DELAY" default:"10s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"REGISTRA_AUTO_MIGRATE" default:"false"`
}

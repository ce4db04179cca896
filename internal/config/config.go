// Package config loads process settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	goTenant "github.com/MrEthical07/goTenant"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"

	defaultRedisURL = "redis://localhost:6379/0"
)

// Config is the full process configuration.
type Config struct {
	Port            string   `env:"PORT" envDefault:"8080"`
	Environment     string   `env:"APP_ENV" envDefault:"development"`
	LogLevel        string   `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout Lifetime `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	AccessSecret  string   `env:"JWT_ACCESS_SECRET_KEY,required,notEmpty"`
	RefreshSecret string   `env:"JWT_REFRESH_SECRET_KEY,required,notEmpty"`
	AccessTTL     Lifetime `env:"JWT_ACCESS_EXPIRE_TIME" envDefault:"1h"`
	RefreshTTL    Lifetime `env:"JWT_REFRESH_EXPIRE_TIME" envDefault:"15d"`
	Issuer        string   `env:"JWT_ISSUER"`
	Leeway        Lifetime `env:"JWT_LEEWAY" envDefault:"0s"`

	RedisURL         string `env:"REDIS_URL"`
	UpstashRedisURL  string `env:"UPSTASH_REDIS_URL"`
	RefreshKeyPrefix string `env:"REFRESH_KEY_PREFIX" envDefault:"refresh_token"`
	RotateOnRefresh  bool   `env:"REFRESH_ROTATE_ON_USE" envDefault:"false"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"gotenant"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"gotenant.db"`

	PasswordAlgorithm string   `env:"PASSWORD_ALGORITHM" envDefault:"bcrypt"`
	BcryptCost        int      `env:"BCRYPT_COST" envDefault:"10"`
	Roles             []string `env:"ROLES" envDefault:"admin,member" envSeparator:","`
	DefaultRole       string   `env:"DEFAULT_ROLE" envDefault:"member"`

	GuardRefreshRoutes bool `env:"GUARD_REFRESH_ROUTES" envDefault:"false"`

	OTLPEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure   bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	ServiceName    string `env:"SERVICE_NAME" envDefault:"gotenant"`
	AuditEnabled   bool   `env:"AUDIT_ENABLED" envDefault:"false"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	LatencyMetrics bool   `env:"METRICS_LATENCY_HISTOGRAMS" envDefault:"false"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom reads only the given variables.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if strings.TrimSpace(cfg.RedisURL) == "" {
		cfg.RedisURL = cfg.UpstashRedisURL
	}
	if strings.TrimSpace(cfg.RedisURL) == "" {
		cfg.RedisURL = defaultRedisURL
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the Engine does not check itself.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT must be set")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch c.StoreDriver {
	case DriverMongo:
		if strings.TrimSpace(c.MongoURI) == "" || strings.TrimSpace(c.MongoDatabase) == "" {
			return errors.New("MONGO_URI and MONGO_DATABASE are required for the mongo driver")
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return errors.New("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", DriverMongo, DriverSQLite)
	}
	return nil
}

// IsProduction reports whether APP_ENV selects production presets.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Engine maps the settings onto a goTenant.Config.
func (c Config) Engine() goTenant.Config {
	cfg := goTenant.DefaultConfig()

	cfg.JWT.AccessSecret = []byte(c.AccessSecret)
	cfg.JWT.RefreshSecret = []byte(c.RefreshSecret)
	cfg.JWT.AccessTTL = c.AccessTTL.Duration()
	cfg.JWT.RefreshTTL = c.RefreshTTL.Duration()
	cfg.JWT.Issuer = c.Issuer
	cfg.JWT.Leeway = c.Leeway.Duration()

	cfg.Session.RedisPrefix = c.RefreshKeyPrefix
	cfg.Session.RotateOnRefresh = c.RotateOnRefresh

	cfg.Password.Algorithm = c.PasswordAlgorithm
	cfg.Password.BcryptCost = c.BcryptCost

	roles := make([]string, 0, len(c.Roles))
	for _, r := range c.Roles {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	cfg.Account.Roles = roles
	cfg.Account.DefaultRole = c.DefaultRole

	cfg.Audit.Enabled = c.AuditEnabled
	cfg.Metrics.Enabled = c.MetricsEnabled
	cfg.Metrics.EnableLatencyHistograms = c.LatencyMetrics
	return cfg
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"wedding-app-go/pkg/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	HTTPPort           string   `env:"HTTP_PORT" envDefault:"8080"`
	Env                string   `env:"ENV" envDefault:"development"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	HTTP               HTTPConfig
	DB                 DBConfig
	RSVP               RSVPConfig
	Admin              AdminConfig
	Site               SiteConfig
}

// HTTPConfig bounds request handling. Zero values fall back to the server defaults.
type HTTPConfig struct {
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	IdleTimeout    time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

type DBConfig struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"postgres"`
	DSN             string        `env:"DB_DSN"`
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"postgres"`
	Password        string        `env:"DB_PASSWORD" envDefault:"postgres"`
	Name            string        `env:"DB_NAME" envDefault:"wedding"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	TimeZone        string        `env:"DB_TIMEZONE" envDefault:"UTC"`
	SQLitePath      string        `env:"DB_SQLITE_PATH" envDefault:"wedding.db"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
}

type RSVPConfig struct {
	MaxPartySize  int           `env:"RSVP_MAX_PARTY_SIZE" envDefault:"4"`
	StatsCacheTTL time.Duration `env:"RSVP_STATS_CACHE_TTL" envDefault:"10s"`
}

// AdminConfig guards the read-only RSVP endpoints. An empty secret leaves them open.
type AdminConfig struct {
	JWTSecret string        `env:"ADMIN_JWT_SECRET"`
	Issuer    string        `env:"ADMIN_JWT_ISSUER" envDefault:"wedding-app"`
	TokenTTL  time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"168h"`
}

type SiteConfig struct {
	ContentPath string `env:"SITE_CONTENT_PATH"`
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	switch cfg.DB.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}
	if cfg.RSVP.MaxPartySize <= 0 {
		return Config{}, fmt.Errorf("RSVP_MAX_PARTY_SIZE must be positive")
	}

	return cfg, nil
}

func (c AdminConfig) Enabled() bool {
	return strings.TrimSpace(c.JWTSecret) != ""
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Driver == DriverSQLite {
		return c.SQLitePath
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}

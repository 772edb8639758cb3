package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Env string `yaml:"env" env:"ENV" env-default:"development"`

	HTTP     HTTP     `yaml:"http"`
	Storage  Storage  `yaml:"storage"`
	Postgres Postgres `yaml:"postgres"`
	Session  Session  `yaml:"session"`
	Auth     Auth     `yaml:"auth"`
	Tiingo   Tiingo   `yaml:"tiingo"`
	Redis    Redis    `yaml:"redis"`
	Orders   Orders   `yaml:"orders"`
	Log      Log      `yaml:"log"`
}

type HTTP struct {
	Port            string        `yaml:"port" env:"PORT" env-default:"8080"`
	StaticDir       string        `yaml:"static_dir" env:"STATIC_DIR" env-default:"./public"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
}

type Postgres struct {
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            string        `yaml:"port" env:"DB_PORT" env-default:"5433"`
	User            string        `yaml:"user" env:"DB_USER" env-default:"trader"`
	Password        string        `yaml:"password" env:"DB_PASSWORD" env-default:"trading123"`
	Database        string        `yaml:"database" env:"DB_NAME" env-default:"trading_db"`
	SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
	AutoMigrate     bool          `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
}

type Session struct {
	Secret      string        `yaml:"secret" env:"JWT_SECRET" env-default:"dev-secret-change-me"`
	CookieName  string        `yaml:"cookie_name" env:"SESSION_COOKIE" env-default:"session"`
	TTL         time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
	RememberTTL time.Duration `yaml:"remember_ttl" env:"SESSION_REMEMBER_TTL" env-default:"720h"`
}

type Auth struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"12"`
}

type Tiingo struct {
	BaseURL       string        `yaml:"base_url" env:"TIINGO_BASE_URL" env-default:"https://api.tiingo.com"`
	APIKey        string        `yaml:"api_key" env:"API_KEY"`
	Timeout       time.Duration `yaml:"timeout" env:"TIINGO_TIMEOUT" env-default:"10s"`
	HistoryWindow time.Duration `yaml:"history_window" env:"TIINGO_HISTORY_WINDOW" env-default:"2160h"`
}

type Redis struct {
	URL        string        `yaml:"url" env:"REDIS_URL"`
	HistoryTTL time.Duration `yaml:"history_ttl" env:"REDIS_HISTORY_TTL" env-default:"1h"`
}

type Orders struct {
	HistoryLimit int `yaml:"history_limit" env:"ORDERS_HISTORY_LIMIT" env-default:"500"`
}

type Log struct {
	Level    string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding string `yaml:"encoding" env:"LOG_ENCODING" env-default:"console"`
}

// Load reads .env (if present), then the yaml file at path (if given), then the environment.
func Load(path string) (*Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Session.Secret == "" {
		return errors.New("session.secret is required")
	}
	if c.IsProduction() && c.Session.Secret == "dev-secret-change-me" {
		return errors.New("session.secret must be set in production")
	}
	if c.Session.TTL <= 0 || c.Session.RememberTTL <= 0 {
		return errors.New("session ttl values must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost %d out of range [4,31]", c.Auth.BcryptCost)
	}
	if c.Orders.HistoryLimit <= 0 {
		return fmt.Errorf("orders.history_limit must be positive, got %d", c.Orders.HistoryLimit)
	}
	if c.Tiingo.HistoryWindow <= 0 {
		return errors.New("tiingo.history_window must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// DSN returns the lib/pq keyword connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

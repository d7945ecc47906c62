// Package config loads application configuration from defaults, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides.
// AUTH_JWT__SECRET_KEY maps to jwt.secret_key.
const EnvPrefix = "AUTH_"

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Log        LogConfig        `koanf:"log"`
	JWT        JWTConfig        `koanf:"jwt"`
	Password   PasswordConfig   `koanf:"password"`
	CORS       CORSConfig       `koanf:"cors"`
	Migrations MigrationsConfig `koanf:"migrations"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port"`
	MetricsPort       string        `koanf:"metrics_port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig contains user store settings.
type DatabaseConfig struct {
	Storage         string        `koanf:"storage"`
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	ConnectAttempts int           `koanf:"connect_attempts"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// JWTConfig contains session token settings.
// The secret is loaded once at startup and never rotated by the process.
type JWTConfig struct {
	SecretKey     string        `koanf:"secret_key"`
	TokenDuration time.Duration `koanf:"token_duration"`
}

// PasswordConfig contains password hashing settings.
type PasswordConfig struct {
	BcryptCost int `koanf:"bcrypt_cost"`
}

// CORSConfig contains CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// MigrationsConfig controls schema migrations at startup.
type MigrationsConfig struct {
	AutoApply bool `koanf:"auto_apply"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Database: DatabaseConfig{
			Storage:         StoragePostgres,
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnectTimeout:  30 * time.Second,
			ConnectAttempts: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		JWT: JWTConfig{
			TokenDuration: 7 * 24 * time.Hour,
		},
		Password: PasswordConfig{
			BcryptCost: 10,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Migrations: MigrationsConfig{
			AutoApply: true,
		},
	}
}

// Load reads configuration from defaults, the YAML file at path (skipped when
// empty) and AUTH_* environment variables, in increasing precedence.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envKey maps AUTH_DATABASE__MAX_OPEN_CONNS to database.max_open_conns.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Validate checks required settings.
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.SecretKey == "" {
		errs = append(errs, errors.New("jwt.secret_key is required"))
	}
	if c.JWT.TokenDuration <= 0 {
		errs = append(errs, fmt.Errorf("jwt.token_duration must be positive, got %s", c.JWT.TokenDuration))
	}

	switch c.Database.Storage {
	case StoragePostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for postgres storage"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown database.storage %q", c.Database.Storage))
	}

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}

	return errors.Join(errs...)
}

// Package config loads runtime settings from built-in defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	minSecretKeyLength = 32

	StoreMemory = "memory"
	StoreSQL    = "sql"
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

// Config is the full runtime configuration.
//
// YAML example:
//
//	server:
//	  port: "8080"
//	  cookie_secure: true
//	  timezone: Europe/Stockholm
//	auth:
//	  secret_key: <at least 32 random characters>
//	  admin_username: admin
//	storage:
//	  backend: sql
//	  driver: sqlite
//	  path: data/gardenweeks.db
//	redis:
//	  addr: localhost:6379
//	logging:
//	  level: info
//	  format: text
type Config struct {
	Server  ServerConf  `yaml:"server"`
	Auth    AuthConf    `yaml:"auth"`
	Storage StorageConf `yaml:"storage"`
	Redis   RedisConf   `yaml:"redis"`
	Logging LoggingConf `yaml:"logging"`
}

type ServerConf struct {
	Port         string        `yaml:"port"`
	CookieSecure bool          `yaml:"cookie_secure"`
	Timezone     string        `yaml:"timezone"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

type AuthConf struct {
	SecretKey string `yaml:"secret_key"`
	// AdminUsername and AdminPassword seed an admin account on startup when
	// both are set.
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`
}

type StorageConf struct {
	Backend string `yaml:"backend"`
	Driver  string `yaml:"driver"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
	Debug   bool   `yaml:"debug"`
}

// RedisConf enables redis-backed session revocation. An empty Addr keeps
// revocations in memory.
type RedisConf struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
}

func Default() Config {
	return Config{
		Server: ServerConf{
			Port:       "8080",
			Timezone:   "UTC",
			SessionTTL: 7 * 24 * time.Hour,
		},
		Storage: StorageConf{
			Backend: StoreSQL,
			Driver:  "sqlite",
			Path:    filepath.Join("data", "gardenweeks.db"),
		},
		Logging: LoggingConf{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (Config, error) {
	cfg, err := load(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadStorage is Load for maintenance commands that only touch the
// database. It skips the server checks and refuses the memory backend,
// where changes would be lost on exit.
func LoadStorage(path string) (Config, error) {
	cfg, err := load(path)
	if err != nil {
		return Config{}, err
	}
	if cfg.Storage.Backend == StoreMemory {
		return Config{}, errors.New("maintenance commands need the sql store backend")
	}
	if err := cfg.Storage.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

func (cfg *Config) applyEnv() error {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.Timezone = getEnv("TZ", cfg.Server.Timezone)
	cfg.Auth.SecretKey = getEnv("SECRET_KEY", cfg.Auth.SecretKey)
	cfg.Auth.AdminUsername = getEnv("ADMIN_USERNAME", cfg.Auth.AdminUsername)
	cfg.Auth.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.Auth.AdminPassword)
	cfg.Storage.Backend = strings.ToLower(getEnv("STORE", cfg.Storage.Backend))
	cfg.Storage.Driver = strings.ToLower(getEnv("DB_DRIVER", cfg.Storage.Driver))
	cfg.Storage.Path = getEnv("DB_PATH", cfg.Storage.Path)
	cfg.Storage.DSN = getEnv("DB_DSN", cfg.Storage.DSN)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	if raw := os.Getenv("COOKIE_SECURE"); raw != "" {
		secure, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.Wrapf(err, "parse COOKIE_SECURE %q", raw)
		}
		cfg.Server.CookieSecure = secure
	}
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return errors.Wrapf(err, "parse SESSION_TTL %q", raw)
		}
		cfg.Server.SessionTTL = ttl
	}
	return nil
}

func (cfg Config) Validate() error {
	if err := ValidateSecretKey(cfg.Auth.SecretKey); err != nil {
		return err
	}
	if cfg.Server.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if _, err := time.LoadLocation(cfg.Server.Timezone); err != nil {
		return errors.Wrapf(err, "invalid timezone %q", cfg.Server.Timezone)
	}
	if err := cfg.Storage.validate(); err != nil {
		return err
	}
	if (cfg.Auth.AdminUsername == "") != (cfg.Auth.AdminPassword == "") {
		return errors.New("admin username and admin password must be set together")
	}
	return cfg.Logging.validate()
}

// ValidateSecretKey rejects empty, short and well-known placeholder secrets.
func ValidateSecretKey(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[secret]; insecure {
		return errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return errors.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return nil
}

func (storage StorageConf) validate() error {
	switch storage.Backend {
	case StoreMemory:
		return nil
	case StoreSQL:
	default:
		return errors.Errorf("unknown store backend %q", storage.Backend)
	}

	switch storage.Driver {
	case "sqlite":
		if storage.Path == "" {
			return errors.New("storage path must be specified for sqlite")
		}
	case "postgres", "mysql":
		if storage.DSN == "" {
			return errors.Errorf("storage dsn must be specified for %s", storage.Driver)
		}
	default:
		return errors.Errorf("unsupported database driver %q", storage.Driver)
	}
	return nil
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

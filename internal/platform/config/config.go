// Package config loads application settings from a YAML file, the process
// environment and an optional .env file, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// EnvKeyConfigPath overrides DefaultPath.
const EnvKeyConfigPath = "CONFIG_PATH"

// DefaultPath is read when CONFIG_PATH is unset. A missing file is not an error.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Store      StoreConfig      `yaml:"store"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	TwelveData TwelveDataConfig `yaml:"twelvedata"`
	Ingest     IngestConfig     `yaml:"ingest"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// Mode is the gin mode: debug, release or test.
	Mode string `yaml:"mode"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

// StoreConfig selects where series are read from.
type StoreConfig struct {
	Driver        string `yaml:"driver"`
	CSVPath       string `yaml:"csv_path"`
	SQLitePath    string `yaml:"sqlite_path"`
	RunMigrations bool   `yaml:"run_migrations"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	// ConnectTimeout bounds the start-up retry loop.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     string        `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// AuthConfig enables the bearer token guard when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type TwelveDataConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// RateLimit is the number of requests allowed per minute.
	RateLimit int `yaml:"rate_limit"`
}

// IngestSymbol maps an external ticker to the index name it is stored under.
type IngestSymbol struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
}

type IngestConfig struct {
	// Schedule is a cron spec with a seconds field. Empty disables the job.
	Schedule string         `yaml:"schedule"`
	Symbols  []IngestSymbol `yaml:"symbols"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080", Mode: "release"},
		Log:    LogConfig{Level: "info", Format: "json"},
		Store: StoreConfig{
			Driver:     DriverMemory,
			CSVPath:    "dump.csv",
			SQLitePath: "data/index_backend.db",
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           "5432",
			SSLMode:        "disable",
			ConnectTimeout: 60 * time.Second,
		},
		Redis: RedisConfig{Host: "localhost", Port: "6379", TTL: 5 * time.Minute},
		Auth:  AuthConfig{TokenTTL: 24 * time.Hour},
		TwelveData: TwelveDataConfig{
			BaseURL:   "https://api.twelvedata.com",
			Timeout:   10 * time.Second,
			RateLimit: 8,
		},
	}
}

// Load reads .env (if present), the YAML file at path and then environment
// overrides. An empty path falls back to CONFIG_PATH and then DefaultPath.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	if path == "" {
		path = os.Getenv(EnvKeyConfigPath)
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("SERVER_ADDR", &c.Server.Addr)
	str("GIN_MODE", &c.Server.Mode)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("STORE_DRIVER", &c.Store.Driver)
	str("CSV_PATH", &c.Store.CSVPath)
	str("SQLITE_PATH", &c.Store.SQLitePath)
	str("DB_HOST", &c.Database.Host)
	str("DB_PORT", &c.Database.Port)
	str("DB_USER", &c.Database.User)
	str("DB_PASSWORD", &c.Database.Password)
	str("DB_NAME", &c.Database.Name)
	str("DB_SSLMODE", &c.Database.SSLMode)
	str("REDIS_HOST", &c.Redis.Host)
	str("REDIS_PORT", &c.Redis.Port)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("TWELVE_DATA_API_KEY", &c.TwelveData.APIKey)
	str("TWELVE_DATA_BASE_URL", &c.TwelveData.BaseURL)
	str("INGEST_SCHEDULE", &c.Ingest.Schedule)

	if v := os.Getenv("RUN_MIGRATIONS"); v != "" {
		c.Store.RunMigrations = v == "true"
	}
	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		c.Redis.Enabled = v == "true"
	}
	if v := os.Getenv("REDIS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REDIS_TTL: %w", err)
		}
		c.Redis.TTL = d
	}
	if v := os.Getenv("TWELVE_DATA_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TWELVE_DATA_RATE_LIMIT: %w", err)
		}
		c.TwelveData.RateLimit = n
	}
	// INGEST_SYMBOLS=NSEI=NIFTY 50;BSESN=SENSEX
	if v := os.Getenv("INGEST_SYMBOLS"); v != "" {
		syms, err := ParseSymbols(v)
		if err != nil {
			return err
		}
		c.Ingest.Symbols = syms
	}
	return nil
}

// ParseSymbols parses "SYMBOL=Name;SYMBOL2=Name2". A bare symbol is stored
// under its own name.
func ParseSymbols(s string) ([]IngestSymbol, error) {
	var out []IngestSymbol
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sym, name, found := strings.Cut(part, "=")
		sym, name = strings.TrimSpace(sym), strings.TrimSpace(name)
		if sym == "" {
			return nil, fmt.Errorf("ingest symbol %q: empty ticker", part)
		}
		if !found || name == "" {
			name = sym
		}
		out = append(out, IngestSymbol{Symbol: sym, Name: name})
	}
	return out, nil
}

// Validate checks that the selected components have what they need.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
		if c.Store.CSVPath == "" {
			return errors.New("store.csv_path is required for the memory driver")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("store.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.User == "" || c.Database.Name == "" {
			return errors.New("database.user and database.name are required for the postgres driver")
		}
	default:
		return fmt.Errorf("store.driver %q is not one of memory, sqlite, postgres", c.Store.Driver)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode %q is not one of debug, release, test", c.Server.Mode)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log.format %q is not json or text", c.Log.Format)
	}
	if c.Redis.Enabled && c.Redis.TTL <= 0 {
		return errors.New("redis.ttl must be positive")
	}
	if c.Ingest.Schedule != "" {
		if c.Store.Driver == DriverMemory {
			return errors.New("ingest.schedule needs a database store")
		}
		if len(c.Ingest.Symbols) == 0 {
			return errors.New("ingest.schedule is set but ingest.symbols is empty")
		}
		if c.TwelveData.APIKey == "" {
			return errors.New("twelvedata.api_key is required for scheduled ingestion")
		}
	}
	return nil
}

// Persistent reports whether series live in a database.
func (c *Config) Persistent() bool {
	return c.Store.Driver != DriverMemory
}

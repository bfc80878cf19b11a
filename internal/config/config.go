// Package config loads process configuration from an optional YAML file and
// the environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

type Config struct {
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`

	Store     StoreConfig     `yaml:"store"`
	Providers ProvidersConfig `yaml:"providers"`

	// ParamPrefix switches API-key lookup from environment variables to SSM
	// parameters under this prefix.
	ParamPrefix   string `yaml:"param_prefix"`
	DefaultUserID string `yaml:"default_user_id"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	DBPath  string `yaml:"db_path"`
	Table   string `yaml:"table"`
}

type ProvidersConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	WeatherURL    string        `yaml:"weather_url"`
	NewsURL       string        `yaml:"news_url"`
	SearchURL     string        `yaml:"search_url"`
	NewsLimit     int           `yaml:"news_limit"`
	SearchLimit   int           `yaml:"search_limit"`
	WeatherKeyRef string        `yaml:"weather_key"`
	NewsKeyRef    string        `yaml:"news_key"`
	SearchKeyRef  string        `yaml:"search_key"`
}

func Default() Config {
	return Config{
		Addr:     ":5000",
		LogLevel: "info",
		Store: StoreConfig{
			Backend: BackendSQLite,
			DBPath:  "personal_info.db",
		},
		Providers: ProvidersConfig{
			Timeout:     10 * time.Second,
			NewsLimit:   5,
			SearchLimit: 3,
		},
		DefaultUserID: "default",
	}
}

// Load starts from Default, overlays the YAML file at path (if path is
// non-empty), applies environment overrides and validates the result.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	env := envReader{lookup: lookup}
	env.str("ADDR", &cfg.Addr)
	env.str("LOG_LEVEL", &cfg.LogLevel)
	env.str("STORE_BACKEND", &cfg.Store.Backend)
	env.str("DB_PATH", &cfg.Store.DBPath)
	env.str("PERSONAL_INFO_TABLE", &cfg.Store.Table)
	env.str("PARAM_PREFIX", &cfg.ParamPrefix)
	env.str("DEFAULT_USER_ID", &cfg.DefaultUserID)
	env.str("WEATHER_BASE_URL", &cfg.Providers.WeatherURL)
	env.str("NEWS_BASE_URL", &cfg.Providers.NewsURL)
	env.str("SEARCH_BASE_URL", &cfg.Providers.SearchURL)
	env.duration("PROVIDER_TIMEOUT", &cfg.Providers.Timeout)
	env.int("NEWS_LIMIT", &cfg.Providers.NewsLimit)
	env.int("SEARCH_LIMIT", &cfg.Providers.SearchLimit)

	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case BackendSQLite:
		if strings.TrimSpace(c.Store.DBPath) == "" {
			return errors.New("config: DB_PATH must not be empty for the sqlite backend")
		}
	case BackendDynamoDB:
		if strings.TrimSpace(c.Store.Table) == "" {
			return errors.New("config: PERSONAL_INFO_TABLE is required for the dynamodb backend")
		}
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if c.Providers.Timeout <= 0 {
		return errors.New("config: provider timeout must be positive")
	}
	return nil
}

// UsesParamStore reports whether API keys are read from SSM.
func (c Config) UsesParamStore() bool {
	return strings.TrimSpace(c.ParamPrefix) != ""
}

// KeyNames returns the parameter names for the weather, news and search API
// keys: relative SSM names under ParamPrefix, or environment variable names.
// Explicit names from the config file take precedence.
func (c Config) KeyNames() (weatherKey, newsKey, searchKey string) {
	if c.UsesParamStore() {
		weatherKey, newsKey, searchKey = "weather-api-key", "news-api-key", "serpapi-api-key"
	} else {
		weatherKey, newsKey, searchKey = "WEATHER_API_KEY", "NEWS_API_KEY", "SERPAPI_API_KEY"
	}
	if c.Providers.WeatherKeyRef != "" {
		weatherKey = c.Providers.WeatherKeyRef
	}
	if c.Providers.NewsKeyRef != "" {
		newsKey = c.Providers.NewsKeyRef
	}
	if c.Providers.SearchKeyRef != "" {
		searchKey = c.Providers.SearchKeyRef
	}
	return weatherKey, newsKey, searchKey
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type envReader struct {
	lookup func(string) (string, bool)
}

func (e envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

// int keeps the current value when the variable is unset or not a number.
func (e envReader) int(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*dst = n
}

func (e envReader) duration(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return
	}
	*dst = d
}

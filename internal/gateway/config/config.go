package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

type Config struct {
	Port         string `env:"PORT" envDefault:"8000"`
	Env          string `env:"APP_ENV" envDefault:"local"`
	ServiceName  string `env:"SERVICE_NAME" envDefault:"Pipeline Check API"`
	Version      string `env:"SERVICE_VERSION" envDefault:"1.0.0"`
	MaxBodyBytes int64  `env:"MAX_BODY_BYTES" envDefault:"4194304"`

	Log   LogConfig
	CORS  CORSConfig
	Cache CacheConfig
}

type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	Format     string `env:"LOG_FORMAT" envDefault:"text"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"14"`
}

type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
}

// CacheConfig sizes the report cache. Size 0 disables caching.
type CacheConfig struct {
	Size int `env:"REPORT_CACHE_SIZE" envDefault:"512"`
}

// Load reads .env (if present), the environment, then command line flags.
// Flags win over the environment.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	port := fs.String("port", cfg.Port, "server port")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	cfg.Port = normalizePort(*port)
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	if cfg.Env == "local" {
		applyLocalDefaults(&cfg)
	}
	cfg.CORS.AllowedOrigins = cleanOrigins(cfg.CORS.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if strings.TrimSpace(strings.TrimPrefix(c.Port, ":")) == "" {
		result = multierror.Append(result, errors.New("port must not be empty"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if c.MaxBodyBytes <= 0 {
		result = multierror.Append(result, fmt.Errorf("max body bytes must be positive, got %d", c.MaxBodyBytes))
	}
	if c.Cache.Size < 0 {
		result = multierror.Append(result, fmt.Errorf("report cache size must not be negative, got %d", c.Cache.Size))
	}
	if c.CORS.AllowCredentials && allowsAnyOrigin(c.CORS.AllowedOrigins) {
		result = multierror.Append(result, errors.New("wildcard CORS origin cannot be combined with credentials; set CORS_ALLOWED_ORIGINS or CORS_ALLOW_CREDENTIALS=false"))
	}
	return result.ErrorOrNil()
}

// allowsAnyOrigin mirrors middleware.CORS: an empty list or "*" admits every origin.
func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func normalizePort(port string) string {
	port = strings.TrimSpace(port)
	if port == "" || strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func cleanOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

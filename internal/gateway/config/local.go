package config

import (
	"os"
	"strings"
)

const localFrontendOrigin = "http://localhost:3000"

// applyLocalDefaults lets the editor dev server talk to a local gateway
// without any extra setup.
func applyLocalDefaults(cfg *Config) {
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{
			firstNonEmpty(strings.TrimSpace(os.Getenv("FRONTEND_ORIGIN")), localFrontendOrigin),
		}
	}
	if strings.TrimSpace(os.Getenv("LOG_LEVEL")) == "" {
		cfg.Log.Level = "debug"
	}
}

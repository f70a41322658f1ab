package shared

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override config.toml values.
const (
	EnvBackendURL    = "SETSMITH_BACKEND_URL"
	EnvSessionCookie = "SETSMITH_SESSION_COOKIE"
	EnvOutputDir     = "SETSMITH_OUTPUT_DIR"
)

// LoadEnv loads the given .env files (default ".env") into the process environment.
//
// Missing files are not an error; variables already set are never overwritten.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides config fields from SETSMITH_* environment variables.
func ApplyEnv(c *Config) {
	if v := os.Getenv(EnvBackendURL); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv(EnvSessionCookie); v != "" {
		c.Credentials.SessionCookie = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Export.OutputDir = v
	}
}

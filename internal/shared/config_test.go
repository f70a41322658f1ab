package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Backend.BaseURL != "http://localhost:5001" {
			t.Errorf("expected backend URL http://localhost:5001, got %s", config.Backend.BaseURL)
		}
		if config.Backend.CallbackPort != 3000 {
			t.Errorf("expected callback port 3000, got %d", config.Backend.CallbackPort)
		}
		if config.Export.CoverSize != 100 || config.Export.TextSize != 20 {
			t.Errorf("unexpected export sizes: %d/%d", config.Export.CoverSize, config.Export.TextSize)
		}
		if config.Export.BackgroundColor != "#ffffff" {
			t.Errorf("expected white background, got %s", config.Export.BackgroundColor)
		}
		if config.Cache.Path != ":memory:" {
			t.Errorf("expected in-memory cache, got %s", config.Cache.Path)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("Timeouts", func(t *testing.T) {
		if got := (BackendConfig{}).Timeout(); got != 30*time.Second {
			t.Errorf("expected 30s fallback, got %v", got)
		}
		if got := (BackendConfig{TimeoutSeconds: 5}).Timeout(); got != 5*time.Second {
			t.Errorf("expected 5s, got %v", got)
		}
		if got := (ExportConfig{}).CoverTimeout(); got != 10*time.Second {
			t.Errorf("expected 10s fallback, got %v", got)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := DefaultConfig()
		config.Backend.BaseURL = ""
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.Backend.BaseURL != DefaultConfig().Backend.BaseURL {
			t.Errorf("created config backend URL doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig Keeps Defaults For Missing Keys", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		partial := `[backend]
base_url = "http://sets.example:5001"

[credentials]
session_cookie = "session=abc"
`
		if err := os.WriteFile(configPath, []byte(partial), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.Backend.BaseURL != "http://sets.example:5001" {
			t.Errorf("unexpected base URL %s", config.Backend.BaseURL)
		}
		if config.Credentials.SessionCookie != "session=abc" {
			t.Errorf("unexpected cookie %s", config.Credentials.SessionCookie)
		}
		if config.Export.CoverSize != 100 {
			t.Errorf("expected default cover size to survive, got %d", config.Export.CoverSize)
		}
	})

	t.Run("SaveConfig Round Trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Credentials.SessionCookie = "session=saved"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}
		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Credentials.SessionCookie != "session=saved" {
			t.Errorf("expected saved cookie, got %q", loaded.Credentials.SessionCookie)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvBackendURL, "http://env.example")
		t.Setenv(EnvSessionCookie, "session=env")

		config := DefaultConfig()
		ApplyEnv(config)

		if config.Backend.BaseURL != "http://env.example" {
			t.Errorf("expected env backend URL, got %s", config.Backend.BaseURL)
		}
		if config.Credentials.SessionCookie != "session=env" {
			t.Errorf("expected env cookie, got %s", config.Credentials.SessionCookie)
		}
		if config.Export.OutputDir != "." {
			t.Errorf("unset env var should not override, got %s", config.Export.OutputDir)
		}
	})

	t.Run("LoadEnv Missing File", func(t *testing.T) {
		if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Errorf("missing .env should not error: %v", err)
		}
	})

	t.Run("LoadEnv File", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), "test.env")
		if err := os.WriteFile(envPath, []byte("SETSMITH_OUTPUT_DIR=/tmp/sets\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv(EnvOutputDir, "")
		os.Unsetenv(EnvOutputDir)

		if err := LoadEnv(envPath); err != nil {
			t.Fatalf("LoadEnv failed: %v", err)
		}
		if got := os.Getenv(EnvOutputDir); got != "/tmp/sets" {
			t.Errorf("expected /tmp/sets, got %q", got)
		}
	})
}

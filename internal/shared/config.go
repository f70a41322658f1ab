package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend     BackendConfig     `toml:"backend"`
	Credentials CredentialsConfig `toml:"credentials"`
	Export      ExportConfig      `toml:"export"`
	Cache       CacheConfig       `toml:"cache"`
}

// BackendConfig locates the SetSmith backend.
type BackendConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	CallbackPort   int    `toml:"callback_port"`
}

// CredentialsConfig holds the backend session credential.
type CredentialsConfig struct {
	SessionCookie string `toml:"session_cookie"`
}

// ExportConfig contains defaults for the set renderer.
type ExportConfig struct {
	OutputDir           string  `toml:"output_dir"`
	BackgroundColor     string  `toml:"background_color"`
	TitleColor          string  `toml:"title_color"`
	Bold                bool    `toml:"bold"`
	CoverSize           int     `toml:"cover_size"`
	TextSize            int     `toml:"text_size"`
	CoverTimeoutSeconds int     `toml:"cover_timeout_seconds"`
	CoverRateLimit      float64 `toml:"cover_rate_limit"`
}

// CacheConfig contains cover cache database settings.
type CacheConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
}

// Timeout returns the backend request timeout.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// CoverTimeout returns the per-cover load timeout.
func (e ExportConfig) CoverTimeout() time.Duration {
	if e.CoverTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(e.CoverTimeoutSeconds) * time.Second
}

// Validate checks fields the client cannot work without.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("%w: backend.base_url is required", ErrInvalidConfig)
	}
	if c.Backend.CallbackPort < 0 || c.Backend.CallbackPort > 65535 {
		return fmt.Errorf("%w: backend.callback_port out of range", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes config to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

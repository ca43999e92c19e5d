package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// #region settings
// Settings are process-level options for the CLI and the local server.
type Settings struct {
	DBPath       string        `yaml:"db_path"`
	ListenAddr   string        `yaml:"listen_addr"`
	LogLevel     string        `yaml:"log_level"`
	LogFormat    string        `yaml:"log_format"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	ConfigURL    string        `yaml:"config_url"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		DBPath:       "policy_dash.db",
		ListenAddr:   "127.0.0.1:8787",
		LogLevel:     "info",
		LogFormat:    "text",
		FetchTimeout: 10 * time.Second,
	}
}

// #endregion settings

// #region load-settings
// LoadSettings reads an optional YAML file (env vars expanded), then applies
// POLICYDASH_* environment overrides. An empty path skips the file.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path != "" {
		// #nosec G304 -- path is an operator-provided settings file.
		raw, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("read settings: %w", err)
		}
		expanded := os.ExpandEnv(string(raw))
		expanded = strings.ReplaceAll(expanded, "\r\n", "\n")
		if err := yaml.Unmarshal([]byte(expanded), &s); err != nil {
			return Settings{}, fmt.Errorf("parse settings: %w", err)
		}
	}

	s.DBPath = envOr("POLICYDASH_DB", s.DBPath)
	s.ListenAddr = envOr("POLICYDASH_ADDR", s.ListenAddr)
	s.LogLevel = envOr("POLICYDASH_LOG_LEVEL", s.LogLevel)
	s.LogFormat = envOr("POLICYDASH_LOG_FORMAT", s.LogFormat)
	s.ConfigURL = envOr("POLICYDASH_CONFIG_URL", s.ConfigURL)
	if v := os.Getenv("POLICYDASH_FETCH_TIMEOUT"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			s.FetchTimeout = time.Duration(sec) * time.Second
		}
	}
	return s, s.Validate()
}

// Validate checks the settings that would otherwise fail late.
func (s Settings) Validate() error {
	if s.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", s.LogFormat)
	}
	if s.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive")
	}
	return nil
}

// #endregion load-settings

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers

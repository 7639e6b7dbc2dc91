// Package config loads the groundcheck configuration: defaults, then an
// optional TOML file, then GROUNDCHECK_* environment overrides. The result
// is validated once and injected; nothing reads configuration globally.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultTimeoutSeconds    = 60
	DefaultStatusTTLSeconds  = 5
	DefaultCopyAckTTLSeconds = 2
)

// Config holds the application configuration.
type Config struct {
	Agent    AgentConfig   `toml:"agent"`
	UI       UIConfig      `toml:"ui"`
	History  HistoryConfig `toml:"history"`
	LogLevel string        `toml:"log_level"`
}

// AgentConfig addresses the hosted agent service.
type AgentConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	GeneratorID    string `toml:"generator_id"`
	AuditorID      string `toml:"auditor_id"`
	VaultIndexID   string `toml:"vault_index_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the per-call agent timeout.
func (a AgentConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// UIConfig holds the transient-status durations.
type UIConfig struct {
	StatusTTLSeconds  int `toml:"status_ttl_seconds"`
	CopyAckTTLSeconds int `toml:"copy_ack_ttl_seconds"`
}

// StatusTTL returns how long a vault save status stays visible.
func (u UIConfig) StatusTTL() time.Duration {
	return time.Duration(u.StatusTTLSeconds) * time.Second
}

// CopyAckTTL returns how long a copy acknowledgement stays visible.
func (u UIConfig) CopyAckTTL() time.Duration {
	return time.Duration(u.CopyAckTTLSeconds) * time.Second
}

// HistoryConfig controls the local run ledger.
type HistoryConfig struct {
	Path     string `toml:"path"`
	Disabled bool   `toml:"disabled"`
}

// Default returns the configuration before any file or environment input.
// Agent addressing has no usable default; Validate rejects it until the
// deployment fills it in.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		UI: UIConfig{
			StatusTTLSeconds:  DefaultStatusTTLSeconds,
			CopyAckTTLSeconds: DefaultCopyAckTTLSeconds,
		},
		History: HistoryConfig{
			Path: DefaultHistoryPath(),
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, the TOML file at path (a
// missing file is fine), and environment overrides, then validates it.
func Load(path string) (*Config, error) {
	cfg, err := LoadUnvalidated(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadUnvalidated is Load without the final validation step, for
// diagnostics that inspect a broken configuration instead of rejecting it.
func LoadUnvalidated(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults plus environment only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	cfg.Agent.BaseURL = normalizeBaseURL(cfg.Agent.BaseURL)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GROUNDCHECK_BASE_URL"); v != "" {
		cfg.Agent.BaseURL = v
	}
	if v := os.Getenv("GROUNDCHECK_API_KEY"); v != "" {
		cfg.Agent.APIKey = v
	}
	if v := os.Getenv("GROUNDCHECK_GENERATOR_ID"); v != "" {
		cfg.Agent.GeneratorID = v
	}
	if v := os.Getenv("GROUNDCHECK_AUDITOR_ID"); v != "" {
		cfg.Agent.AuditorID = v
	}
	if v := os.Getenv("GROUNDCHECK_VAULT_INDEX_ID"); v != "" {
		cfg.Agent.VaultIndexID = v
	}
	if v := os.Getenv("GROUNDCHECK_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("GROUNDCHECK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate verifies the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Agent.BaseURL) == "" {
		return fmt.Errorf("agent base_url is required")
	}
	u, err := url.Parse(c.Agent.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("agent base_url must be an http(s) URL, got %q", c.Agent.BaseURL)
	}
	if strings.TrimSpace(c.Agent.GeneratorID) == "" {
		return fmt.Errorf("agent generator_id is required")
	}
	if strings.TrimSpace(c.Agent.AuditorID) == "" {
		return fmt.Errorf("agent auditor_id is required")
	}
	if strings.TrimSpace(c.Agent.VaultIndexID) == "" {
		return fmt.Errorf("agent vault_index_id is required")
	}
	if c.Agent.TimeoutSeconds <= 0 {
		return fmt.Errorf("agent timeout_seconds must be positive")
	}
	if c.UI.StatusTTLSeconds <= 0 {
		return fmt.Errorf("ui status_ttl_seconds must be positive")
	}
	if c.UI.CopyAckTTLSeconds <= 0 {
		return fmt.Errorf("ui copy_ack_ttl_seconds must be positive")
	}
	if !c.History.Disabled && strings.TrimSpace(c.History.Path) == "" {
		return fmt.Errorf("history path is required unless history is disabled")
	}
	return nil
}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return baseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// Package config handles environment, .env and TOML configuration loading
// and validation.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"/etc/webhook-relay/config.toml",
	"configs/config.toml",
}

// reservedPaths are routes owned by the relay; the metrics endpoint may not shadow them.
var reservedPaths = []string{"/callback", "/healthz", "/relay/status"}

// ErrMissingDestination is returned when no destination URL is configured.
// It is the only condition that prevents the relay from starting with an
// otherwise well-formed configuration.
var ErrMissingDestination = errors.New("destination.url is required (set N8N_WEBHOOK_URL)")

// CLI holds command-line arguments parsed by Kong.
type CLI struct {
	Config         string `kong:"short='c',help='Path to TOML config file.',env='CONFIG_PATH'"`
	Host           string `kong:"help='Listen host (overrides config).',env='HOST'"`
	Port           int    `kong:"short='p',help='Listen port (overrides config).',env='PORT'"`
	DestinationURL string `kong:"name='destination-url',help='Downstream webhook URL (overrides config).',env='N8N_WEBHOOK_URL'"`
	SecurityToken  string `kong:"name='security-token',help='Value sent as X-Security-Token (overrides config).',env='N8N_SECURITY_TOKEN'"`
	LogLevel       string `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`
}

// Config is the top-level application configuration. It is built once at
// startup and never mutated afterwards.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Destination DestinationConfig `toml:"destination"`
	Log         LogConfig         `toml:"log"`
	Metrics     MetricsConfig     `toml:"metrics"`

	filePath string // resolved config file path (unexported)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"` // 0 means "use default" (5000)
}

// DestinationConfig describes the single downstream endpoint.
type DestinationConfig struct {
	URL              string `toml:"url"`
	SecurityToken    string `toml:"security_token"`
	RequireToken     bool   `toml:"require_token"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	IdleConnections  int    `toml:"idle_connections"`
	MaxResponseBytes int64  `toml:"max_response_bytes"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load builds the configuration from an optional TOML file and CLI/env
// overrides. When no explicit path is given (via --config or CONFIG_PATH), it
// searches /etc/webhook-relay/config.toml then configs/config.toml; finding
// neither is fine, since the relay can run from environment variables alone.
func Load(cli *CLI) (*Config, error) {
	var cfg Config

	path := cli.Config
	if path == "" {
		path = findConfig()
	}
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
		cfg.filePath = path
	}

	cfg.applyCLI(cli)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// applyCLI overrides config values with non-zero CLI flags.
func (c *Config) applyCLI(cli *CLI) {
	if cli.Host != "" {
		c.Server.Host = cli.Host
	}
	if cli.Port != 0 {
		c.Server.Port = cli.Port
	}
	if cli.DestinationURL != "" {
		c.Destination.URL = cli.DestinationURL
	}
	if cli.SecurityToken != "" {
		c.Destination.SecurityToken = cli.SecurityToken
	}
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Destination.URL) == "" {
		return ErrMissingDestination
	}
	u, err := url.Parse(c.Destination.URL)
	if err != nil {
		return fmt.Errorf("destination.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("destination.url must use http or https; got scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("destination.url has no host")
	}
	if c.Destination.RequireToken && c.Destination.SecurityToken == "" {
		return fmt.Errorf("destination.require_token is set but no security token is configured (set N8N_SECURITY_TOKEN)")
	}

	// Numeric bounds.
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 0–65535; got %d", c.Server.Port)
	}
	if c.Destination.TimeoutSeconds < 0 {
		return fmt.Errorf("destination.timeout_seconds must be non-negative; got %d", c.Destination.TimeoutSeconds)
	}
	if c.Destination.IdleConnections < 0 {
		return fmt.Errorf("destination.idle_connections must be non-negative; got %d", c.Destination.IdleConnections)
	}
	if c.Destination.MaxResponseBytes < 0 {
		return fmt.Errorf("destination.max_response_bytes must be non-negative; got %d", c.Destination.MaxResponseBytes)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "":
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Path != "" {
		p := c.Metrics.Path
		if p[0] != '/' {
			return fmt.Errorf("metrics.path must start with '/'; got %q", p)
		}
		for _, reserved := range reservedPaths {
			if p == reserved || strings.HasPrefix(p, reserved+"/") {
				return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, reserved)
			}
		}
	}

	return nil
}

// setDefaults fills zero-valued fields. Zero means "unset" for integer
// fields because TOML cannot distinguish an explicit 0 from an omitted key.
func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Destination.TimeoutSeconds == 0 {
		c.Destination.TimeoutSeconds = 5
	}
	if c.Destination.IdleConnections == 0 {
		c.Destination.IdleConnections = 100
	}
	if c.Destination.MaxResponseBytes == 0 {
		c.Destination.MaxResponseBytes = 4096
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// findConfig returns the first config path that exists, or empty string.
func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the server listen address as host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DestinationHost returns the host part of the destination URL, safe to log
// or expose since webhook paths often embed secrets.
func (c *DestinationConfig) DestinationHost() string {
	u, err := url.Parse(c.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

// WarnPermissions logs a warning if the config file is readable by group or others.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}

// WarnMissingToken logs a warning when the relay will forward an empty
// X-Security-Token header.
func (c *Config) WarnMissingToken(logger *slog.Logger) {
	if c.Destination.SecurityToken != "" {
		return
	}
	logger.Warn("no security token configured; forwarding with an empty X-Security-Token header",
		"destination_host", c.Destination.DestinationHost(),
	)
}

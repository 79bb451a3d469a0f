package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the daemon configuration. All durations are Go duration strings
// (e.g. "500ms", "10s", "1m").
type Config struct {
	Logging LoggingConfig `json:"logging"`
	Icons   IconsConfig   `json:"icons,omitempty"`
	Expiry  ExpiryConfig  `json:"expiry,omitempty"`
	Relay   RelayConfig   `json:"relay,omitempty"`
	Debug   DebugConfig   `json:"debug,omitempty"`
}

type LoggingConfig struct {
	// Level: TRACE, DEBUG, INFO, WARN or ERROR.
	Level   string        `json:"level,omitempty"`
	Console bool          `json:"console,omitempty"`
	File    LogFileConfig `json:"file,omitempty"`
}

type LogFileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

type IconsConfig struct {
	// Theme is the preferred freedesktop icon theme; hicolor is always the
	// fallback.
	Theme string `json:"theme,omitempty"`
	// Default is the icon name used when every other candidate fails.
	Default string `json:"default,omitempty"`
}

type ExpiryConfig struct {
	// DefaultTimeout applies to the protocol's -1 "server default" sentinel.
	DefaultTimeout string `json:"default_timeout,omitempty"`
	// SweepInterval is how often expired notifications are evicted.
	SweepInterval string `json:"sweep_interval,omitempty"`
}

type RelayConfig struct {
	// Buffer is the outbound signal buffer size.
	Buffer int `json:"buffer,omitempty"`
}

type DebugConfig struct {
	Pprof PprofConfig `json:"pprof,omitempty"`
}

type PprofConfig struct {
	Enabled bool `json:"enabled,omitempty"`
	// Addr must be a loopback address; default 127.0.0.1:6060.
	Addr string `json:"addr,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "INFO", Console: true},
	}
}

func (c *Config) DefaultIcon() string {
	if c == nil || strings.TrimSpace(c.Icons.Default) == "" {
		return "notifications"
	}
	return strings.TrimSpace(c.Icons.Default)
}

func (c *Config) DefaultTimeout() (time.Duration, error) {
	if c == nil {
		return time.Minute, nil
	}
	return parseDurationOrDefault("expiry.default_timeout", c.Expiry.DefaultTimeout, time.Minute)
}

func (c *Config) SweepInterval() (time.Duration, error) {
	if c == nil {
		return time.Second, nil
	}
	return parseDurationOrDefault("expiry.sweep_interval", c.Expiry.SweepInterval, time.Second)
}

func (c *Config) RelayBuffer() int {
	if c == nil || c.Relay.Buffer <= 0 {
		return 64
	}
	return c.Relay.Buffer
}

func parseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

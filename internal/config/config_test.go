package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"notifyd/pkg/logx"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "notifyd.yaml", `
logging:
  level: DEBUG
  console: true
  file:
    enabled: true
    path: /tmp/notifyd.log
icons:
  theme: Adwaita
  default: dialog-information
expiry:
  default_timeout: 30s
  sweep_interval: 500ms
relay:
  buffer: 128
`)
	m := NewManager(path, logx.Nop())
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "DEBUG" || !cfg.Logging.File.Enabled {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if cfg.Icons.Theme != "Adwaita" || cfg.DefaultIcon() != "dialog-information" {
		t.Fatalf("icons = %+v", cfg.Icons)
	}
	if d, err := cfg.DefaultTimeout(); err != nil || d != 30*time.Second {
		t.Fatalf("DefaultTimeout = %v, %v", d, err)
	}
	if d, err := cfg.SweepInterval(); err != nil || d != 500*time.Millisecond {
		t.Fatalf("SweepInterval = %v, %v", d, err)
	}
	if cfg.RelayBuffer() != 128 {
		t.Fatalf("RelayBuffer = %d", cfg.RelayBuffer())
	}
}

func TestMissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()
	m := NewManager(filepath.Join(t.TempDir(), "absent.yaml"), logx.Nop())
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "INFO" || !cfg.Logging.Console {
		t.Fatalf("defaults = %+v", cfg.Logging)
	}
	if cfg.DefaultIcon() != "notifications" {
		t.Fatalf("DefaultIcon = %q", cfg.DefaultIcon())
	}
	if d, _ := cfg.DefaultTimeout(); d != time.Minute {
		t.Fatalf("DefaultTimeout = %v, want 1m", d)
	}
	if d, _ := cfg.SweepInterval(); d != time.Second {
		t.Fatalf("SweepInterval = %v, want 1s", d)
	}
	if cfg.RelayBuffer() != 64 {
		t.Fatalf("RelayBuffer = %d, want 64", cfg.RelayBuffer())
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "bad.yaml", "no_such_section:\n  x: 1\n")
	m := NewManager(path, logx.Nop())
	if _, err := m.Load(); err == nil {
		t.Fatal("expected error for unknown config section")
	}
}

func TestParseRejectsBadDuration(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "bad.yaml", "expiry:\n  default_timeout: soon\n")
	m := NewManager(path, logx.Nop())
	if _, err := m.Load(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

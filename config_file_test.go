package goSession

import (
	"testing"
	"time"

	"github.com/spf13/afero"
)

func writeConfigFile(t *testing.T, fs afero.Fs, content string) string {
	t.Helper()
	const path = "/etc/gosession/config.yaml"
	if err := afero.WriteFile(fs, path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigLayersOverDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := writeConfigFile(t, fs, `
refresh:
  interval: 10m
  max_retries: 5
inactivity:
  idle_threshold: 30m
  signals: [key_press, click]
mirror:
  enabled: true
  path: /var/lib/app/credential.yaml
  max_age: 20m
audit:
  enabled: true
  buffer_size: 64
`)

	cfg, err := LoadConfig(fs, path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Refresh.Interval != 10*time.Minute {
		t.Fatalf("interval override lost: %v", cfg.Refresh.Interval)
	}
	if cfg.Refresh.MaxRetries != 5 {
		t.Fatalf("retry override lost: %d", cfg.Refresh.MaxRetries)
	}
	// Untouched fields keep their defaults.
	if cfg.Refresh.RequestTimeout != 10*time.Second {
		t.Fatalf("default request timeout lost: %v", cfg.Refresh.RequestTimeout)
	}
	if cfg.Inactivity.IdleThreshold != 30*time.Minute {
		t.Fatalf("idle override lost: %v", cfg.Inactivity.IdleThreshold)
	}
	if len(cfg.Inactivity.Signals) != 2 || cfg.Inactivity.Signals[0] != SignalKeyPress || cfg.Inactivity.Signals[1] != SignalClick {
		t.Fatalf("signal override lost: %v", cfg.Inactivity.Signals)
	}
	if !cfg.Mirror.Enabled || cfg.Mirror.Path != "/var/lib/app/credential.yaml" || cfg.Mirror.MaxAge != 20*time.Minute {
		t.Fatalf("mirror override lost: %+v", cfg.Mirror)
	}
	if !cfg.Audit.Enabled || cfg.Audit.BufferSize != 64 {
		t.Fatalf("audit override lost: %+v", cfg.Audit)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config failed validation: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(afero.NewMemMapFs(), "/missing.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := writeConfigFile(t, fs, "refresh:\n  interval: soon\n")

	if _, err := LoadConfig(fs, path); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestLoadConfigRejectsUnknownSignal(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := writeConfigFile(t, fs, "inactivity:\n  signals: [telepathy]\n")

	if _, err := LoadConfig(fs, path); err == nil {
		t.Fatal("expected error for unknown signal class")
	}
}

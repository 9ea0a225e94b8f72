package goSession

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML schema of a configuration file. Durations use Go
// duration syntax ("14m", "10s"); absent fields keep their defaults.
type fileConfig struct {
	Refresh struct {
		Interval       string `yaml:"interval"`
		RequestTimeout string `yaml:"request_timeout"`
		MaxRetries     *int   `yaml:"max_retries"`
	} `yaml:"refresh"`
	Inactivity struct {
		IdleThreshold string   `yaml:"idle_threshold"`
		Signals       []string `yaml:"signals"`
	} `yaml:"inactivity"`
	Logout struct {
		NotifyTimeout string `yaml:"notify_timeout"`
	} `yaml:"logout"`
	Profile struct {
		RequestTimeout string `yaml:"request_timeout"`
	} `yaml:"profile"`
	Mirror struct {
		Enabled *bool  `yaml:"enabled"`
		Path    string `yaml:"path"`
		MaxAge  string `yaml:"max_age"`
	} `yaml:"mirror"`
	Audit struct {
		Enabled    *bool `yaml:"enabled"`
		BufferSize *int  `yaml:"buffer_size"`
		DropIfFull *bool `yaml:"drop_if_full"`
	} `yaml:"audit"`
	Metrics struct {
		Enabled                 *bool `yaml:"enabled"`
		EnableLatencyHistograms *bool `yaml:"enable_latency_histograms"`
	} `yaml:"metrics"`
}

// LoadConfig reads a YAML configuration file from fs, layering it over the
// built-in defaults. The result still goes through Validate in Build.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	cfg := defaultConfig()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	if err := applyDuration(&cfg.Refresh.Interval, fc.Refresh.Interval); err != nil {
		return cfg, fmt.Errorf("refresh.interval: %w", err)
	}
	if err := applyDuration(&cfg.Refresh.RequestTimeout, fc.Refresh.RequestTimeout); err != nil {
		return cfg, fmt.Errorf("refresh.request_timeout: %w", err)
	}
	if fc.Refresh.MaxRetries != nil {
		cfg.Refresh.MaxRetries = *fc.Refresh.MaxRetries
	}

	if err := applyDuration(&cfg.Inactivity.IdleThreshold, fc.Inactivity.IdleThreshold); err != nil {
		return cfg, fmt.Errorf("inactivity.idle_threshold: %w", err)
	}
	if len(fc.Inactivity.Signals) > 0 {
		signals := make([]SignalClass, 0, len(fc.Inactivity.Signals))
		for _, name := range fc.Inactivity.Signals {
			sig, err := parseSignalClass(name)
			if err != nil {
				return cfg, fmt.Errorf("inactivity.signals: %w", err)
			}
			signals = append(signals, sig)
		}
		cfg.Inactivity.Signals = signals
	}

	if err := applyDuration(&cfg.Logout.NotifyTimeout, fc.Logout.NotifyTimeout); err != nil {
		return cfg, fmt.Errorf("logout.notify_timeout: %w", err)
	}
	if err := applyDuration(&cfg.Profile.RequestTimeout, fc.Profile.RequestTimeout); err != nil {
		return cfg, fmt.Errorf("profile.request_timeout: %w", err)
	}

	if fc.Mirror.Enabled != nil {
		cfg.Mirror.Enabled = *fc.Mirror.Enabled
	}
	if fc.Mirror.Path != "" {
		cfg.Mirror.Path = fc.Mirror.Path
	}
	if err := applyDuration(&cfg.Mirror.MaxAge, fc.Mirror.MaxAge); err != nil {
		return cfg, fmt.Errorf("mirror.max_age: %w", err)
	}

	if fc.Audit.Enabled != nil {
		cfg.Audit.Enabled = *fc.Audit.Enabled
	}
	if fc.Audit.BufferSize != nil {
		cfg.Audit.BufferSize = *fc.Audit.BufferSize
	}
	if fc.Audit.DropIfFull != nil {
		cfg.Audit.DropIfFull = *fc.Audit.DropIfFull
	}

	if fc.Metrics.Enabled != nil {
		cfg.Metrics.Enabled = *fc.Metrics.Enabled
	}
	if fc.Metrics.EnableLatencyHistograms != nil {
		cfg.Metrics.EnableLatencyHistograms = *fc.Metrics.EnableLatencyHistograms
	}

	return cfg, nil
}

func applyDuration(dst *time.Duration, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func parseSignalClass(name string) (SignalClass, error) {
	for _, sig := range AllSignalClasses() {
		if sig.String() == name {
			return sig, nil
		}
	}
	return 0, fmt.Errorf("unknown signal class %q", name)
}

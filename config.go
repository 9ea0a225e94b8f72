package goSession

import (
	"errors"
	"time"
)

// Config defines the policy knobs of the session engine. Zero values are
// filled from defaultConfig by [New]; Validate rejects configurations that
// would wedge the lifecycle (a refresh interval longer than the credential
// lifetime, an unbounded remote call, a zero retry budget).
type Config struct {
	Refresh    RefreshConfig
	Inactivity InactivityConfig
	Logout     LogoutConfig
	Profile    ProfileConfig
	Mirror     MirrorConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig controls credential renewal scheduling and the retry budget.
type RefreshConfig struct {
	// Interval between background renewal ticks. Must sit safely inside the
	// access credential lifetime (assumed 15–20 minutes).
	Interval time.Duration
	// RequestTimeout bounds every renewal call; a hung network call must not
	// wedge the scheduler.
	RequestTimeout time.Duration
	// MaxRetries is the consecutive-failure count that forces logout.
	MaxRetries int
}

/*
====================================
INACTIVITY CONFIG
====================================
*/

// InactivityConfig controls the idle-logout policy.
type InactivityConfig struct {
	// IdleThreshold is how long the session survives without a qualifying
	// signal.
	IdleThreshold time.Duration
	// Signals is the set of qualifying signal classes. Empty means all.
	Signals []SignalClass
}

// LogoutConfig controls teardown behavior.
type LogoutConfig struct {
	// NotifyTimeout bounds the best-effort server notify; expiry never blocks
	// local teardown.
	NotifyTimeout time.Duration
}

// ProfileConfig controls authoritative profile fetching.
type ProfileConfig struct {
	RequestTimeout time.Duration
}

// MirrorConfig controls the optional semi-durable credential mirror. The
// security baseline is in-memory only; enabling the mirror trades a weaker
// posture for reload continuity and is a documented exception.
type MirrorConfig struct {
	Enabled bool
	// Path of the mirror file. Required when Enabled.
	Path string
	// MaxAge is the freshness bound past which a mirrored credential is
	// ignored on warm start.
	MaxAge time.Duration
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Refresh: RefreshConfig{
			Interval:       14 * time.Minute,
			RequestTimeout: 10 * time.Second,
			MaxRetries:     3,
		},
		Inactivity: InactivityConfig{
			IdleThreshold: 5 * time.Minute,
			Signals:       AllSignalClasses(),
		},
		Logout: LogoutConfig{
			NotifyTimeout: 4 * time.Second,
		},
		Profile: ProfileConfig{
			RequestTimeout: 10 * time.Second,
		},
		Mirror: MirrorConfig{
			Enabled: false,
			MaxAge:  15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Inactivity.Signals != nil {
		out.Inactivity.Signals = make([]SignalClass, len(cfg.Inactivity.Signals))
		copy(out.Inactivity.Signals, cfg.Inactivity.Signals)
	}
	return out
}

// Validate describes the invariants a usable configuration must satisfy.
func (c Config) Validate() error {
	if c.Refresh.Interval <= 0 {
		return errors.New("refresh interval must be positive")
	}
	if c.Refresh.RequestTimeout <= 0 || c.Refresh.RequestTimeout > time.Minute {
		return errors.New("refresh request timeout must be in (0, 1m]")
	}
	if c.Refresh.MaxRetries < 1 {
		return errors.New("refresh max retries must be at least 1")
	}
	if c.Inactivity.IdleThreshold <= 0 {
		return errors.New("idle threshold must be positive")
	}
	for _, sig := range c.Inactivity.Signals {
		if sig >= signalClassCount {
			return errors.New("unknown inactivity signal class")
		}
	}
	if c.Logout.NotifyTimeout <= 0 || c.Logout.NotifyTimeout > 30*time.Second {
		return errors.New("logout notify timeout must be in (0, 30s]")
	}
	if c.Profile.RequestTimeout <= 0 || c.Profile.RequestTimeout > time.Minute {
		return errors.New("profile request timeout must be in (0, 1m]")
	}
	if c.Mirror.Enabled {
		if c.Mirror.Path == "" {
			return errors.New("mirror path required when mirror enabled")
		}
		if c.Mirror.MaxAge <= 0 {
			return errors.New("mirror max age must be positive when mirror enabled")
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("audit buffer size must not be negative")
	}
	return nil
}

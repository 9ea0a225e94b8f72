package goSession

import (
	"context"
	"errors"

	internalaudit "github.com/avrik7/goSession/internal/audit"
	"github.com/avrik7/goSession/internal/clock"
	"github.com/avrik7/goSession/mirror"
	"github.com/avrik7/goSession/session"
	"github.com/spf13/afero"
)

// tokenSourceSetter is implemented by API clients (httpapi among them) that
// want the engine's credential holder wired in as their bearer token source.
type tokenSourceSetter interface {
	SetTokenSource(fn func() string)
}

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the first lifecycle call on the built engine.
type Builder struct {
	config    Config
	api       APIClient
	clk       clock.Clock
	auditSink AuditSink
	mirrorFS  afero.Fs

	built bool
}

// New returns a Builder carrying the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithAPIClient sets the remote auth API implementation. Required.
func (b *Builder) WithAPIClient(api APIClient) *Builder {
	b.api = api
	return b
}

// WithClock overrides the time source. Tests inject a deterministic clock;
// production builds use the system clock.
func (b *Builder) WithClock(clk Clock) *Builder {
	b.clk = clk
	return b
}

// WithAuditSink sets the consumer of session lifecycle audit events and
// enables dispatching.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithMirrorFS overrides the filesystem backing the credential mirror.
// Defaults to the OS filesystem; tests use an in-memory one.
func (b *Builder) WithMirrorFS(fs afero.Fs) *Builder {
	b.mirrorFS = fs
	return b
}

// WithMetricsEnabled toggles metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the refresh-latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.api == nil {
		return nil, errors.New("api client required")
	}

	clk := b.clk
	if clk == nil {
		clk = clock.System{}
	}

	engine := &Engine{
		config:  cfg,
		api:     b.api,
		clock:   clk,
		creds:   session.NewCredentials(),
		state:   session.NewStore(),
		metrics: NewMetrics(cfg.Metrics),
	}

	if cfg.Mirror.Enabled {
		fs := b.mirrorFS
		if fs == nil {
			fs = afero.NewOsFs()
		}
		store, err := mirror.New(fs, mirror.Config{
			Path:   cfg.Mirror.Path,
			MaxAge: cfg.Mirror.MaxAge,
		})
		if err != nil {
			return nil, err
		}
		engine.mirror = store
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	engine.inactivity = newInactivityMonitor(clk, cfg.Inactivity, func() {
		engine.logout(context.Background(), LogoutInactivityTimeout)
	})

	if setter, ok := b.api.(tokenSourceSetter); ok {
		setter.SetTokenSource(engine.creds.Get)
	}

	b.built = true
	return engine, nil
}

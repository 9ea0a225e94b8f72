package goSession

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"

	internalaudit "github.com/avrik7/goSession/internal/audit"
	"github.com/avrik7/goSession/internal/clock"
	"github.com/avrik7/goSession/mirror"
	"github.com/avrik7/goSession/session"
	"golang.org/x/sync/singleflight"
)

// Engine is the session lifecycle coordinator. It owns the credential holder
// and state store, schedules credential renewal, enforces the inactivity
// policy, and resolves authorization queries.
//
// Engine instances are configured through [Builder] and treated as immutable
// after Build; all lifecycle state lives behind the state store and atomic
// guards.
type Engine struct {
	config     Config
	api        APIClient
	clock      clock.Clock
	creds      *session.Credentials
	state      *session.Store
	mirror     *mirror.Store
	audit      *internalaudit.Dispatcher
	metrics    *Metrics
	inactivity *inactivityMonitor

	// loggingOut is the shared teardown guard: set first during logout,
	// cleared last, checked by every refresh and login.
	loggingOut atomic.Bool
	// commitMu serializes the multi-write credential commit (state, holder,
	// mirror) against logout's clears, so a teardown can never land between
	// the fenced state write and the writes that follow it.
	commitMu sync.Mutex

	retries      atomic.Int32
	bootstrapped atomic.Bool
	refreshGroup singleflight.Group

	loopMu   sync.Mutex
	loopStop chan struct{}

	wg sync.WaitGroup
}

// Snapshot returns a read-only copy of the current session state.
func (e *Engine) Snapshot() SessionSnapshot {
	if e == nil {
		return SessionSnapshot{}
	}
	return e.state.Snapshot()
}

// Subscribe registers a state observer for UI re-rendering. The channel
// receives a snapshot after every state mutation; callers must Unsubscribe
// when done.
func (e *Engine) Subscribe() (uint64, <-chan SessionSnapshot) {
	return e.state.Subscribe()
}

// Unsubscribe removes a state observer.
func (e *Engine) Unsubscribe(id uint64) {
	e.state.Unsubscribe(id)
}

// AccessToken returns the current access credential, or "" when absent.
// Transport integrations use this as their bearer token source.
func (e *Engine) AccessToken() string {
	if e == nil {
		return ""
	}
	return e.creds.Get()
}

// OnCredentialChange registers a hook invoked after every credential write, so
// a custom transport can keep its Authorization header current. Hooks run
// synchronously on the writing goroutine and must not call back into the
// Engine's lifecycle operations.
func (e *Engine) OnCredentialChange(hook func(token string)) {
	if e == nil {
		return
	}
	e.creds.OnChange(hook)
}

// Signal forwards a user-interaction observation to the inactivity monitor.
func (e *Engine) Signal(class SignalClass) {
	if e == nil || e.inactivity == nil {
		return
	}
	e.inactivity.Signal(class)
}

// Close stops background work and flushes the audit dispatcher. The engine
// must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.stopRefreshLoop()
	if e.inactivity != nil {
		e.inactivity.Disarm()
	}
	e.wg.Wait()
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports audit events lost to dispatcher backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a deep copy of all metric counters and histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// beginSession commits a freshly issued credential: it publishes the
// authenticated state under a new episode, seeds the profile when the API
// returned one, arms the inactivity monitor, starts the renewal loop, and
// kicks off the background profile load.
func (e *Engine) beginSession(token string, seed *session.Profile) {
	// Same commit unit as the refresh path: holder, state, and mirror move
	// together relative to logout's clears.
	e.commitMu.Lock()
	e.creds.Set(token)
	episode := e.state.BeginEpisode(token)
	if seed != nil {
		e.state.SetProfile(episode, seed)
	}
	e.mirrorSave(token)
	e.retries.Store(0)
	e.commitMu.Unlock()

	e.inactivity.Arm()
	e.startRefreshLoop()
	e.loadProfileAsync(episode)
}

func (e *Engine) mirrorSave(token string) {
	if e.mirror == nil {
		return
	}
	if err := e.mirror.Save(token); err != nil {
		warnf("goSession: mirror save failed: %v", err)
	}
}

func (e *Engine) mirrorClear() error {
	if e.mirror == nil {
		return nil
	}
	return e.mirror.Clear()
}

// ClearMirror removes the mirrored credential file without touching the live
// session, for hosts exposing a "forget this device" action.
func (e *Engine) ClearMirror() error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.mirror == nil {
		return ErrMirrorDisabled
	}
	return e.mirror.Clear()
}

func (e *Engine) isRejected(err error) bool {
	return errors.Is(err, ErrAuthorizationRejected)
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func warnf(format string, args ...any) {
	log.Printf(format, args...)
}

package goSession

import (
	"context"
	"errors"
	"fmt"

	"github.com/avrik7/goSession/internal/flows"
	"github.com/avrik7/goSession/mirror"
)

const (
	refreshTriggerTick     = "tick"
	refreshTriggerOnDemand = "on_demand"
)

// Bootstrap performs the startup credential acquisition. It is called exactly
// once. On success the session is marked authenticated immediately, before
// the authoritative profile arrives (optimistic UI); the profile loads in the
// background. On failure the engine routes through logout teardown and
// returns the failure.
func (e *Engine) Bootstrap(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if !e.bootstrapped.CompareAndSwap(false, true) {
		return ErrBootstrapCompleted
	}

	e.state.SetBootstrapping(true)

	if e.mirror != nil {
		e.warmStartFromMirror(ctx)
	}

	token, err := e.callRefresh(ctx)
	if err != nil {
		e.metricInc(MetricBootstrapFailure)
		e.emitAudit(ctx, auditEventBootstrap, false, "", err, nil)
		if e.isRejected(err) {
			e.logout(ctx, LogoutTokenExpired)
			return fmt.Errorf("bootstrap: %w", err)
		}
		e.logout(ctx, LogoutBootstrapFailed)
		return fmt.Errorf("bootstrap: %w: %v", ErrNetworkFailure, err)
	}

	e.beginSession(token, nil)
	e.metricInc(MetricBootstrapSuccess)
	e.emitAudit(ctx, auditEventBootstrap, true, "", nil, nil)
	return nil
}

// warmStartFromMirror seeds the credential holder from a fresh mirror record
// so the in-flight bootstrap renewal has a bearer token available and the
// first authorization queries can fall back to its claims. Best effort only;
// the renewal that follows remains mandatory.
func (e *Engine) warmStartFromMirror(ctx context.Context) {
	token, err := e.mirror.Load()
	if err != nil {
		if !errors.Is(err, mirror.ErrNotFound) && !errors.Is(err, mirror.ErrStale) {
			warnf("goSession: mirror load failed: %v", err)
		}
		return
	}
	e.creds.Set(token)
	e.metricInc(MetricMirrorWarmStart)
	e.emitAudit(ctx, auditEventMirrorWarmStart, true, "", nil, nil)
}

// RefreshNow renews the credential on demand, for callers that hit an
// authorization failure mid-request and want an immediate retry before giving
// up. Concurrent calls coalesce into a single renewal.
func (e *Engine) RefreshNow(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}
	snap := e.state.Snapshot()
	if !snap.Authenticated && !snap.Bootstrapping {
		return ErrNotAuthenticated
	}
	return e.refresh(ctx, refreshTriggerOnDemand)
}

// refresh executes one guarded renewal attempt via the flow function.
// Concurrent triggers (tick racing on-demand) share a single in-flight call,
// which also upholds the at-most-one-refresh invariant.
func (e *Engine) refresh(ctx context.Context, trigger string) error {
	result, _, _ := e.refreshGroup.Do("refresh", func() (any, error) {
		return e.runRefreshFlow(ctx, trigger), nil
	})
	res := result.(flows.RefreshResult)

	switch res.Failure {
	case flows.RefreshFailureNone:
		return nil
	case flows.RefreshFailureGuard, flows.RefreshFailureStale:
		return ErrLogoutInProgress
	case flows.RefreshFailureRejected:
		return fmt.Errorf("refresh: %w", res.Err)
	default:
		return fmt.Errorf("refresh: %w: %v", ErrNetworkFailure, res.Err)
	}
}

func (e *Engine) runRefreshFlow(ctx context.Context, trigger string) flows.RefreshResult {
	episode := e.state.Episode()
	start := e.clock.Now()

	result := flows.RunRefresh(ctx, flows.RefreshDeps{
		GuardHeld:   e.loggingOut.Load,
		CallRefresh: e.callRefresh,
		IsRejected:  e.isRejected,
		CommitCredential: func(credential string) bool {
			// commitMu makes the three writes one unit against teardown:
			// logout's clears take the same lock, so they run either
			// entirely before this commit (the guard check below then
			// rejects it) or entirely after (clearing everything written
			// here). The commit can never be partially undone.
			e.commitMu.Lock()
			defer e.commitMu.Unlock()

			if e.loggingOut.Load() {
				return false
			}
			if !e.state.SetCredential(episode, credential) {
				return false
			}
			e.creds.Set(credential)
			e.mirrorSave(credential)
			return true
		},
		ResetRetries:     func() { e.retries.Store(0) },
		IncrementRetries: func() int { return int(e.retries.Add(1)) },
		MaxRetries:       e.config.Refresh.MaxRetries,
	})

	meta := func() map[string]string {
		return map[string]string{"trigger": trigger}
	}

	switch result.Failure {
	case flows.RefreshFailureNone:
		e.metrics.Observe(MetricRefreshLatency, e.clock.Now().Sub(start))
		e.metricInc(MetricRefreshSuccess)
		e.emitAudit(ctx, auditEventRefreshSuccess, true, "", nil, meta)

	case flows.RefreshFailureGuard, flows.RefreshFailureStale:
		e.metricInc(MetricRefreshAborted)

	case flows.RefreshFailureRejected:
		e.metricInc(MetricRefreshRejected)
		e.emitAudit(ctx, auditEventRefreshFailure, false, "rejected", result.Err, meta)
		e.logout(ctx, LogoutTokenExpired)

	case flows.RefreshFailureNetwork:
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, "network", result.Err, meta)
		if result.Exhausted {
			e.metricInc(MetricRefreshExhausted)
			e.logout(ctx, LogoutRefreshExhausted)
		}
	}

	return result
}

// callRefresh issues the time-boxed renewal call.
func (e *Engine) callRefresh(ctx context.Context) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.config.Refresh.RequestTimeout)
	defer cancel()
	return e.api.Refresh(callCtx)
}

// startRefreshLoop launches the periodic renewal goroutine, replacing any
// loop from a previous episode.
func (e *Engine) startRefreshLoop() {
	e.loopMu.Lock()
	defer e.loopMu.Unlock()

	if e.loopStop != nil {
		close(e.loopStop)
	}
	stop := make(chan struct{})
	e.loopStop = stop

	e.wg.Add(1)
	go e.runRefreshLoop(stop)
}

func (e *Engine) stopRefreshLoop() {
	e.loopMu.Lock()
	defer e.loopMu.Unlock()

	if e.loopStop != nil {
		close(e.loopStop)
		e.loopStop = nil
	}
}

func (e *Engine) runRefreshLoop(stop chan struct{}) {
	defer e.wg.Done()

	ticker := e.clock.NewTicker(e.config.Refresh.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			_ = e.refresh(context.Background(), refreshTriggerTick)
		case <-stop:
			return
		}
	}
}

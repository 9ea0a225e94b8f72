package goSession

import (
	"context"

	"github.com/avrik7/goSession/internal/flows"
)

// Logout tears down the session on explicit user request. It is idempotent
// and reentrant-safe: concurrent invocations, from any trigger, execute the
// teardown sequence exactly once.
func (e *Engine) Logout(ctx context.Context) {
	if e == nil {
		return
	}
	e.logout(ctx, LogoutUserInitiated)
}

// logout is the single teardown authority. The guard flag is acquired first
// and released last; between those points the server is notified best-effort,
// all timers are cancelled, and the credential store, mirror, and session
// state are cleared.
func (e *Engine) logout(ctx context.Context, reason LogoutReason) bool {
	result := flows.RunLogout(ctx, flows.LogoutDeps{
		AcquireGuard: func() bool {
			if !e.loggingOut.CompareAndSwap(false, true) {
				return false
			}
			// Nothing to tear down: a completed teardown already ran.
			snap := e.state.Snapshot()
			if !snap.Authenticated && !snap.Bootstrapping && !e.creds.Present() {
				e.loggingOut.Store(false)
				return false
			}
			return true
		},
		ReleaseGuard: func() { e.loggingOut.Store(false) },
		NotifyServer: func(ctx context.Context) error {
			if !e.creds.Present() {
				return nil
			}
			notifyCtx, cancel := context.WithTimeout(ctx, e.config.Logout.NotifyTimeout)
			defer cancel()
			return e.api.Logout(notifyCtx)
		},
		StopScheduler:    e.stopRefreshLoop,
		DisarmInactivity: e.inactivity.Disarm,
		ClearCredentials: func() {
			// Taken so the clear cannot interleave with an in-flight
			// credential commit; the guard flag is already set, so any
			// commit sequenced after this lock rejects itself.
			e.commitMu.Lock()
			defer e.commitMu.Unlock()
			e.creds.Clear()
		},
		ClearMirror: func() error {
			e.commitMu.Lock()
			defer e.commitMu.Unlock()
			return e.mirrorClear()
		},
		ResetState: func() {
			e.commitMu.Lock()
			defer e.commitMu.Unlock()
			e.retries.Store(0)
			e.state.Reset()
		},
		Warn: warnf,
	})

	if !result.Executed {
		return false
	}

	e.metricInc(MetricLogout)
	if reason == LogoutInactivityTimeout {
		e.metricInc(MetricIdleTimeout)
		e.emitAudit(ctx, auditEventIdleTimeout, true, reason.String(), nil, nil)
	}
	e.emitAudit(ctx, auditEventLogout, true, reason.String(), result.NotifyErr, nil)
	return true
}

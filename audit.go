package goSession

import (
	"context"

	internalaudit "github.com/avrik7/goSession/internal/audit"
	"github.com/google/uuid"
)

const (
	auditEventLoginSuccess    = "login_success"
	auditEventLoginFailure    = "login_failure"
	auditEventBootstrap       = "bootstrap"
	auditEventRefreshSuccess  = "refresh_success"
	auditEventRefreshFailure  = "refresh_failure"
	auditEventLogout          = "logout"
	auditEventIdleTimeout     = "idle_timeout"
	auditEventProfileLoaded   = "profile_loaded"
	auditEventProfileFailed   = "profile_failed"
	auditEventMirrorWarmStart = "mirror_warm_start"
)

// emitAudit forwards a lifecycle event to the dispatcher. The metadata
// closure runs only when auditing is enabled so disabled audit stays
// allocation-free.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	reason string,
	err error,
	metadata func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	snap := e.state.Snapshot()
	event := internalaudit.Event{
		Timestamp: e.clock.Now(),
		EventType: eventType,
		Reason:    reason,
		Success:   success,
	}
	if snap.Profile != nil {
		event.UserID = snap.Profile.ID
	}
	if snap.Episode != uuid.Nil {
		event.Episode = snap.Episode.String()
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}

package goSession

import (
	"context"
	"fmt"

	"github.com/avrik7/goSession/internal/flows"
	"github.com/avrik7/goSession/session"
)

// Login acquires a session with explicit credentials. On success the session
// is authenticated immediately and the authoritative profile loads in the
// background; the user summary returned by the login endpoint seeds the
// profile in the meantime. A rejected login surfaces [ErrLoginRejected] with
// the server's message and leaves the session unauthenticated; it is never
// retried.
func (e *Engine) Login(ctx context.Context, username, password string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	result := flows.RunLogin(ctx, username, password, flows.LoginDeps{
		GuardHeld: e.loggingOut.Load,
		CallLogin: func(ctx context.Context, username, password string) (string, *session.Profile, error) {
			callCtx, cancel := context.WithTimeout(ctx, e.config.Refresh.RequestTimeout)
			defer cancel()
			return e.api.Login(callCtx, username, password)
		},
		IsRejected: func(err error) bool {
			return errorsIsAny(err, ErrLoginRejected, ErrAuthorizationRejected)
		},
	})

	meta := func() map[string]string {
		return map[string]string{"identifier": username}
	}

	switch result.Failure {
	case flows.LoginFailureNone:
		e.beginSession(result.Credential, result.Profile)
		e.metricInc(MetricLoginSuccess)
		e.emitAudit(ctx, auditEventLoginSuccess, true, "", nil, meta)
		return nil

	case flows.LoginFailureGuard:
		return ErrLogoutInProgress

	case flows.LoginFailureRejected:
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "rejected", result.Err, meta)
		return fmt.Errorf("login: %w", result.Err)

	default:
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "network", result.Err, meta)
		return fmt.Errorf("login: %w: %v", ErrNetworkFailure, result.Err)
	}
}

package flows

import "context"

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	AcquireGuard     func() bool
	ReleaseGuard     func()
	NotifyServer     func(ctx context.Context) error
	StopScheduler    func()
	DisarmInactivity func()
	ClearCredentials func()
	ClearMirror      func() error
	ResetState       func()
	Warn             func(format string, args ...any)
}

// LogoutResult reports whether this invocation performed the teardown.
type LogoutResult struct {
	Executed  bool
	NotifyErr error
}

// RunLogout tears down the session exactly once. Concurrent invocations that
// lose the guard race return immediately without re-running teardown. The
// guard is released last, after all other teardown has completed, so a
// refresh racing the end of logout observes a consistent unauthenticated
// state rather than a half-torn-down one.
func RunLogout(ctx context.Context, deps LogoutDeps) LogoutResult {
	if !deps.AcquireGuard() {
		return LogoutResult{}
	}
	defer deps.ReleaseGuard()

	// Best-effort server notify runs first, while the credential is still
	// available for the bearer header. Failure never blocks local teardown.
	var notifyErr error
	if deps.NotifyServer != nil {
		if notifyErr = deps.NotifyServer(ctx); notifyErr != nil && deps.Warn != nil {
			deps.Warn("goSession: logout notify failed: %v", notifyErr)
		}
	}

	deps.StopScheduler()
	deps.DisarmInactivity()
	deps.ClearCredentials()
	if deps.ClearMirror != nil {
		if err := deps.ClearMirror(); err != nil && deps.Warn != nil {
			deps.Warn("goSession: mirror clear failed: %v", err)
		}
	}
	deps.ResetState()

	return LogoutResult{
		Executed:  true,
		NotifyErr: notifyErr,
	}
}

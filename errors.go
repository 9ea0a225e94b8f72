package goSession

import (
	"errors"

	"github.com/avrik7/goSession/claims"
)

var (
	// ErrEngineNotReady is returned when an Engine method is called before Build completed.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrNotAuthenticated is returned by operations that require an active session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrLoginRejected is returned when the remote API rejects the supplied credentials.
	ErrLoginRejected = errors.New("login rejected")
	// ErrAuthorizationRejected is returned when the remote API explicitly rejects the
	// current credential (401/403-equivalent). Refresh does not retry on it.
	ErrAuthorizationRejected = errors.New("authorization rejected")
	// ErrNetworkFailure is returned for timeouts and connection-level failures.
	// It is retried up to the configured retry budget before escalating.
	ErrNetworkFailure = errors.New("network failure")
	// ErrMalformedCredential is returned when the access credential's payload
	// segment cannot be decoded. It never escapes to permission queries, which
	// resolve it to deny.
	ErrMalformedCredential = claims.ErrMalformed
	// ErrProfileUnavailable is returned when the authoritative profile could not
	// be fetched. It is never a session-invalidating condition.
	ErrProfileUnavailable = errors.New("profile unavailable")
	// ErrLogoutInProgress is returned when a refresh is aborted because a logout
	// holds the teardown guard.
	ErrLogoutInProgress = errors.New("logout in progress")
	// ErrBootstrapCompleted is returned when Bootstrap is called more than once
	// for the lifetime of an Engine.
	ErrBootstrapCompleted = errors.New("bootstrap already completed")
	// ErrMirrorDisabled is returned by mirror operations when no mirror store is configured.
	ErrMirrorDisabled = errors.New("credential mirror disabled")
)

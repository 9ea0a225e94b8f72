package flows

import (
	"context"

	"github.com/avrik7/goSession/session"
)

// LoginFailureKind classifies login flow failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureGuard
	LoginFailureRejected
	LoginFailureNetwork
)

// LoginResult carries the issued credential and the user summary returned by
// the login endpoint, or failure metadata.
type LoginResult struct {
	Failure    LoginFailureKind
	Err        error
	Credential string
	Profile    *session.Profile
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	GuardHeld  func() bool
	CallLogin  func(ctx context.Context, username, password string) (string, *session.Profile, error)
	IsRejected func(error) bool
}

// RunLogin performs one credential acquisition with explicit credentials.
// Rejected credentials are surfaced to the caller without retry; state
// rollback is the Engine's responsibility.
func RunLogin(ctx context.Context, username, password string, deps LoginDeps) LoginResult {
	if deps.GuardHeld != nil && deps.GuardHeld() {
		return LoginResult{
			Failure: LoginFailureGuard,
		}
	}

	credential, profile, err := deps.CallLogin(ctx, username, password)
	if err != nil {
		kind := LoginFailureNetwork
		if deps.IsRejected != nil && deps.IsRejected(err) {
			kind = LoginFailureRejected
		}
		return LoginResult{
			Failure: kind,
			Err:     err,
		}
	}

	return LoginResult{
		Failure:    LoginFailureNone,
		Credential: credential,
		Profile:    profile,
	}
}

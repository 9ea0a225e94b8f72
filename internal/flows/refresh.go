package flows

import "context"

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureGuard
	RefreshFailureRejected
	RefreshFailureNetwork
	RefreshFailureStale
)

// RefreshResult carries either the renewed credential or failure metadata.
type RefreshResult struct {
	Failure    RefreshFailureKind
	Err        error
	Credential string

	// Retries is the consecutive-failure count after this attempt.
	Retries int
	// Exhausted reports that the retry budget was consumed by this failure.
	Exhausted bool
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	GuardHeld        func() bool
	CallRefresh      func(ctx context.Context) (string, error)
	IsRejected       func(error) bool
	CommitCredential func(credential string) bool
	ResetRetries     func()
	IncrementRetries func() int
	MaxRetries       int
}

// RunRefresh executes one credential renewal attempt. It aborts as a no-op
// when the logout guard is held, classifies an explicit authorization
// rejection separately from transient network failure, and never commits a
// credential into a torn-down or superseded episode.
func RunRefresh(ctx context.Context, deps RefreshDeps) RefreshResult {
	if deps.GuardHeld != nil && deps.GuardHeld() {
		return RefreshResult{
			Failure: RefreshFailureGuard,
		}
	}

	credential, err := deps.CallRefresh(ctx)
	if err != nil {
		if deps.IsRejected != nil && deps.IsRejected(err) {
			// Retrying a rejected credential is futile; no budget is consumed.
			return RefreshResult{
				Failure: RefreshFailureRejected,
				Err:     err,
			}
		}

		retries := deps.IncrementRetries()
		return RefreshResult{
			Failure:   RefreshFailureNetwork,
			Err:       err,
			Retries:   retries,
			Exhausted: retries >= deps.MaxRetries,
		}
	}

	if !deps.CommitCredential(credential) {
		// A logout completed or a new episode began while the call was in
		// flight. The result must not re-authenticate the session.
		return RefreshResult{
			Failure: RefreshFailureStale,
		}
	}

	deps.ResetRetries()
	return RefreshResult{
		Failure:    RefreshFailureNone,
		Credential: credential,
	}
}

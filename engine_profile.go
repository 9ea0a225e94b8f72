package goSession

import (
	"context"
	"fmt"

	"github.com/avrik7/goSession/internal/flows"
	"github.com/avrik7/goSession/session"
	"github.com/google/uuid"
)

// ReloadProfile refetches the authoritative profile for the current session
// episode. A failure leaves the prior profile and the authenticated state
// untouched.
func (e *Engine) ReloadProfile(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}
	snap := e.state.Snapshot()
	if !snap.Authenticated {
		return ErrNotAuthenticated
	}

	result := e.loadProfile(ctx, snap.Episode)
	if result.Err != nil {
		return fmt.Errorf("%w: %v", ErrProfileUnavailable, result.Err)
	}
	if result.Stale {
		return ErrLogoutInProgress
	}
	return nil
}

// loadProfileAsync runs the profile flow in the background; login and
// bootstrap return without waiting for it.
func (e *Engine) loadProfileAsync(episode uuid.UUID) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.loadProfile(context.Background(), episode)
	}()
}

// loadProfile executes one profile fetch fenced to the given episode. A
// completion belonging to a superseded episode is discarded without touching
// state.
func (e *Engine) loadProfile(ctx context.Context, episode uuid.UUID) flows.ProfileResult {
	result := flows.RunProfile(ctx, flows.ProfileDeps{
		MarkLoading: func() bool {
			return e.state.SetProfileLoading(episode, true)
		},
		CallProfile: func(ctx context.Context) (*session.Profile, error) {
			callCtx, cancel := context.WithTimeout(ctx, e.config.Profile.RequestTimeout)
			defer cancel()
			return e.api.Profile(callCtx)
		},
		Commit: func(profile *session.Profile) bool {
			return e.state.SetProfile(episode, profile)
		},
		ClearLoading: func() bool {
			return e.state.SetProfileLoading(episode, false)
		},
	})

	switch {
	case result.Loaded:
		e.metricInc(MetricProfileLoaded)
		e.emitAudit(ctx, auditEventProfileLoaded, true, "", nil, nil)
	case result.Err != nil && !result.Stale:
		// Isolated failure: the session stays authenticated and usable
		// through claim fallback until the next attempt.
		e.metricInc(MetricProfileFailed)
		e.emitAudit(ctx, auditEventProfileFailed, false, "", result.Err, nil)
	}

	return result
}

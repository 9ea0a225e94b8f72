package flows

import (
	"context"

	"github.com/avrik7/goSession/session"
)

// ProfileResult reports the outcome of one authoritative profile fetch.
type ProfileResult struct {
	Loaded bool
	Stale  bool
	Err    error
}

// ProfileDeps captures profile flow dependencies.
type ProfileDeps struct {
	MarkLoading  func() bool
	CallProfile  func(ctx context.Context) (*session.Profile, error)
	Commit       func(profile *session.Profile) bool
	ClearLoading func() bool
}

// RunProfile fetches the authoritative profile. On success the profile is
// replaced wholesale; on failure prior profile and authentication state are
// left untouched. A profile fetch failure is explicitly NOT a
// session-invalidating event: the session stays usable through claim-fallback
// permissions until the next attempt.
func RunProfile(ctx context.Context, deps ProfileDeps) ProfileResult {
	if !deps.MarkLoading() {
		return ProfileResult{Stale: true}
	}

	profile, err := deps.CallProfile(ctx)
	if err != nil {
		if !deps.ClearLoading() {
			return ProfileResult{Stale: true, Err: err}
		}
		return ProfileResult{Err: err}
	}

	if !deps.Commit(profile) {
		return ProfileResult{Stale: true}
	}
	return ProfileResult{Loaded: true}
}

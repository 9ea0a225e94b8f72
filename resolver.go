package goSession

import "github.com/avrik7/goSession/claims"

// HasPermission reports whether the current caller holds the named
// permission. Resolution order: authoritative profile when present (superuser
// short-circuits), else decoded credential claims while authenticated, else
// deny. The ordered fallback is what lets the UI avoid a flash of "access
// denied" while the profile is still loading; once the profile is present the
// claims are never consulted again for the session episode.
func (e *Engine) HasPermission(name string) bool {
	return e.resolve(func(p *UserProfile) bool {
		return p.HasPermission(name)
	}, func(c *claims.ClaimSet) bool {
		return c.HasPermission(name)
	})
}

// HasRole reports whether the current caller holds the named role. Profile
// roles match on either name or display name.
func (e *Engine) HasRole(name string) bool {
	return e.resolve(func(p *UserProfile) bool {
		return p.HasRole(name)
	}, func(c *claims.ClaimSet) bool {
		return c.HasRole(name)
	})
}

// HasAnyPermission reports whether the caller holds at least one of the named
// permissions (OR semantics).
func (e *Engine) HasAnyPermission(names ...string) bool {
	for _, name := range names {
		if e.HasPermission(name) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the caller holds every named permission
// (AND semantics, used by route authorization).
func (e *Engine) HasAllPermissions(names ...string) bool {
	for _, name := range names {
		if !e.HasPermission(name) {
			return false
		}
	}
	return true
}

// HasAnyRole reports whether the caller holds at least one of the named roles.
func (e *Engine) HasAnyRole(names ...string) bool {
	for _, name := range names {
		if e.HasRole(name) {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether the caller holds every named role.
func (e *Engine) HasAllRoles(names ...string) bool {
	for _, name := range names {
		if !e.HasRole(name) {
			return false
		}
	}
	return true
}

// resolve applies the ordered profile/claims/deny decision against one
// consistent snapshot, so a logout interleaving mid-query cannot mix sources.
func (e *Engine) resolve(fromProfile func(*UserProfile) bool, fromClaims func(*claims.ClaimSet) bool) bool {
	if e == nil {
		return false
	}
	snap := e.state.Snapshot()

	if snap.Profile != nil {
		if snap.Profile.IsSuperuser {
			return true
		}
		return fromProfile(snap.Profile)
	}

	if snap.Authenticated && snap.Credential != "" {
		set, err := claims.Decode(snap.Credential)
		if err != nil {
			// Malformed credential resolves to deny, never to an error.
			return false
		}
		if set.IsSuperuser {
			return true
		}
		return fromClaims(set)
	}

	return false
}

package session

import "github.com/google/uuid"

// Role is a named role carried by a user profile. Authorization matching
// accepts either Name or DisplayName for legacy compatibility.
type Role struct {
	Name        string
	DisplayName string
}

// Matches reports whether the role answers to the given name under the
// legacy either-field equality rule.
func (r Role) Matches(name string) bool {
	return r.Name == name || r.DisplayName == name
}

// Profile is the authoritative server-side record of a user's identity and
// authorization grants. It is immutable once fetched for a given refresh
// cycle and replaced wholesale on the next successful fetch, never patched
// field by field.
type Profile struct {
	ID            string
	Username      string
	Roles         []Role
	Permissions   []string
	IsSuperuser   bool
	LocationScope string
}

// HasPermission reports whether the profile grants the named permission.
// Superuser short-circuiting is the resolver's job, not the profile's.
func (p *Profile) HasPermission(name string) bool {
	if p == nil {
		return false
	}
	for _, perm := range p.Permissions {
		if perm == name {
			return true
		}
	}
	return false
}

// HasRole reports whether the profile carries the named role.
func (p *Profile) HasRole(name string) bool {
	if p == nil {
		return false
	}
	for _, role := range p.Roles {
		if role.Matches(name) {
			return true
		}
	}
	return false
}

// Snapshot is a point-in-time copy of the session aggregate. Authenticated
// implies Credential is present; Profile presence is independent and
// non-blocking.
type Snapshot struct {
	Credential     string
	Profile        *Profile
	Authenticated  bool
	Bootstrapping  bool
	ProfileLoading bool

	// Episode identifies the current session episode. It changes on every
	// successful login or bootstrap and resets to uuid.Nil on logout, fencing
	// out async completions that belong to an earlier episode.
	Episode uuid.UUID
}

package claims

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when the credential's payload segment cannot be
// decoded. Callers resolve it to a deny decision, never surface it raw.
var ErrMalformed = errors.New("malformed credential payload")

// ClaimSet holds the permission and role hints embedded in an access
// credential. Absent claims decode to empty sets, not errors.
type ClaimSet struct {
	Permissions []string
	Roles       []string
	IsSuperuser bool
}

// HasPermission reports whether the claim set carries the named permission.
func (c *ClaimSet) HasPermission(name string) bool {
	if c == nil {
		return false
	}
	for _, perm := range c.Permissions {
		if perm == name {
			return true
		}
	}
	return false
}

// HasRole reports whether the claim set carries the named role.
func (c *ClaimSet) HasRole(name string) bool {
	if c == nil {
		return false
	}
	for _, role := range c.Roles {
		if role == name {
			return true
		}
	}
	return false
}

// Decode extracts the claim set from a credential's payload segment. The
// signature is deliberately not checked. Decode is pure and synchronous;
// malformed input yields ErrMalformed.
func Decode(token string) (*ClaimSet, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformed)
	}

	parser := jwt.NewParser()
	mapClaims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, mapClaims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	set := &ClaimSet{
		Permissions: stringSlice(mapClaims["permissions"]),
		Roles:       stringSlice(mapClaims["roles"]),
	}
	if super, ok := mapClaims["is_superuser"].(bool); ok {
		set.IsSuperuser = super
	}
	return set, nil
}

// stringSlice tolerates the JSON shapes a claim list can arrive in: a string
// array, a single string, or absent. Non-string elements are skipped.
func stringSlice(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

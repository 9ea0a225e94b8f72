package goSession

import (
	"context"
	"errors"
	"testing"

	"github.com/avrik7/goSession/claims"
)

// claimsLogin authenticates with a credential carrying the given claims and
// no profile; the gated profile fetch never completes, so permission queries
// resolve from claims alone.
func claimsLogin(t *testing.T, engine *Engine, api *fakeAPI, token string) (release func()) {
	t.Helper()

	gate := make(chan struct{})
	api.profileFn = func(context.Context) (*UserProfile, error) {
		<-gate
		return testProfile(), nil
	}
	api.loginFn = func(context.Context, string, string) (string, *UserProfile, error) {
		return token, nil, nil
	}
	login(t, engine)
	return func() { close(gate) }
}

func TestResolveFromClaimsWhileProfileLoading(t *testing.T) {
	api := &fakeAPI{}
	engine, _, done := newTestEngine(t, api, testConfig())
	defer done()

	token := makeToken(map[string]any{
		"permissions": []string{"reports.view"},
		"roles":       []string{"auditor"},
	})
	release := claimsLogin(t, engine, api, token)
	defer release()

	if !engine.HasPermission("reports.view") {
		t.Fatal("expected claim-backed permission grant")
	}
	if engine.HasPermission("admin.panel") {
		t.Fatal("expected deny for permission absent from claims")
	}
	if !engine.HasRole("auditor") {
		t.Fatal("expected claim-backed role grant")
	}
}

func TestProfilePresenceSupersedesClaims(t *testing.T) {
	api := &fakeAPI{}
	engine, _, done := newTestEngine(t, api, testConfig())
	defer done()

	// Claims grant admin.panel; the authoritative profile does not.
	token := makeToken(map[string]any{
		"permissions": []string{"admin.panel"},
	})
	gate := make(chan struct{})
	api.profileFn = func(context.Context) (*UserProfile, error) {
		<-gate
		return testProfile(), nil
	}
	api.loginFn = func(context.Context, string, string) (string, *UserProfile, error) {
		return token, nil, nil
	}
	login(t, engine)

	if !engine.HasPermission("admin.panel") {
		t.Fatal("expected claim grant before profile arrival")
	}

	close(gate)
	waitFor(t, engine, func(s SessionSnapshot) bool { return s.Profile != nil })

	if engine.HasPermission("admin.panel") {
		t.Fatal("profile must supersede claims once present")
	}
	if !engine.HasPermission("reports.view") {
		t.Fatal("expected profile-backed permission grant")
	}
}

func TestSuperuserShortCircuits(t *testing.T) {
	api := &fakeAPI{}
	engine, _, done := newTestEngine(t, api, testConfig())
	defer done()

	token := makeToken(map[string]any{"is_superuser": true})
	release := claimsLogin(t, engine, api, token)
	defer release()

	if !engine.HasPermission("anything.at.all") {
		t.Fatal("expected superuser claim to grant any permission")
	}
}

func TestMalformedCredentialResolvesToDeny(t *testing.T) {
	api := &fakeAPI{}
	engine, _, done := newTestEngine(t, api, testConfig())
	defer done()

	release := claimsLogin(t, engine, api, "not-a-jwt")
	defer release()

	if engine.HasPermission("reports.view") {
		t.Fatal("malformed credential must resolve to deny, not error")
	}
	if !engine.Snapshot().Authenticated {
		t.Fatal("malformed credential must not invalidate the session")
	}
	if _, err := claims.Decode("not-a-jwt"); !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("expected ErrMalformedCredential, got %v", err)
	}
}

func TestUnauthenticatedDeniesEverything(t *testing.T) {
	api := &fakeAPI{}
	engine, _, done := newTestEngine(t, api, testConfig())
	defer done()

	if engine.HasPermission("reports.view") || engine.HasRole("member") {
		t.Fatal("expected deny in unauthenticated state")
	}
}

func TestRoleMatchesDisplayName(t *testing.T) {
	api := &fakeAPI{}
	engine, _, done := newTestEngine(t, api, testConfig())
	defer done()
	login(t, engine)
	waitFor(t, engine, func(s SessionSnapshot) bool { return s.Profile != nil })

	if !engine.HasRole("member") {
		t.Fatal("expected match on role name")
	}
	if !engine.HasRole("Member") {
		t.Fatal("expected match on role display name")
	}
	if engine.HasRole("admin") {
		t.Fatal("expected deny on unknown role")
	}
}

func TestCompositePermissionQueries(t *testing.T) {
	api := &fakeAPI{}
	engine, _, done := newTestEngine(t, api, testConfig())
	defer done()
	login(t, engine)
	waitFor(t, engine, func(s SessionSnapshot) bool { return s.Profile != nil })

	if !engine.HasAnyPermission("missing", "reports.view") {
		t.Fatal("expected OR semantics to grant")
	}
	if engine.HasAllPermissions("reports.view", "missing") {
		t.Fatal("expected AND semantics to deny")
	}
	if !engine.HasAllPermissions("reports.view") {
		t.Fatal("expected AND over granted set to pass")
	}
	if !engine.HasAnyRole("ghost", "member") {
		t.Fatal("expected OR role semantics to grant")
	}
	if engine.HasAllRoles("member", "ghost") {
		t.Fatal("expected AND role semantics to deny")
	}
}

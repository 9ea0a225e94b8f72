package goSession

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avrik7/goSession/internal/clock"
)

// fakeAPI is a programmable APIClient. Each handler is optional; the default
// behavior is a successful call returning deterministic values.
type fakeAPI struct {
	loginFn   func(ctx context.Context, username, password string) (string, *UserProfile, error)
	refreshFn func(ctx context.Context) (string, error)
	profileFn func(ctx context.Context) (*UserProfile, error)
	logoutFn  func(ctx context.Context) error

	loginCalls   atomic.Int64
	refreshCalls atomic.Int64
	profileCalls atomic.Int64
	logoutCalls  atomic.Int64
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (string, *UserProfile, error) {
	f.loginCalls.Add(1)
	if f.loginFn != nil {
		return f.loginFn(ctx, username, password)
	}
	return makeToken(map[string]any{"sub": "u1"}), testProfile(), nil
}

func (f *fakeAPI) Refresh(ctx context.Context) (string, error) {
	n := f.refreshCalls.Add(1)
	if f.refreshFn != nil {
		return f.refreshFn(ctx)
	}
	return makeToken(map[string]any{"sub": "u1", "gen": n}), nil
}

func (f *fakeAPI) Profile(ctx context.Context) (*UserProfile, error) {
	f.profileCalls.Add(1)
	if f.profileFn != nil {
		return f.profileFn(ctx)
	}
	return testProfile(), nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.logoutCalls.Add(1)
	if f.logoutFn != nil {
		return f.logoutFn(ctx)
	}
	return nil
}

func testProfile() *UserProfile {
	return &UserProfile{
		ID:            "u1",
		Username:      "alice",
		Roles:         []Role{{Name: "member", DisplayName: "Member"}},
		Permissions:   []string{"reports.view"},
		LocationScope: "hq",
	}
}

// makeToken builds an unsigned JWT-shaped string around the given claims.
func makeToken(claims map[string]any) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	if err != nil {
		panic(err)
	}
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + "."
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.Metrics.Enabled = true
	return cfg
}

func newTestEngine(t *testing.T, api *fakeAPI, cfg Config) (*Engine, *clock.Fake, func()) {
	t.Helper()

	clk := clock.NewFake()
	engine, err := New().
		WithConfig(cfg).
		WithAPIClient(api).
		WithClock(clk).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine, clk, engine.Close
}

// waitFor blocks until a published snapshot satisfies cond.
func waitFor(t *testing.T, e *Engine, cond func(SessionSnapshot) bool) SessionSnapshot {
	t.Helper()

	id, ch := e.Subscribe()
	defer e.Unsubscribe(id)

	if snap := e.Snapshot(); cond(snap) {
		return snap
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				t.Fatal("subscription closed before condition met")
			}
			if cond(snap) {
				return snap
			}
		case <-deadline:
			t.Fatalf("snapshot condition not met before deadline, last: %+v", e.Snapshot())
		}
	}
}

// waitForMetric blocks until the counter metric reaches want.
func waitForMetric(t *testing.T, e *Engine, id MetricID, want uint64) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e.MetricsSnapshot().Counters[id] >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("metric %d stuck at %d, want %d", id, e.MetricsSnapshot().Counters[id], want)
}

// waitForCount blocks until the counter reaches want.
func waitForCount(t *testing.T, counter *atomic.Int64, want int64) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if counter.Load() >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("counter stuck at %d, want %d", counter.Load(), want)
}

func TestLoginAuthenticatesImmediately(t *testing.T) {
	api := &fakeAPI{}
	engine, _, done := newTestEngine(t, api, testConfig())
	defer done()

	if err := engine.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	snap := engine.Snapshot()
	if !snap.Authenticated {
		t.Fatal("expected authenticated state after login")
	}
	if snap.Credential == "" {
		t.Fatal("expected credential present after login")
	}
	if snap.Profile == nil || snap.Profile.Username != "alice" {
		t.Fatalf("expected seeded profile, got %+v", snap.Profile)
	}
	if got := engine.AccessToken(); got != snap.Credential {
		t.Fatalf("AccessToken %q does not match snapshot credential %q", got, snap.Credential)
	}
}

func TestLoginRejectedLeavesUnauthenticated(t *testing.T) {
	api := &fakeAPI{
		loginFn: func(context.Context, string, string) (string, *UserProfile, error) {
			return "", nil, fmt.Errorf("%w: invalid credentials", ErrLoginRejected)
		},
	}
	engine, _, done := newTestEngine(t, api, testConfig())
	defer done()

	err := engine.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, ErrLoginRejected) {
		t.Fatalf("expected ErrLoginRejected, got %v", err)
	}

	snap := engine.Snapshot()
	if snap.Authenticated || snap.Credential != "" {
		t.Fatalf("expected unauthenticated state after rejected login, got %+v", snap)
	}
	if got := engine.MetricsSnapshot().Counters[MetricLoginFailure]; got != 1 {
		t.Fatalf("expected 1 login failure metric, got %d", got)
	}
}

func TestLoginNetworkFailure(t *testing.T) {
	api := &fakeAPI{
		loginFn: func(context.Context, string, string) (string, *UserProfile, error) {
			return "", nil, errors.New("connection refused")
		},
	}
	engine, _, done := newTestEngine(t, api, testConfig())
	defer done()

	err := engine.Login(context.Background(), "alice", "pw")
	if !errors.Is(err, ErrNetworkFailure) {
		t.Fatalf("expected ErrNetworkFailure, got %v", err)
	}
}

func TestBootstrapOptimisticAuthentication(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{
		profileFn: func(context.Context) (*UserProfile, error) {
			<-gate
			return testProfile(), nil
		},
	}
	engine, _, done := newTestEngine(t, api, testConfig())
	defer done()

	if err := engine.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	// Authenticated before the profile ever arrives.
	snap := engine.Snapshot()
	if !snap.Authenticated {
		t.Fatal("expected authenticated state immediately after bootstrap")
	}
	if snap.Profile != nil {
		t.Fatalf("expected no profile while fetch in flight, got %+v", snap.Profile)
	}

	close(gate)
	waitFor(t, engine, func(s SessionSnapshot) bool { return s.Profile != nil })
}

func TestBootstrapRunsOnce(t *testing.T) {
	api := &fakeAPI{}
	engine, _, done := newTestEngine(t, api, testConfig())
	defer done()

	if err := engine.Bootstrap(context.Background()); err != nil {
		t.Fatalf("first bootstrap failed: %v", err)
	}
	if err := engine.Bootstrap(context.Background()); !errors.Is(err, ErrBootstrapCompleted) {
		t.Fatalf("expected ErrBootstrapCompleted on second call, got %v", err)
	}
}

func TestBootstrapFailureLeavesUnauthenticated(t *testing.T) {
	api := &fakeAPI{
		refreshFn: func(context.Context) (string, error) {
			return "", errors.New("no renewal cookie")
		},
	}
	engine, _, done := newTestEngine(t, api, testConfig())
	defer done()

	err := engine.Bootstrap(context.Background())
	if !errors.Is(err, ErrNetworkFailure) {
		t.Fatalf("expected ErrNetworkFailure, got %v", err)
	}

	snap := engine.Snapshot()
	if snap.Authenticated || snap.Bootstrapping || snap.Credential != "" {
		t.Fatalf("expected clean unauthenticated state, got %+v", snap)
	}
}

func TestCredentialChangeHookObservesWrites(t *testing.T) {
	api := &fakeAPI{}
	engine, _, done := newTestEngine(t, api, testConfig())
	defer done()

	var tokens []string
	engine.OnCredentialChange(func(token string) {
		tokens = append(tokens, token)
	})

	if err := engine.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	engine.Logout(context.Background())

	if len(tokens) < 2 {
		t.Fatalf("expected at least set+clear notifications, got %v", tokens)
	}
	if tokens[len(tokens)-1] != "" {
		t.Fatalf("expected final notification to be the cleared credential, got %q", tokens[len(tokens)-1])
	}
}

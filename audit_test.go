package goSession

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avrik7/goSession/internal/clock"
)

func newAuditedEngine(t *testing.T, api *fakeAPI, sink AuditSink) (*Engine, func()) {
	t.Helper()

	engine, err := New().
		WithConfig(testConfig()).
		WithAPIClient(api).
		WithClock(clock.NewFake()).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine, engine.Close
}

func collectEvent(t *testing.T, sink *ChannelSink, eventType string) AuditEvent {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-sink.Events():
			if event.EventType == eventType {
				return event
			}
		case <-deadline:
			t.Fatalf("no %q event observed", eventType)
		}
	}
}

func TestAuditLoginEventCarriesIdentifier(t *testing.T) {
	sink := NewChannelSink(16)
	api := &fakeAPI{}
	engine, done := newAuditedEngine(t, api, sink)
	defer done()

	login(t, engine)

	event := collectEvent(t, sink, "login_success")
	if !event.Success {
		t.Fatal("expected success event")
	}
	if event.Metadata["identifier"] != "alice" {
		t.Fatalf("expected identifier metadata, got %v", event.Metadata)
	}
	if event.Episode == "" {
		t.Fatal("expected episode on authenticated event")
	}
}

func TestAuditLogoutEventCarriesReason(t *testing.T) {
	sink := NewChannelSink(16)
	api := &fakeAPI{}
	engine, done := newAuditedEngine(t, api, sink)
	defer done()

	login(t, engine)
	engine.Logout(context.Background())

	event := collectEvent(t, sink, "logout")
	if event.Reason != "user_initiated" {
		t.Fatalf("expected user_initiated reason, got %q", event.Reason)
	}
}

func TestAuditBootstrapNetworkFailureReason(t *testing.T) {
	sink := NewChannelSink(16)
	api := &fakeAPI{}
	api.refreshFn = func(context.Context) (string, error) {
		return "", errors.New("connection refused")
	}
	engine, done := newAuditedEngine(t, api, sink)
	defer done()

	if err := engine.Bootstrap(context.Background()); !errors.Is(err, ErrNetworkFailure) {
		t.Fatalf("expected ErrNetworkFailure, got %v", err)
	}

	event := collectEvent(t, sink, "logout")
	if event.Reason != "bootstrap_failed" {
		t.Fatalf("expected bootstrap_failed reason, got %q", event.Reason)
	}
}

func TestAuditBootstrapRejectedReason(t *testing.T) {
	sink := NewChannelSink(16)
	api := &fakeAPI{}
	api.refreshFn = func(context.Context) (string, error) {
		return "", ErrAuthorizationRejected
	}
	engine, done := newAuditedEngine(t, api, sink)
	defer done()

	if err := engine.Bootstrap(context.Background()); !errors.Is(err, ErrAuthorizationRejected) {
		t.Fatalf("expected ErrAuthorizationRejected, got %v", err)
	}

	event := collectEvent(t, sink, "logout")
	if event.Reason != "token_expired" {
		t.Fatalf("expected token_expired reason, got %q", event.Reason)
	}
}

func TestAuditDisabledEmitsNothing(t *testing.T) {
	api := &fakeAPI{}
	engine, _, done := newTestEngine(t, api, testConfig())
	defer done()

	login(t, engine)
	engine.Logout(context.Background())

	if got := engine.AuditDropped(); got != 0 {
		t.Fatalf("disabled audit reported drops: %d", got)
	}
}

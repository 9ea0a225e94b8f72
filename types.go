package goSession

import (
	"context"
	"io"

	internalaudit "github.com/avrik7/goSession/internal/audit"
	internalclock "github.com/avrik7/goSession/internal/clock"
	"github.com/avrik7/goSession/session"
)

// UserProfile is the authoritative server-side record of a user's roles,
// permissions, and location scoping, fetched separately from the access
// credential.
type UserProfile = session.Profile

// Role is a named role; authorization matching accepts either Name or
// DisplayName (legacy compatibility).
type Role = session.Role

// SessionSnapshot is a read-only point-in-time copy of the session aggregate
// consumed by UI callers.
type SessionSnapshot = session.Snapshot

// LogoutReason records what triggered a session teardown.
type LogoutReason uint8

const (
	// LogoutUserInitiated is an explicit logout by the user.
	LogoutUserInitiated LogoutReason = iota
	// LogoutTokenExpired is a teardown forced by an authorization-rejected refresh.
	LogoutTokenExpired
	// LogoutInactivityTimeout is a teardown forced by the idle threshold elapsing.
	LogoutInactivityTimeout
	// LogoutRefreshExhausted is a teardown forced by the consecutive-failure budget.
	LogoutRefreshExhausted
	// LogoutBootstrapFailed is a teardown after the startup credential
	// acquisition failed on the network, as opposed to being rejected.
	LogoutBootstrapFailed
)

// String returns the audit-stable name of the reason.
func (r LogoutReason) String() string {
	switch r {
	case LogoutUserInitiated:
		return "user_initiated"
	case LogoutTokenExpired:
		return "token_expired"
	case LogoutInactivityTimeout:
		return "inactivity_timeout"
	case LogoutRefreshExhausted:
		return "refresh_exhausted"
	case LogoutBootstrapFailed:
		return "bootstrap_failed"
	default:
		return "unknown"
	}
}

// SignalClass identifies a class of user-interaction signal observed by the
// inactivity monitor. The host application forwards its input events through
// [Engine.Signal].
type SignalClass uint8

const (
	// SignalPointerPress is a mouse/pen button press.
	SignalPointerPress SignalClass = iota
	// SignalPointerMove is pointer movement.
	SignalPointerMove
	// SignalKeyPress is a keyboard press.
	SignalKeyPress
	// SignalScroll is wheel or scrollbar movement.
	SignalScroll
	// SignalTouchStart is the start of a touch gesture.
	SignalTouchStart
	// SignalClick is a completed click/tap.
	SignalClick

	signalClassCount
)

// String returns the config-stable name of the signal class.
func (s SignalClass) String() string {
	switch s {
	case SignalPointerPress:
		return "pointer_press"
	case SignalPointerMove:
		return "pointer_move"
	case SignalKeyPress:
		return "key_press"
	case SignalScroll:
		return "scroll"
	case SignalTouchStart:
		return "touch_start"
	case SignalClick:
		return "click"
	default:
		return "unknown"
	}
}

// AllSignalClasses returns every qualifying signal class, the default
// inactivity subscription set.
func AllSignalClasses() []SignalClass {
	return []SignalClass{
		SignalPointerPress,
		SignalPointerMove,
		SignalKeyPress,
		SignalScroll,
		SignalTouchStart,
		SignalClick,
	}
}

// APIClient is the remote auth API surface the engine consumes. Package
// httpapi provides the default REST implementation; tests and alternative
// transports supply their own.
//
// Refresh relies on an out-of-band renewal credential (typically an HTTP-only
// cookie held by the transport), not on the access credential.
type APIClient interface {
	Login(ctx context.Context, username, password string) (accessToken string, user *UserProfile, err error)
	Refresh(ctx context.Context) (accessToken string, err error)
	Profile(ctx context.Context) (*UserProfile, error)
	Logout(ctx context.Context) error
}

// Clock supplies time and schedulable work to the engine. Tests inject a
// deterministic implementation through [Builder.WithClock].
type Clock = internalclock.Clock

// AuditEvent is a structured session lifecycle record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

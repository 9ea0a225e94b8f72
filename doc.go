// Package goSession is a client-resident session and authorization lifecycle
// manager. It keeps a user continuously authenticated against a remote auth API:
// acquiring and renewing a short-lived access credential, enforcing an
// inactivity-based expiry policy, and answering permission/role queries even
// while the authoritative profile is still loading.
//
// The package is designed for concurrent client workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (SessionSnapshot, UserProfile, etc.). All internal coordination —
// flow orchestration, audit dispatch, clock abstraction — lives under internal/
// and is never exported. The remote API is consumed through the [APIClient]
// interface; package httpapi supplies the default REST implementation.
//
// # What this package must NOT do
//
//   - Verify or trust the access credential's signature. Claims are decoded for
//     fallback authorization reads only; verification is the server's job.
//   - Write the access credential to durable storage unless the mirror is
//     explicitly enabled in [Config.Mirror].
//   - Let a stale callback from an earlier session episode mutate state after a
//     new login.
//
// # Concurrency contract
//
// At most one logout and at most one refresh are in flight at any instant, and
// they are mutually exclusive. Logout is idempotent and reentrant-safe. All
// other interleavings (an inactivity-triggered logout racing a user-initiated
// one, a timer tick racing RefreshNow) are safe by construction, not by a
// global lock.
package goSession

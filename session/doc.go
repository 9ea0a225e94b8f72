// Package session provides the in-memory session state aggregate and the
// process-wide credential holder consumed by the goSession engine.
//
// # State model
//
// [Store] owns the observable {credential, profile, authenticated, bootstrapping,
// profileLoading} aggregate. Mutations are applied atomically under a single
// mutex and published to subscribers as immutable [Snapshot] copies; no partial
// mutation is ever observable.
//
// # Architecture boundaries
//
// This package owns session state storage and change notification. It does NOT
// decide when state transitions happen — refresh, logout, and profile policy
// belong to the Engine and its flow functions. Only those components may write
// here; external consumers get read-only snapshots.
//
// # What this package must NOT do
//
//   - Import goSession, claims, or httpapi (no upward imports).
//   - Perform network I/O or touch durable storage.
//   - Interpret or validate the access credential it holds.
package session

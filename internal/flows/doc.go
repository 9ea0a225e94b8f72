// Package flows contains the session lifecycle flow functions executed by the
// goSession Engine.
//
// Each flow is a pure orchestration function taking a Deps struct of injected
// callbacks, so root-level wiring (state store, credential holder, API client,
// guard flag) stays out of this package and flows stay independently testable.
//
// # Architecture boundaries
//
// Flows own ordering and failure classification: what happens on a rejected
// refresh, in which order logout teardown runs, when a profile failure is
// isolated. They do NOT own state — every mutation goes through a callback the
// Engine supplies.
//
// # What this package must NOT do
//
//   - Import goSession (no upward imports).
//   - Hold state across invocations.
//   - Start goroutines; scheduling belongs to the Engine.
package flows

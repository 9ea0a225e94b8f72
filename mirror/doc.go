// Package mirror is the optional semi-durable fallback store for the access
// credential.
//
// The engine's security baseline holds the credential in memory only. When the
// mirror is enabled, the credential is additionally written to a single YAML
// file so a restarted client can warm-start without waiting for the first
// renewal round-trip. This is a deliberate, documented weakening of the
// baseline posture: anything readable from disk is readable by other local
// processes, so the mirror enforces 0600 permissions and a freshness bound.
//
// # Architecture boundaries
//
// This package owns file layout, encoding, and freshness checks. It does NOT
// decide when to mirror — the engine writes on renewal and clears on logout.
//
// # What this package must NOT do
//
//   - Store anything beyond the credential and its save time.
//   - Treat a stale or unreadable record as an error worth surfacing to users;
//     warm start is best-effort.
package mirror

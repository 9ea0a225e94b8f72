// Package httpapi is the default HTTP implementation of the goSession API
// client contract. It speaks a small REST surface:
//
//   - POST /auth/login — credentials in, access token + user out
//   - POST /auth/refresh — renewal cookie in, access token out
//   - GET  /auth/me — bearer token in, user out
//   - POST /auth/logout — renewal cookie invalidation
//
// The renewal credential travels as an HTTP-only cookie held by the client's
// cookie jar; the engine never sees it.
//
// # Architecture boundaries
//
// This package translates engine calls into HTTP requests and maps transport
// outcomes onto the sentinel errors the engine dispatches on. It does NOT
// decide lifecycle policy — retries, teardown, and state transitions all
// belong to the engine.
//
// # What this package must NOT do
//
//   - Store or inspect the access credential beyond attaching it as a header.
//   - Decode credential claims (package claims owns that).
//   - Trigger logout or refresh on its own.
package httpapi

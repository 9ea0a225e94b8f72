// Package claims extracts authorization hints from an access credential's
// payload segment without verifying its signature.
//
// # Trust model
//
// Decoded claims are a FALLBACK source of truth, used only while the
// authoritative profile has not yet loaded. The client never verifies the
// credential; verification is the server's job. Nothing decoded here may be
// treated as independently trustworthy.
//
// # Architecture boundaries
//
// This package owns payload decoding and claim-shape tolerance. It does NOT
// make authorization decisions — ordered profile/claims fallback belongs to
// the Engine's permission resolver.
//
// # What this package must NOT do
//
//   - Verify signatures or expiry.
//   - Perform I/O of any kind.
//   - Panic on malformed input; decoding failures are returned as
//     [ErrMalformed].
package claims

// Package revocation maintains the token blacklist on top of a narrow
// key-value interface with per-key TTL.
//
// Revoked tokens are stored under a stable SHA-256 key (never the raw token)
// with a TTL equal to the token's remaining lifetime, so entries self-expire
// exactly when the token would have stopped being accepted anyway. There is
// no reaper and no manual cleanup.
//
// # What this package must NOT do
//
//   - Verify token signatures — it only reads the expiry claim through the
//     injected reader.
//   - Decide fail-open versus fail-closed — store errors propagate distinctly
//     and the caller chooses.
package revocation

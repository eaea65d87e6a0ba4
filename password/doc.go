// Package password implements credential hashing, verification, and strength
// policy for the authentication kernel.
//
// # Hashers
//
// Two interchangeable [Hasher] implementations are provided. [Bcrypt]
// (the default, cost 12) emits standard bcrypt strings; [Argon2] emits PHC
// strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The package-level [Verify] routes on the encoded prefix, so stored hashes
// from both algorithms stay verifiable across a migration. If a stored hash
// was produced with weaker parameters or a different algorithm,
// [Hasher.NeedsUpgrade] reports true so the caller can re-hash at the next
// password change.
//
// # Policy
//
// [Policy.Validate] applies the strength rules (length, character classes,
// entropy estimate) and short-circuits with a specific, actionable reason.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other authkern package.
//   - Log plaintext passwords or hash parameters at runtime.
package password

// Package authkern is a stateless, multi-tenant authentication and
// authorization kernel: bcrypt/argon2id credential hashing, HS256 access
// and refresh tokens, a Redis-backed revocation blacklist, account
// lockout, and per-tenant role resolution behind a single [Kernel].
//
// The package is designed for concurrent server workloads: Kernel methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authkern is the public surface. It exposes [Kernel], [Builder],
// [Config], the repository interfaces, and value types (AuthResult,
// TokenPair, MetricsSnapshot). Persistence is the caller's: the kernel
// holds no account or role state of its own and talks to storage only
// through [AccountRepository] and [RoleRepository]. Hashing, token
// encoding, and revocation live in their own sub-packages and never
// import authkern back.
//
// # What this package must NOT do
//
//   - Embed roles or permissions in tokens. Authorization is resolved
//     from storage on every [Kernel.Authorize] call so a role change
//     takes effect without waiting for token expiry.
//   - Reveal whether an email exists. Unknown identifiers and wrong
//     passwords are the same error value and cost the same time.
//   - Trust a revoked token when the blacklist is unreachable, unless
//     the operator explicitly configured fail-open.
//
// # Performance contract
//
// Authorize is the hot path: one signature verification, one Redis
// EXISTS, one role lookup. Login additionally pays the configured hash
// cost by design; it is the ceiling on credential-stuffing throughput.
package authkern

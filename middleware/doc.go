// Package middleware exposes net/http middleware adapters that enforce
// authkern authorization on wrapped handlers.
//
// # Guards
//
//   - [Guard] — verifies the bearer token and resolves the caller's
//     role for the request tenant.
//   - [RequireRole] — [Guard] plus an allow-list of acceptable roles.
//
// Each guard reads the Authorization header and the X-Tenant-ID header,
// calls Kernel.Authorize, and injects the [authkern.AuthResult] into the
// request context for downstream handlers.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Kernel calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Kernel.Authorize.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to the Kernel).
//   - Access Redis or the database (the Kernel handles I/O).
//   - Make authorization decisions beyond pass/reject from
//     Kernel.Authorize and the configured role allow-list.
package middleware

// Package postgres provides PostgreSQL-backed implementations of the
// authkern repository interfaces: [Store] satisfies
// [authkern.AccountRepository] and [authkern.RoleRepository], and
// [AuditLog] satisfies [authkern.AuditSink].
//
// The package uses database/sql over the pgx stdlib driver so callers
// can share a single *sql.DB with the rest of their application.
//
// # Architecture boundaries
//
// This package translates repository calls into SQL. It does NOT:
//
//   - Hash or verify passwords (the kernel owns credential work).
//   - Decide lockout policy (it persists whatever counter and window
//     the kernel hands it, in one statement).
//   - Validate roles beyond the closed-set check the kernel already
//     performed.
package postgres

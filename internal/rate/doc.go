// Package rate provides Redis-backed login throttling for the
// authentication kernel. It is optional and disabled by default:
// account lockout is the primary brute-force defense, throttling is a
// volumetric backstop for credential-stuffing campaigns that rotate
// identifiers.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit.
// Keys embed a SHA-256 digest of the identifier so raw emails and IP
// addresses never appear in Redis:
//
//	<prefix>:rl:login:email:<digest>
//	<prefix>:rl:login:ip:<digest>
//
// # What this package must NOT do
//
//   - Decide lockout policy (the kernel owns per-account lockout).
//   - Be imported outside the authkern module.
package rate

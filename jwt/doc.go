// Package jwt issues and verifies the kernel's self-contained access and
// refresh tokens using a single pinned symmetric algorithm (HS256) and strict
// validation semantics.
//
// # Payload contract
//
// Tokens carry only identity claims: subject (account ID), email, default
// tenant, token use ("access" or "refresh"), issued-at, expiry, issuer, and a
// random token ID. Roles and permissions are never embedded; authorization
// data is resolved from storage at request time.
//
// # What this package must NOT do
//
//   - Accept tokens signed with "none" or any non-HS256 algorithm.
//   - Read or write any store — verification is pure computation.
//   - Import any other authkern package.
package jwt

package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrStoreUnavailable reports a failed or timed-out key-value call. It is
	// never silently treated as "not revoked"; callers decide the policy.
	ErrStoreUnavailable = errors.New("revocation store unavailable")
	// ErrUnreadableToken reports a token whose expiry claim cannot be read,
	// leaving no TTL to bound a blacklist entry with.
	ErrUnreadableToken = errors.New("token expiry unreadable")
)

// KeyValueStore is the storage contract for blacklist entries. Set must
// honor ttl; Exists must distinguish "not found" (false, nil) from a failed
// lookup.
type KeyValueStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ExpiryFunc reads a token's expiry claim without any other validation.
// The kernel's token codec satisfies it.
type ExpiryFunc func(token string) (time.Time, error)

var revokedSentinel = []byte("1")

// Store records and checks token revocations. Safe for concurrent use.
type Store struct {
	kv     KeyValueStore
	expiry ExpiryFunc
	prefix string
	now    func() time.Time
}

// NewStore builds a Store over kv. prefix namespaces the blacklist keys; an
// empty prefix defaults to "ak". now supplies the clock for TTL arithmetic;
// nil means time.Now.
func NewStore(kv KeyValueStore, expiry ExpiryFunc, prefix string, now func() time.Time) *Store {
	if prefix == "" {
		prefix = "ak"
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		kv:     kv,
		expiry: expiry,
		prefix: prefix,
		now:    now,
	}
}

// Revoke blacklists token for the remainder of its natural lifetime.
// Revoking an already-revoked token refreshes the entry and is not an error.
// An already-expired token is a no-op: nothing is left to protect.
func (s *Store) Revoke(ctx context.Context, token string) error {
	exp, err := s.expiry(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadableToken, err)
	}

	ttl := exp.Sub(s.now().UTC())
	if ttl <= 0 {
		return nil
	}

	if err := s.kv.Set(ctx, s.key(token), revokedSentinel, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether token is blacklisted. "Not found" is the common
// case and returns (false, nil); store failures return an error and never a
// silent false.
func (s *Store) IsRevoked(ctx context.Context, token string) (bool, error) {
	found, err := s.kv.Exists(ctx, s.key(token))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return found, nil
}

// key hashes the token so blacklist keys are fixed-size and the store never
// holds usable token material.
func (s *Store) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + ":revoked:" + base64.RawURLEncoding.EncodeToString(sum[:])
}

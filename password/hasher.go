package password

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput reports an empty or unusable plaintext password.
	ErrInvalidInput = errors.New("invalid password input")
	// ErrMalformedHash reports a stored hash that cannot be parsed. A benign
	// mismatch is never an error; it is a false result.
	ErrMalformedHash = errors.New("malformed password hash")
)

// Hasher is a one-way credential hash function with constant-time
// verification. Implementations are pure over byte strings and safe for
// concurrent use.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
	// NeedsUpgrade reports whether encoded was produced with weaker
	// parameters than currently configured, or by a different algorithm.
	NeedsUpgrade(encoded string) bool
}

// Verify routes to the algorithm that produced encoded, so history entries
// remain checkable after an algorithm migration. Verification needs no cost
// configuration; all parameters are self-described by the hash string.
func Verify(password, encoded string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, phcPrefix):
		return verifyArgon2(password, encoded)
	case isBcryptHash(encoded):
		return verifyBcrypt(password, encoded)
	default:
		return false, fmt.Errorf("%w: unknown format", ErrMalformedHash)
	}
}

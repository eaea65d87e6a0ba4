package password

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost targets roughly 150-350ms per hash on commodity
// hardware.
const DefaultBcryptCost = 12

// bcrypt operates on at most 72 password bytes.
const maxBcryptPasswordBytes = 72

// Bcrypt hashes credentials with the bcrypt KDF. The zero cost selects
// [DefaultBcryptCost].
type Bcrypt struct {
	cost int
}

// NewBcrypt validates the cost factor and builds a Bcrypt hasher.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Bcrypt{cost: cost}, nil
}

// Hash produces a self-describing bcrypt string with a fresh random salt.
func (b *Bcrypt) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrInvalidInput
	}
	if len(password) > maxBcryptPasswordBytes {
		return "", fmt.Errorf("%w: password exceeds %d bytes", ErrInvalidInput, maxBcryptPasswordBytes)
	}

	raw, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Verify reports whether password matches encoded. A mismatch is a false
// result, not an error; errors are reserved for unparseable hashes.
func (b *Bcrypt) Verify(password, encoded string) (bool, error) {
	return verifyBcrypt(password, encoded)
}

// NeedsUpgrade reports true when encoded carries a lower cost than the
// configured one, or is not a bcrypt hash at all.
func (b *Bcrypt) NeedsUpgrade(encoded string) bool {
	cost, err := bcrypt.Cost([]byte(encoded))
	if err != nil {
		return true
	}
	return cost < b.cost
}

func verifyBcrypt(password, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}

func isBcryptHash(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

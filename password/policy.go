package password

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultSpecialChars is the special-character set accepted by the default
// policy.
const DefaultSpecialChars = "!@#$%^&*()-_=+[]{};:,.<>?/|~"

// Policy holds the strength rules applied to new passwords. All rules must
// pass; validation short-circuits on the first failing rule.
type Policy struct {
	MinLength      int
	MinEntropyBits float64
	SpecialChars   string
}

// DefaultPolicy returns the stock rules: 12+ characters, one uppercase
// letter, one digit, one special character, 60 bits of estimated entropy.
func DefaultPolicy() *Policy {
	return &Policy{
		MinLength:      12,
		MinEntropyBits: 60,
		SpecialChars:   DefaultSpecialChars,
	}
}

// Validate reports whether password satisfies the policy. When it does not,
// reason names the specific failing rule so callers can surface actionable
// feedback instead of a generic rejection.
func (p *Policy) Validate(password string) (ok bool, reason string) {
	if utf8.RuneCountInString(password) < p.MinLength {
		return false, fmt.Sprintf("password must be at least %d characters long", p.MinLength)
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		return false, "password must contain at least one uppercase letter"
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return false, "password must contain at least one digit"
	}
	if !strings.ContainsAny(password, p.SpecialChars) {
		return false, fmt.Sprintf("password must contain at least one special character from %s", p.SpecialChars)
	}
	if bits := EstimateEntropy(password); bits < p.MinEntropyBits {
		return false, fmt.Sprintf("password is too predictable (estimated %.0f bits of entropy, need %.0f)", bits, p.MinEntropyBits)
	}
	return true, ""
}

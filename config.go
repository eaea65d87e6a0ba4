package authkern

import (
	"fmt"
	"time"

	"github.com/kernworks/authkern/password"
)

// Config defines a public type used by authkern APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token      TokenConfig
	Password   PasswordConfig
	Policy     PolicyConfig
	Lockout    LockoutConfig
	Revocation RevocationConfig
	RateLimit  RateLimitConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by authkern APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	Leeway     time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by authkern APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Algorithm  string // "bcrypt" (default) or "argon2id"
	BcryptCost int    // 0 selects the default cost
	Argon2     password.Argon2Config
}

// PolicyConfig defines a public type used by authkern APIs.
//
// PolicyConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PolicyConfig struct {
	MinLength      int
	MinEntropyBits float64
	SpecialChars   string
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig defines a public type used by authkern APIs.
//
// LockoutConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LockoutConfig struct {
	Threshold int
	Duration  time.Duration
}

// RevocationConfig defines a public type used by authkern APIs.
//
// RevocationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RevocationConfig struct {
	KeyPrefix string
	// FailOpen accepts tokens when the revocation store is unreachable.
	// The default is fail-closed: availability is sacrificed before
	// revocation guarantees.
	FailOpen bool
}

// RateLimitConfig defines a public type used by authkern APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	EnableEmailThrottle bool
	EnableIPThrottle    bool
	MaxAttempts         int
	Window              time.Duration
	KeyPrefix           string
}

// AuditConfig defines a public type used by authkern APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authkern APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. Token.Secret is the
// only field without a usable default and must be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  7 * 24 * time.Hour,
			RefreshTTL: 30 * 24 * time.Hour,
			Issuer:     "authkern",
			Leeway:     0,
		},
		Password: PasswordConfig{
			Algorithm:  "bcrypt",
			BcryptCost: password.DefaultBcryptCost,
			Argon2:     password.DefaultArgon2Config(),
		},
		Policy: PolicyConfig{
			MinLength:      12,
			MinEntropyBits: 60,
			SpecialChars:   password.DefaultSpecialChars,
		},
		Lockout: LockoutConfig{
			Threshold: 5,
			Duration:  15 * time.Minute,
		},
		Revocation: RevocationConfig{
			KeyPrefix: "ak",
			FailOpen:  false,
		},
		RateLimit: RateLimitConfig{
			EnableEmailThrottle: false,
			EnableIPThrottle:    false,
			MaxAttempts:         20,
			Window:              15 * time.Minute,
			KeyPrefix:           "ak",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Token
	if len(c.Token.Secret) < 32 {
		return fmt.Errorf("%w: Token Secret must be at least 32 bytes", ErrConfigInvalid)
	}
	if c.Token.AccessTTL <= 0 {
		return fmt.Errorf("%w: Token AccessTTL must be > 0", ErrConfigInvalid)
	}
	if c.Token.RefreshTTL <= 0 {
		return fmt.Errorf("%w: Token RefreshTTL must be > 0", ErrConfigInvalid)
	}
	if c.Token.RefreshTTL < c.Token.AccessTTL {
		return fmt.Errorf("%w: Token RefreshTTL must be >= AccessTTL", ErrConfigInvalid)
	}
	if c.Token.Leeway < 0 {
		return fmt.Errorf("%w: Token Leeway must be >= 0", ErrConfigInvalid)
	}

	// Password
	switch c.Password.Algorithm {
	case "bcrypt":
		if c.Password.BcryptCost != 0 && (c.Password.BcryptCost < 10 || c.Password.BcryptCost > 31) {
			return fmt.Errorf("%w: Password BcryptCost must be between 10 and 31", ErrConfigInvalid)
		}
	case "argon2id":
		if c.Password.Argon2.MemoryKB < 8*1024 {
			return fmt.Errorf("%w: Password Argon2 MemoryKB must be >= 8192", ErrConfigInvalid)
		}
		if c.Password.Argon2.Time < 1 {
			return fmt.Errorf("%w: Password Argon2 Time must be >= 1", ErrConfigInvalid)
		}
		if c.Password.Argon2.Parallelism < 1 {
			return fmt.Errorf("%w: Password Argon2 Parallelism must be >= 1", ErrConfigInvalid)
		}
		if c.Password.Argon2.SaltLength < 16 {
			return fmt.Errorf("%w: Password Argon2 SaltLength must be >= 16", ErrConfigInvalid)
		}
		if c.Password.Argon2.KeyLength < 16 {
			return fmt.Errorf("%w: Password Argon2 KeyLength must be >= 16", ErrConfigInvalid)
		}
	default:
		return fmt.Errorf("%w: Password Algorithm must be \"bcrypt\" or \"argon2id\"", ErrConfigInvalid)
	}

	// Policy
	if c.Policy.MinLength < 8 {
		return fmt.Errorf("%w: Policy MinLength must be >= 8", ErrConfigInvalid)
	}
	if c.Policy.MinEntropyBits < 0 {
		return fmt.Errorf("%w: Policy MinEntropyBits must be >= 0", ErrConfigInvalid)
	}
	if c.Policy.SpecialChars == "" {
		return fmt.Errorf("%w: Policy SpecialChars must not be empty", ErrConfigInvalid)
	}

	// Lockout
	if c.Lockout.Threshold < 1 {
		return fmt.Errorf("%w: Lockout Threshold must be >= 1", ErrConfigInvalid)
	}
	if c.Lockout.Duration <= 0 {
		return fmt.Errorf("%w: Lockout Duration must be > 0", ErrConfigInvalid)
	}

	// Rate limiting
	if c.RateLimit.EnableEmailThrottle || c.RateLimit.EnableIPThrottle {
		if c.RateLimit.MaxAttempts <= 0 {
			return fmt.Errorf("%w: RateLimit MaxAttempts must be > 0 when throttling is enabled", ErrConfigInvalid)
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("%w: RateLimit Window must be > 0 when throttling is enabled", ErrConfigInvalid)
		}
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return fmt.Errorf("%w: Audit BufferSize must be > 0 when audit is enabled", ErrConfigInvalid)
		}
	}

	return nil
}

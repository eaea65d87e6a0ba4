package authkern

import (
	"time"

	"github.com/kernworks/authkern/password"
)

type SecurityReport struct {
	PasswordAlgorithm    string
	BcryptCost           int
	Argon2               PasswordConfigReport
	AccessTTL            time.Duration
	RefreshTTL           time.Duration
	Leeway               time.Duration
	Issuer               string
	PolicyMinLength      int
	PolicyMinEntropyBits float64
	LockoutThreshold     int
	LockoutDuration      time.Duration
	RevocationFailOpen   bool
	RateLimitingActive   bool
	AuditEnabled         bool
	MetricsEnabled       bool
}

type PasswordConfigReport struct {
	MemoryKB    uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// SecurityReport summarizes the kernel's effective security posture for
// operator dashboards and startup logs. It never includes secrets.
func (k *Kernel) SecurityReport() SecurityReport {
	if k == nil {
		return SecurityReport{}
	}

	report := SecurityReport{
		PasswordAlgorithm:    k.config.Password.Algorithm,
		AccessTTL:            k.config.Token.AccessTTL,
		RefreshTTL:           k.config.Token.RefreshTTL,
		Leeway:               k.config.Token.Leeway,
		Issuer:               k.config.Token.Issuer,
		PolicyMinLength:      k.config.Policy.MinLength,
		PolicyMinEntropyBits: k.config.Policy.MinEntropyBits,
		LockoutThreshold:     k.config.Lockout.Threshold,
		LockoutDuration:      k.config.Lockout.Duration,
		RevocationFailOpen:   k.config.Revocation.FailOpen,
		RateLimitingActive:   k.rateLimiter != nil,
		AuditEnabled:         k.config.Audit.Enabled,
		MetricsEnabled:       k.config.Metrics.Enabled,
	}

	switch k.config.Password.Algorithm {
	case "bcrypt":
		report.BcryptCost = k.config.Password.BcryptCost
		if report.BcryptCost == 0 {
			report.BcryptCost = password.DefaultBcryptCost
		}
	case "argon2id":
		report.Argon2 = PasswordConfigReport{
			MemoryKB:    k.config.Password.Argon2.MemoryKB,
			Time:        k.config.Password.Argon2.Time,
			Parallelism: k.config.Password.Argon2.Parallelism,
			SaltLength:  k.config.Password.Argon2.SaltLength,
			KeyLength:   k.config.Password.Argon2.KeyLength,
		}
	}

	return report
}

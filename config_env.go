package authkern

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigFromEnv returns [DefaultConfig] overlaid with AUTHKERN_*
// environment variables. Unset and empty variables leave the default in
// place; unparseable values return [ErrConfigInvalid] naming the
// offending variable. The result is not validated here; callers pass it
// to [Builder.WithConfig] and validation runs in [Builder.Build].
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := lookupEnv("AUTHKERN_TOKEN_SECRET"); ok {
		cfg.Token.Secret = []byte(v)
	}
	if v, ok := lookupEnv("AUTHKERN_TOKEN_ISSUER"); ok {
		cfg.Token.Issuer = v
	}
	if v, ok := lookupEnv("AUTHKERN_PASSWORD_ALGORITHM"); ok {
		cfg.Password.Algorithm = v
	}
	if v, ok := lookupEnv("AUTHKERN_REVOCATION_KEY_PREFIX"); ok {
		cfg.Revocation.KeyPrefix = v
	}
	if v, ok := lookupEnv("AUTHKERN_RATE_LIMIT_KEY_PREFIX"); ok {
		cfg.RateLimit.KeyPrefix = v
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"AUTHKERN_TOKEN_ACCESS_TTL", &cfg.Token.AccessTTL},
		{"AUTHKERN_TOKEN_REFRESH_TTL", &cfg.Token.RefreshTTL},
		{"AUTHKERN_TOKEN_LEEWAY", &cfg.Token.Leeway},
		{"AUTHKERN_LOCKOUT_DURATION", &cfg.Lockout.Duration},
		{"AUTHKERN_RATE_LIMIT_WINDOW", &cfg.RateLimit.Window},
	}
	for _, d := range durations {
		if err := envDuration(d.key, d.dst); err != nil {
			return Config{}, err
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"AUTHKERN_PASSWORD_BCRYPT_COST", &cfg.Password.BcryptCost},
		{"AUTHKERN_POLICY_MIN_LENGTH", &cfg.Policy.MinLength},
		{"AUTHKERN_LOCKOUT_THRESHOLD", &cfg.Lockout.Threshold},
		{"AUTHKERN_RATE_LIMIT_MAX_ATTEMPTS", &cfg.RateLimit.MaxAttempts},
		{"AUTHKERN_AUDIT_BUFFER_SIZE", &cfg.Audit.BufferSize},
	}
	for _, i := range ints {
		if err := envInt(i.key, i.dst); err != nil {
			return Config{}, err
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"AUTHKERN_REVOCATION_FAIL_OPEN", &cfg.Revocation.FailOpen},
		{"AUTHKERN_RATE_LIMIT_EMAIL_THROTTLE", &cfg.RateLimit.EnableEmailThrottle},
		{"AUTHKERN_RATE_LIMIT_IP_THROTTLE", &cfg.RateLimit.EnableIPThrottle},
		{"AUTHKERN_AUDIT_ENABLED", &cfg.Audit.Enabled},
		{"AUTHKERN_AUDIT_DROP_IF_FULL", &cfg.Audit.DropIfFull},
		{"AUTHKERN_METRICS_ENABLED", &cfg.Metrics.Enabled},
		{"AUTHKERN_METRICS_LATENCY_HISTOGRAMS", &cfg.Metrics.EnableLatencyHistograms},
	}
	for _, b := range bools {
		if err := envBool(b.key, b.dst); err != nil {
			return Config{}, err
		}
	}

	if err := envFloat("AUTHKERN_POLICY_MIN_ENTROPY_BITS", &cfg.Policy.MinEntropyBits); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfigInvalid, key, err)
	}
	*dst = d
	return nil
}

func envInt(key string, dst *int) error {
	v, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfigInvalid, key, err)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfigInvalid, key, err)
	}
	*dst = b
	return nil
}

func envFloat(key string, dst *float64) error {
	v, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfigInvalid, key, err)
	}
	*dst = f
	return nil
}

package authkern

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kernworks/authkern/internal/rate"
	"github.com/kernworks/authkern/jwt"
	"github.com/kernworks/authkern/password"
	"github.com/kernworks/authkern/revocation"
)

// Builder defines a public type used by authkern APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	kv     revocation.KeyValueStore

	accounts  AccountRepository
	roles     RoleRepository
	auditSink AuditSink
	clock     func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithKeyValueStore supplies a revocation backend other than Redis.
// Takes precedence over [Builder.WithRedis] for revocation storage; the
// login throttle still requires a Redis client.
func (b *Builder) WithKeyValueStore(kv revocation.KeyValueStore) *Builder {
	b.kv = kv
	return b
}

// WithAccountRepository describes the withaccountrepository operation and its observable behavior.
//
// WithAccountRepository may return an error when input validation, dependency calls, or security checks fail.
// WithAccountRepository does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAccountRepository(repo AccountRepository) *Builder {
	b.accounts = repo
	return b
}

// WithRoleRepository describes the withrolerepository operation and its observable behavior.
//
// WithRoleRepository may return an error when input validation, dependency calls, or security checks fail.
// WithRoleRepository does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRoleRepository(repo RoleRepository) *Builder {
	b.roles = repo
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock injects the time source used for lockout windows, token
// lifetimes, and revocation TTLs. Defaults to time.Now; tests pin it.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Kernel, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.accounts == nil {
		return nil, errors.New("account repository required")
	}
	if b.roles == nil {
		return nil, errors.New("role repository required")
	}

	kv := b.kv
	if kv == nil && b.redis != nil {
		kv = revocation.NewRedisKV(b.redis)
	}
	if kv == nil {
		return nil, errors.New("redis client or key-value store required")
	}

	throttleWanted := cfg.RateLimit.EnableEmailThrottle || cfg.RateLimit.EnableIPThrottle
	if throttleWanted && b.redis == nil {
		return nil, errors.New("login throttling requires redis client")
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	// -------- TOKEN CODEC --------
	codec, err := jwt.New(jwt.Config{
		Secret:     cloneBytes(cfg.Token.Secret),
		AccessTTL:  cfg.Token.AccessTTL,
		RefreshTTL: cfg.Token.RefreshTTL,
		Issuer:     cfg.Token.Issuer,
		Leeway:     cfg.Token.Leeway,
		Now:        clock,
	})
	if err != nil {
		return nil, err
	}

	// -------- CREDENTIAL HASHER --------
	var hasher password.Hasher
	switch cfg.Password.Algorithm {
	case "bcrypt":
		hasher, err = password.NewBcrypt(cfg.Password.BcryptCost)
	case "argon2id":
		hasher, err = password.NewArgon2(cfg.Password.Argon2)
	default:
		err = errors.New("unsupported password algorithm")
	}
	if err != nil {
		return nil, err
	}

	// The decoy hash equalizes unknown-identifier timing. It is derived
	// from a random value so no input can ever match it.
	decoyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	kernel := &Kernel{
		config:   cfg,
		accounts: b.accounts,
		roles:    b.roles,
		revocations: revocation.NewStore(
			kv,
			codec.Expiry,
			cfg.Revocation.KeyPrefix,
			clock,
		),
		hasher: hasher,
		policy: &password.Policy{
			MinLength:      cfg.Policy.MinLength,
			MinEntropyBits: cfg.Policy.MinEntropyBits,
			SpecialChars:   cfg.Policy.SpecialChars,
		},
		codec:     codec,
		decoyHash: decoyHash,
		now:       clock,
	}

	if throttleWanted {
		kernel.rateLimiter = rate.New(b.redis, rate.Config{
			EnableEmailThrottle: cfg.RateLimit.EnableEmailThrottle,
			EnableIPThrottle:    cfg.RateLimit.EnableIPThrottle,
			MaxAttempts:         cfg.RateLimit.MaxAttempts,
			Window:              cfg.RateLimit.Window,
			KeyPrefix:           cfg.RateLimit.KeyPrefix,
		})
	}
	kernel.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	kernel.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return kernel, nil
}

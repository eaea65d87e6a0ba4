package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minSecretBytes = 32

// Token-use claim values. A refresh token presented where an access token is
// expected (or vice versa) fails verification as malformed.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

var (
	// ErrConfig reports an invalid codec configuration at construction time.
	ErrConfig = errors.New("invalid token codec configuration")
	// ErrTokenExpired reports a token whose expiry is in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed reports a token that is not a structurally valid signed payload.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenSignature reports a token whose signature or signing algorithm is not acceptable.
	ErrTokenSignature = errors.New("token signature invalid")
)

// Identity is the minimal account view embedded in a token payload.
type Identity struct {
	Subject  string
	Email    string
	TenantID string
}

// Claims is the decoded token payload. It deliberately has no role or
// permission fields.
type Claims struct {
	Email    string `json:"email,omitempty"`
	TenantID string `json:"tid,omitempty"`
	TokenUse string `json:"use"`
	jwt.RegisteredClaims
}

// Config carries the codec construction parameters.
//
// Secret must be at least 32 bytes. AccessTTL and RefreshTTL must be
// positive. Now is the clock source; it defaults to time.Now and exists so
// expiry boundaries are testable to the second.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	Leeway     time.Duration
	Now        func() time.Time
}

// Codec signs and verifies token payloads. Safe for concurrent use after
// construction.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	leeway     time.Duration
	now        func() time.Time
}

// New validates cfg and builds a Codec. Misconfiguration is reported here,
// never per call.
func New(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, fmt.Errorf("%w: secret must be at least %d bytes", ErrConfig, minSecretBytes)
	}
	if cfg.AccessTTL <= 0 {
		return nil, fmt.Errorf("%w: access TTL must be positive", ErrConfig)
	}
	if cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("%w: refresh TTL must be positive", ErrConfig)
	}
	if cfg.Leeway < 0 {
		return nil, fmt.Errorf("%w: leeway must not be negative", ErrConfig)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Codec{
		secret:     secret,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		issuer:     cfg.Issuer,
		leeway:     cfg.Leeway,
		now:        now,
	}, nil
}

// IssueAccess signs an access token for id with the configured access TTL.
func (c *Codec) IssueAccess(id Identity) (string, error) {
	return c.issue(id, TokenUseAccess, c.accessTTL)
}

// IssueRefresh signs a refresh token for id with the configured refresh TTL.
func (c *Codec) IssueRefresh(id Identity) (string, error) {
	return c.issue(id, TokenUseRefresh, c.refreshTTL)
}

func (c *Codec) issue(id Identity, use string, ttl time.Duration) (string, error) {
	if id.Subject == "" {
		return "", errors.New("token subject is required")
	}

	now := c.now().UTC()
	claims := &Claims{
		Email:    id.Email,
		TenantID: id.TenantID,
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify decodes tokenStr, checks signature and expiry, and returns the
// claims. Any token use is accepted. Failures map to exactly one of
// [ErrTokenExpired], [ErrTokenSignature], or [ErrTokenMalformed].
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	return c.verify(tokenStr, "")
}

// VerifyAccess is Verify restricted to access tokens.
func (c *Codec) VerifyAccess(tokenStr string) (*Claims, error) {
	return c.verify(tokenStr, TokenUseAccess)
}

// VerifyRefresh is Verify restricted to refresh tokens.
func (c *Codec) VerifyRefresh(tokenStr string) (*Claims, error) {
	return c.verify(tokenStr, TokenUseRefresh)
}

func (c *Codec) verify(tokenStr, wantUse string) (*Claims, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithLeeway(c.leeway),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, claims, c.keyfunc, opts...)
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenMalformed)
	}
	if wantUse != "" && claims.TokenUse != wantUse {
		return nil, fmt.Errorf("%w: unexpected token use %q", ErrTokenMalformed, claims.TokenUse)
	}

	return claims, nil
}

// keyfunc re-checks the signing method even though the parser already pins
// valid methods, so a parser misconfiguration can never select a foreign key.
func (c *Codec) keyfunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return c.secret, nil
}

// Expiry reads the exp claim without verifying the signature. Revocation
// uses it to bound blacklist TTLs; it must never gate authorization.
func (c *Codec) Expiry(tokenStr string) (time.Time, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: missing expiry", ErrTokenMalformed)
	}
	return claims.ExpiresAt.Time, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		// Remaining parser failures (wrong issuer, future iat, bad claim
		// types) are all payload problems.
		return ErrTokenMalformed
	}
}

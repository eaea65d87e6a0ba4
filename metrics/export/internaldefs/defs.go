package internaldefs

import (
	authkern "github.com/kernworks/authkern"
)

// CounterDef defines a public type used by authkern APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authkern.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by authkern APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authkern.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication kernel.
var CounterDefs = []CounterDef{
	{ID: authkern.MetricLoginSuccess, Name: "authkern_login_success_total", Help: "Successful login attempts."},
	{ID: authkern.MetricLoginFailure, Name: "authkern_login_failure_total", Help: "Failed login attempts."},
	{ID: authkern.MetricLoginRateLimited, Name: "authkern_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: authkern.MetricAccountLocked, Name: "authkern_account_locked_total", Help: "Accounts locked by the failure threshold."},
	{ID: authkern.MetricAccountUnlocked, Name: "authkern_account_unlocked_total", Help: "Accounts unlocked by operator action."},
	{ID: authkern.MetricRefreshSuccess, Name: "authkern_refresh_success_total", Help: "Successful refresh exchanges."},
	{ID: authkern.MetricRefreshFailure, Name: "authkern_refresh_failure_total", Help: "Failed refresh exchanges."},
	{ID: authkern.MetricAuthorizeSuccess, Name: "authkern_authorize_success_total", Help: "Authorized requests."},
	{ID: authkern.MetricAuthorizeDenied, Name: "authkern_authorize_denied_total", Help: "Denied authorization attempts."},
	{ID: authkern.MetricTokenIssued, Name: "authkern_token_issued_total", Help: "Issued access and refresh tokens."},
	{ID: authkern.MetricTokenRevoked, Name: "authkern_token_revoked_total", Help: "Tokens added to the revocation blacklist."},
	{ID: authkern.MetricLogout, Name: "authkern_logout_total", Help: "Logout operations."},
	{ID: authkern.MetricPasswordChangeSuccess, Name: "authkern_password_change_success_total", Help: "Successful password changes."},
	{ID: authkern.MetricPasswordChangeFailure, Name: "authkern_password_change_failure_total", Help: "Failed password changes."},
}

// HistogramDefs is an exported constant or variable used by the authentication kernel.
var HistogramDefs = []HistogramDef{
	{ID: authkern.MetricAuthorizeLatency, Name: "authkern_authorize_latency_seconds", Help: "Authorize latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication kernel.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the authentication kernel.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

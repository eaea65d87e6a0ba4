package rate

import "errors"

var (
	// ErrRateLimited is an exported constant or variable used by the authentication kernel.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable is an exported constant or variable used by the authentication kernel.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

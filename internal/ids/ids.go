// Package ids generates unique identifiers for audit events.
//
// IDs are ULIDs: lexicographically sortable, timestamp-prefixed, and
// safe to expose in logs. Generation is guarded by a mutex because the
// monotonic entropy source is not safe for concurrent use.
//
// # What this package must NOT do
//
//   - Be imported outside the authkern module.
//   - Generate identifiers for accounts or tenants (callers own those).
package ids

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh ULID string. If the entropy source fails it falls
// back to a timestamp-only identifier rather than returning an error,
// because callers emit best-effort audit events and must not abort.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), entropy)
	if err != nil {
		return fmt.Sprintf("%016x", time.Now().UnixNano())
	}
	return id.String()
}

// Package id generates ULIDs for append-only rows (lots, ledger entries).
// Within a process IDs are strictly increasing, so ascending ID order is
// creation order, which is the tie-break the FIFO ordering relies on.
package id

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// New returns a ULID string (26 chars, time-sortable).
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}

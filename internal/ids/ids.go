package ids

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// User and event identifiers are ULIDs: lexicographic order follows
// creation time, which keeps catalog listings and log output naturally
// sorted without a separate sequence column.
var (
	mu     sync.Mutex
	source = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a fresh identifier.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), source).String()
}

package feedback

import (
	"sync"
	"time"
)

var (
	stampMu   sync.Mutex
	lastStamp time.Time
)

// nextStamp returns a UTC timestamp strictly after the previous one handed
// out by this process, at microsecond precision (what Postgres keeps), so
// created_at ordering matches insertion order.
func nextStamp() time.Time {
	stampMu.Lock()
	defer stampMu.Unlock()
	now := time.Now().UTC().Truncate(time.Microsecond)
	if !now.After(lastStamp) {
		now = lastStamp.Add(time.Microsecond)
	}
	lastStamp = now
	return now
}

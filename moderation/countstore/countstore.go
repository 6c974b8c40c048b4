// Daily action counters backing flag-creation rate limits.
//
// Counters are best-effort abuse mitigation, not a security boundary: the
// redis implementation is atomic per increment, but read-then-increment
// sequences in callers can still under-count under concurrent bursts.
package countstore

import (
	"context"
	"fmt"
	"time"
)

type CountStore interface {
	// GetDayCount returns the counter value for the current UTC calendar day.
	GetDayCount(ctx context.Context, name, val string) (int, error)
	// Increment bumps the counter for the current UTC calendar day.
	Increment(ctx context.Context, name, val string) error
}

func dayBucket(name, val string) string {
	t := time.Now().UTC().Format(time.DateOnly)
	return fmt.Sprintf("%s/%s/%s", name, val, t)
}

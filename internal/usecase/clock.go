package usecase

import "time"

// Clock returns the current time.
type Clock func() time.Time

// SystemClock returns UTC time truncated to the microsecond precision PostgreSQL stores.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

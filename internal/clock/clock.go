// Package clock abstracts time for the workflow engine's step pacing and the
// call gateway's retry backoff, so both can be tested deterministically.
package clock

import (
	"time"
)

// Clock supplies current time and delayed wakeups.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// System returns the wall clock.
func System() Clock { return systemClock{} }

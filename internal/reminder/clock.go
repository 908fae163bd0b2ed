package reminder

import "time"

// Stopper cancels a pending callback.
type Stopper interface {
	Stop() bool
}

// Clock is the time source of the Scheduler.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

// RealClock uses the time package.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) AfterFunc(d time.Duration, f func()) Stopper { return time.AfterFunc(d, f) }

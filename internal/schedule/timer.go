package schedule

import "time"

// Handle is a registration on a Timer. Stop is safe to call any number of
// times, before or after the callback ran.
type Handle interface {
	Stop()
}

// Timer invokes a callback at a point in time. Callbacks for past times run
// as soon as possible.
type Timer interface {
	At(at time.Time, fn func()) (Handle, error)
}

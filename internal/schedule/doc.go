// Package schedule keeps the registry of pending one-shot message jobs.
//
// A job is created by Registry.Schedule, armed on a Timer, and leaves the
// registry exactly once: either the timer fires and delivery is attempted
// (successful or not), or Registry.Cancel removes it first.
//
// Cancel racing an in-flight delivery is not prevented: the timer has
// already fired, so stopping the handle does nothing, and both paths try to
// remove the same id. The second removal is a silent no-op. In that window
// Cancel reports success even though the message may still be delivered.
package schedule

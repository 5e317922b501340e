// Package clock provides the scheduling abstraction that drives simulated
// processing time. The engine only schedules callbacks at points in time; the
// implementation decides whether those points are reached by the wall clock
// or by explicit advancement.
package clock

import "time"

// Scheduler schedules callbacks to run at specific times.
type Scheduler interface {
	// Now returns the current time as seen by the scheduler.
	Now() time.Time

	// Schedule registers f to run at time at. It returns an event ID that can
	// be passed to Cancel.
	Schedule(at time.Time, f func()) (id string)

	// Cancel prevents a scheduled callback from running. It is a no-op if the
	// ID is unknown or the callback already ran.
	Cancel(id string)
}

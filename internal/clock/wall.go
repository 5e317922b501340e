package clock

import (
	"fmt"
	"sync"
	"time"
)

// Wall is a Scheduler backed by the system clock. Callbacks run on their own
// timer goroutines, so callers must serialize any shared state themselves.
type Wall struct {
	mu      sync.Mutex
	counter uint64
	timers  map[string]*time.Timer
}

// NewWall creates a wall-clock scheduler.
func NewWall() *Wall {
	return &Wall{timers: make(map[string]*time.Timer)}
}

// Now returns the current wall-clock time.
func (w *Wall) Now() time.Time {
	return time.Now()
}

// Schedule arranges for f to run once at time at. Times in the past run
// immediately on a new goroutine.
func (w *Wall) Schedule(at time.Time, f func()) (id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.counter++
	id = fmt.Sprintf("wall-ev-%d", w.counter)

	w.timers[id] = time.AfterFunc(time.Until(at), func() {
		w.mu.Lock()
		_, live := w.timers[id]
		delete(w.timers, id)
		w.mu.Unlock()

		if live {
			f()
		}
	})
	return id
}

// Cancel stops a pending timer.
func (w *Wall) Cancel(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, ok := w.timers[id]
	if !ok {
		return
	}
	t.Stop()
	delete(w.timers, id)
}

// Pending returns the number of timers that have not fired or been cancelled.
func (w *Wall) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}

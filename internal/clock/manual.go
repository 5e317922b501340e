package clock

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler whose time only moves when Advance or AdvanceTo is
// called. Due callbacks run synchronously on the advancing goroutine, in
// scheduled-time order and, for equal times, in scheduling order.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	counter uint64

	// Events ordered by 'when' (earliest first).
	events []*manualEvent
	index  map[string]*manualEvent
}

type manualEvent struct {
	id        string
	when      time.Time
	f         func()
	cancelled bool
}

// NewManual creates a manual scheduler starting at the given time.
func NewManual(start time.Time) *Manual {
	return &Manual{
		now:   start,
		index: make(map[string]*manualEvent),
	}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Schedule registers a callback to run at the specified time.
func (m *Manual) Schedule(at time.Time, f func()) (id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	id = fmt.Sprintf("manual-ev-%d", m.counter)
	ev := &manualEvent{id: id, when: at, f: f}

	// Insert after any events already scheduled for the same instant.
	idx := sort.Search(len(m.events), func(i int) bool {
		return m.events[i].when.After(at)
	})
	m.events = append(m.events, nil)
	copy(m.events[idx+1:], m.events[idx:])
	m.events[idx] = ev

	m.index[id] = ev
	return id
}

// Cancel marks a scheduled callback as cancelled.
func (m *Manual) Cancel(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, ok := m.index[id]
	if !ok {
		return
	}
	ev.cancelled = true
	delete(m.index, id)
	// Removal from m.events is lazy; RunDue skips cancelled events.
}

// Pending returns the number of callbacks still waiting to run.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.index)
}

// RunDue executes all callbacks whose time is <= Now. Callbacks scheduled by
// a running callback are picked up in the same pass if they are already due.
func (m *Manual) RunDue() {
	for {
		m.mu.Lock()
		if len(m.events) == 0 {
			m.mu.Unlock()
			return
		}

		ev := m.events[0]
		if ev.when.After(m.now) {
			m.mu.Unlock()
			return
		}
		m.events = m.events[1:]

		if ev.cancelled {
			m.mu.Unlock()
			continue
		}
		delete(m.index, ev.id)
		callback := ev.f
		m.mu.Unlock()

		// Execute callback outside the lock.
		if callback != nil {
			callback()
		}
	}
}

// AdvanceTo moves time forward to t, running every callback that becomes due
// along the way with Now reporting that callback's scheduled time. Time never
// moves backwards.
func (m *Manual) AdvanceTo(t time.Time) {
	for {
		m.mu.Lock()
		if t.Before(m.now) {
			m.mu.Unlock()
			return
		}
		next, ok := m.nextLocked()
		if !ok || next.After(t) {
			m.now = t
			m.mu.Unlock()
			m.RunDue()
			return
		}
		if next.After(m.now) {
			m.now = next
		}
		m.mu.Unlock()

		m.RunDue()
	}
}

// Advance moves time forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.AdvanceTo(m.Now().Add(d))
}

// nextLocked returns the time of the earliest live event.
// Caller must hold m.mu.
func (m *Manual) nextLocked() (time.Time, bool) {
	for _, ev := range m.events {
		if !ev.cancelled {
			return ev.when, true
		}
	}
	return time.Time{}, false
}

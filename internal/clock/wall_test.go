package clock

import (
	"testing"
	"time"
)

func TestWallRunsScheduledCallback(t *testing.T) {
	w := NewWall()
	done := make(chan struct{})

	w.Schedule(w.Now().Add(10*time.Millisecond), func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback did not run")
	}
}

func TestWallCancel(t *testing.T) {
	w := NewWall()
	ran := make(chan struct{}, 1)

	id := w.Schedule(w.Now().Add(50*time.Millisecond), func() { ran <- struct{}{} })
	w.Cancel(id)

	if w.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", w.Pending())
	}

	select {
	case <-ran:
		t.Error("cancelled callback ran")
	case <-time.After(150 * time.Millisecond):
	}
}

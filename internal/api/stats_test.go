package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fauzi-lee/se-take-home-assignment/internal/model"
)

func TestGetStatsEmpty(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/stats")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	stats := decodeBody[statsResponse](t, resp.Body)

	// The seed unit is the only journal entry.
	if stats.TotalEvents != 1 {
		t.Errorf("total_events = %d, want 1", stats.TotalEvents)
	}
	if stats.AvgTurnaroundMS != 0 {
		t.Errorf("avg_turnaround_ms = %f, want 0", stats.AvgTurnaroundMS)
	}
	if stats.IdleUnits != 1 || stats.BusyUnits != 0 {
		t.Errorf("idle/busy = %d/%d, want 1/0", stats.IdleUnits, stats.BusyUnits)
	}
}

func TestGetStatsPopulated(t *testing.T) {
	srv, clk := newTestServerWithClock(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	// Order 1 runs 0s..10s, order 2 waits and runs 10s..20s.
	for _, body := range []string{`{"priority":"standard"}`, `{"priority":"expedited"}`, `{"priority":"standard"}`} {
		resp := postOrder(t, ts.URL, body)
		resp.Body.Close()
	}
	clk.Advance(20 * time.Second)

	resp, err := http.Get(ts.URL + "/v1/stats")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	stats := decodeBody[statsResponse](t, resp.Body)

	if stats.CompletedByPriority[model.PriorityStandard] != 1 || stats.CompletedByPriority[model.PriorityExpedited] != 1 {
		t.Errorf("completed_by_priority = %v, want 1 each", stats.CompletedByPriority)
	}
	if stats.ByKind[model.EventOrderEnqueued] != 3 {
		t.Errorf("enqueued = %d, want 3", stats.ByKind[model.EventOrderEnqueued])
	}
	if stats.AvgTurnaroundMS != 15000 {
		t.Errorf("avg_turnaround_ms = %f, want 15000", stats.AvgTurnaroundMS)
	}
	if stats.Pending != 0 || stats.BusyUnits != 1 || stats.CompletedHeld != 2 {
		t.Errorf("live = pending %d busy %d held %d, want 0/1/2", stats.Pending, stats.BusyUnits, stats.CompletedHeld)
	}
}

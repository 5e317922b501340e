package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fauzi-lee/se-take-home-assignment/internal/engine"
	"github.com/fauzi-lee/se-take-home-assignment/internal/model"
)

func TestGetState(t *testing.T) {
	srv, clk := newTestServerWithClock(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp := postOrder(t, ts.URL, "")
	resp.Body.Close()
	clk.Advance(2500 * time.Millisecond)

	resp = doRequest(t, http.MethodGet, ts.URL+"/v1/state")
	defer resp.Body.Close()

	state := decodeBody[engine.State](t, resp.Body)
	if len(state.Units) != 1 {
		t.Fatalf("units = %d, want 1", len(state.Units))
	}
	u := state.Units[0]
	if u.State != model.UnitBusy || u.CurrentOrder == nil || u.CurrentOrder.ID != 1 {
		t.Errorf("unit = %+v, want busy with order 1", u)
	}
	if u.Progress != 25 {
		t.Errorf("progress = %v, want 25", u.Progress)
	}
	if !state.Now.Equal(testEpoch.Add(2500 * time.Millisecond)) {
		t.Errorf("now = %v, want epoch+2.5s", state.Now)
	}
}

func TestReset(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	for range 3 {
		resp := postOrder(t, ts.URL, "")
		resp.Body.Close()
	}

	resp := doRequest(t, http.MethodPost, ts.URL+"/v1/reset")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	state := decodeBody[engine.State](t, resp.Body)
	if len(state.Pending) != 0 || len(state.Completed) != 0 {
		t.Errorf("pending/completed = %d/%d, want empty", len(state.Pending), len(state.Completed))
	}
	if len(state.Units) != 1 || !state.Units[0].Idle() {
		t.Errorf("units = %+v, want one idle unit", state.Units)
	}
	// Identifiers keep counting across a reset.
	if state.Units[0].ID != 2 {
		t.Errorf("unit id = %d, want 2", state.Units[0].ID)
	}
}

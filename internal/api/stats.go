package api

import (
	"net/http"

	"github.com/fauzi-lee/se-take-home-assignment/internal/model"
)

// statsResponse is the JSON response for GET /v1/stats. Journal figures
// cover everything since the store was opened; live figures come from the
// engine.
type statsResponse struct {
	TotalEvents         int            `json:"total_events"`
	ByKind              map[string]int `json:"by_kind"`
	CompletedByPriority map[string]int `json:"completed_by_priority"`
	AvgTurnaroundMS     float64        `json:"avg_turnaround_ms"`
	RequeuedOrders      int            `json:"requeued_orders"`
	Pending             int            `json:"pending"`
	IdleUnits           int            `json:"idle_units"`
	BusyUnits           int            `json:"busy_units"`
	CompletedHeld       int            `json:"completed_held"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		s.logger.Error("get journal stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	state := s.engine.Snapshot()
	resp := statsResponse{
		TotalEvents:         stats.TotalEvents,
		ByKind:              stats.CountByKind,
		CompletedByPriority: stats.CompletedByPrio,
		AvgTurnaroundMS:     stats.AvgTurnaroundMS,
		RequeuedOrders:      stats.RequeuedOrderCount,
		Pending:             len(state.Pending),
		CompletedHeld:       len(state.Completed),
	}
	for _, u := range state.Units {
		if u.State == model.UnitIdle {
			resp.IdleUnits++
		} else {
			resp.BusyUnits++
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

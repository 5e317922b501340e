package api

import (
	"net/http"

	"github.com/fauzi-lee/se-take-home-assignment/internal/model"
)

type unitsResponse struct {
	Units []model.Unit `json:"units"`
}

func (s *Server) handleListUnits(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, unitsResponse{Units: s.engine.Snapshot().Units})
}

func (s *Server) handleAddUnit(w http.ResponseWriter, r *http.Request) {
	u := s.engine.AddUnit(r.Context())
	s.writeJSON(w, http.StatusCreated, u)
}

// handleRemoveUnit removes the newest unit. An empty pool is not an error.
func (s *Server) handleRemoveUnit(w http.ResponseWriter, r *http.Request) {
	u, ok := s.engine.RemoveUnit(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

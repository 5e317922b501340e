package api

import (
	"net/http"
)

type healthResponse struct {
	Status      string `json:"status"`
	Units       int    `json:"units"`
	Subscribers int    `json:"subscribers"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Units:       len(s.engine.Snapshot().Units),
		Subscribers: s.engine.Broker().Subscribers(),
	})
}

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fauzi-lee/se-take-home-assignment/internal/engine"
	"github.com/fauzi-lee/se-take-home-assignment/internal/model"
	"github.com/fauzi-lee/se-take-home-assignment/internal/store"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxBodySize      = 1 << 20 // 1 MB
)

// createOrderRequest is the JSON body for POST /v1/orders. An empty body
// creates a standard order.
type createOrderRequest struct {
	Priority string `json:"priority"`
}

type pendingResponse struct {
	Orders []engine.OrderView `json:"orders"`
}

type completedResponse struct {
	Orders []model.Order `json:"orders"`
}

type orderHistoryResponse struct {
	OrderID int64         `json:"order_id"`
	Events  []model.Event `json:"events"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	o, err := s.engine.EnqueueOrder(r.Context(), req.Priority)
	if errors.Is(err, model.ErrInvalidPriority) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("enqueue order", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to enqueue order")
		return
	}

	s.writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := s.orderIDParam(w, r)
	if !ok {
		return
	}

	o, found := s.engine.Order(id)
	if !found {
		s.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	s.writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleGetOrderHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.orderIDParam(w, r)
	if !ok {
		return
	}

	events, err := s.store.OrderHistory(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		s.logger.Error("get order history", "order_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get order history")
		return
	}

	s.writeJSON(w, http.StatusOK, orderHistoryResponse{OrderID: id, Events: events})
}

func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, pendingResponse{Orders: s.engine.Snapshot().Pending})
}

func (s *Server) handleListCompleted(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, completedResponse{Orders: s.engine.Snapshot().Completed})
}

func (s *Server) handleClearCompleted(w http.ResponseWriter, r *http.Request) {
	n := s.engine.ClearCompleted(r.Context())
	s.logger.Debug("completed orders cleared", "count", n)
	w.WriteHeader(http.StatusNoContent)
}

// orderIDParam parses the {id} URL parameter, writing a 400 on failure.
func (s *Server) orderIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid order id")
		return 0, false
	}
	return id, true
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

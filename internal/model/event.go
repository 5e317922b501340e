package model

import "time"

// Event kinds recorded in the journal and streamed to subscribers.
const (
	EventOrderEnqueued    = "order_enqueued"
	EventOrderAssigned    = "order_assigned"
	EventOrderCompleted   = "order_completed"
	EventOrderRequeued    = "order_requeued"
	EventUnitAdded        = "unit_added"
	EventUnitRemoved      = "unit_removed"
	EventProgress         = "progress"
	EventCompletedCleared = "completed_cleared"
	EventReset            = "reset"
)

// Event describes a single state change of the simulation.
type Event struct {
	ID       string    `json:"id"`
	Seq      int64     `json:"seq"`
	Kind     string    `json:"kind"`
	OrderID  *int64    `json:"order_id,omitempty"`
	UnitID   *int64    `json:"unit_id,omitempty"`
	Priority string    `json:"priority,omitempty"`
	Progress *float64  `json:"progress,omitempty"`
	At       time.Time `json:"at"`
}

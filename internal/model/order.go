package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPriority is returned when an order priority is not recognised.
var ErrInvalidPriority = errors.New("invalid order priority")

// Priority classes.
const (
	PriorityStandard  = "standard"
	PriorityExpedited = "expedited"
)

// Order status constants.
const (
	OrderPending   = "pending"
	OrderReserved  = "reserved"
	OrderCompleted = "completed"
)

// validOrderTransitions maps each order status to the statuses it may move to.
// Completed is terminal.
var validOrderTransitions = map[string]map[string]bool{
	OrderPending: {
		OrderReserved: true,
	},
	OrderReserved: {
		OrderCompleted: true,
		OrderPending:   true,
	},
}

// ValidOrderTransition reports whether an order may move from one status to another.
func ValidOrderTransition(from, to string) bool {
	targets, ok := validOrderTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// ParsePriority validates a priority string. An empty string means standard.
func ParsePriority(s string) (string, error) {
	switch s {
	case "", PriorityStandard:
		return PriorityStandard, nil
	case PriorityExpedited:
		return PriorityExpedited, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
}

// Order is a unit of work waiting for, undergoing, or finished with processing.
type Order struct {
	ID          int64      `json:"id"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Expedited reports whether the order jumps ahead of standard orders.
func (o *Order) Expedited() bool {
	return o.Priority == PriorityExpedited
}

// Transition moves the order to the given status if the move is allowed.
func (o *Order) Transition(to string) bool {
	if !ValidOrderTransition(o.Status, to) {
		return false
	}
	o.Status = to
	return true
}

package store

import (
	"context"
	"errors"

	"github.com/fauzi-lee/se-take-home-assignment/internal/model"
)

// ErrNotFound is returned when no journal entries exist for a lookup.
var ErrNotFound = errors.New("not found")

// JournalStats holds aggregate figures over the event journal.
type JournalStats struct {
	TotalEvents        int            `json:"total_events"`
	CountByKind        map[string]int `json:"count_by_kind"`
	CompletedByPrio    map[string]int `json:"completed_by_priority"`
	AvgTurnaroundMS    float64        `json:"avg_turnaround_ms"`
	RequeuedOrderCount int            `json:"requeued_order_count"`
}

// Store defines the persistence operations for the event journal.
type Store interface {
	RecordEvent(ctx context.Context, ev model.Event) error
	ListEvents(ctx context.Context, limit, offset int) ([]model.Event, int, error)
	OrderHistory(ctx context.Context, orderID int64) ([]model.Event, error)
	GetStats(ctx context.Context) (*JournalStats, error)
	Close() error
}

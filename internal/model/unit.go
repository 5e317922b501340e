package model

// Unit state constants.
const (
	UnitIdle = "idle"
	UnitBusy = "busy"
)

// MaxProgress is the progress value of a finished assignment.
const MaxProgress = 100.0

// Unit is a processing worker. Progress and CurrentOrder are only meaningful
// while the unit is busy.
type Unit struct {
	ID           int64   `json:"id"`
	State        string  `json:"state"`
	Progress     float64 `json:"progress"`
	CurrentOrder *Order  `json:"current_order,omitempty"`
}

// Idle reports whether the unit can accept an order.
func (u *Unit) Idle() bool {
	return u.State == UnitIdle
}

// Free returns the unit to the idle state.
func (u *Unit) Free() {
	u.State = UnitIdle
	u.Progress = 0
	u.CurrentOrder = nil
}

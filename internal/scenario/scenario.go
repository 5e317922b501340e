// Package scenario replays a scripted sequence of dispatch actions against
// an engine on a manual clock, so a run is deterministic and instant.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fauzi-lee/se-take-home-assignment/internal/model"
)

// Actions a step may perform.
const (
	ActionEnqueue        = "enqueue"
	ActionAddUnit        = "add_unit"
	ActionRemoveUnit     = "remove_unit"
	ActionClearCompleted = "clear_completed"
	ActionReset          = "reset"
)

var (
	// ErrInvalidAction is returned for a step with an unknown action.
	ErrInvalidAction = errors.New("invalid action")
	// ErrStepOrder is returned when step times go backwards.
	ErrStepOrder = errors.New("steps out of order")
)

// Step is one scripted action, applied At after the scenario starts.
type Step struct {
	At       time.Duration `yaml:"at"`
	Action   string        `yaml:"action"`
	Priority string        `yaml:"priority,omitempty"`
}

// Scenario is a scripted simulation run.
type Scenario struct {
	// Duration and Tick override the processing settings when non-zero.
	Duration time.Duration `yaml:"duration"`
	Tick     time.Duration `yaml:"tick"`
	// Units is the initial pool size. Absent means one unit.
	Units    *int          `yaml:"units"`
	Steps    []Step        `yaml:"steps"`
	RunUntil time.Duration `yaml:"run_until"`
}

// Load decodes and validates a scenario. Unknown fields are rejected.
func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decode scenario: empty document")
		}
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// LoadFile reads a scenario from a YAML file.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Load(bytes.NewReader(data))
}

// Validate checks step actions, priorities and ordering, and normalizes
// priorities so enqueue steps carry an explicit one.
func (sc *Scenario) Validate() error {
	if sc.Duration < 0 || sc.Tick < 0 {
		return errors.New("duration and tick must not be negative")
	}
	if sc.Units != nil && *sc.Units < 0 {
		return fmt.Errorf("units must not be negative, got %d", *sc.Units)
	}

	var last time.Duration
	for i := range sc.Steps {
		st := &sc.Steps[i]
		if st.At < 0 {
			return fmt.Errorf("step %d: negative time %s", i, st.At)
		}
		if st.At < last {
			return fmt.Errorf("step %d at %s before %s: %w", i, st.At, last, ErrStepOrder)
		}
		last = st.At

		switch st.Action {
		case ActionEnqueue:
			p, err := model.ParsePriority(st.Priority)
			if err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			st.Priority = p
		case ActionAddUnit, ActionRemoveUnit, ActionClearCompleted, ActionReset:
			if st.Priority != "" {
				return fmt.Errorf("step %d: priority only applies to %s", i, ActionEnqueue)
			}
		default:
			return fmt.Errorf("step %d: %w %q", i, ErrInvalidAction, st.Action)
		}
	}

	if sc.RunUntil != 0 && sc.RunUntil < last {
		return fmt.Errorf("run_until %s before last step at %s", sc.RunUntil, last)
	}
	return nil
}

// initialUnits returns the configured pool size.
func (sc *Scenario) initialUnits() int {
	if sc.Units == nil {
		return 1
	}
	return *sc.Units
}

// end is the scenario time at which the run stops.
func (sc *Scenario) end() time.Duration {
	if sc.RunUntil > 0 {
		return sc.RunUntil
	}
	if n := len(sc.Steps); n > 0 {
		return sc.Steps[n-1].At
	}
	return 0
}

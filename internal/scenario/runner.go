package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fauzi-lee/se-take-home-assignment/internal/clock"
	"github.com/fauzi-lee/se-take-home-assignment/internal/engine"
	"github.com/fauzi-lee/se-take-home-assignment/internal/model"
)

// Epoch is the manual clock's start time for every run.
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Result is the outcome of a replay.
type Result struct {
	State  engine.State  `json:"state"`
	Events []model.Event `json:"events"`
}

// recorder keeps every journaled event and forwards to an optional
// downstream journal.
type recorder struct {
	mu     sync.Mutex
	events []model.Event
	next   engine.Journal
}

func (r *recorder) RecordEvent(ctx context.Context, ev model.Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()

	if r.next != nil {
		return r.next.RecordEvent(ctx, ev)
	}
	return nil
}

// Run replays sc on a fresh engine. Each step fires once the manual clock
// reaches its time; invariants are checked after every step and at the end.
// journal may be nil.
func Run(ctx context.Context, sc *Scenario, journal engine.Journal, logger *slog.Logger) (*Result, error) {
	rec := &recorder{next: journal}
	clk := clock.NewManual(Epoch)
	eng := engine.NewEngine(engine.Settings{
		Duration:     sc.Duration,
		Tick:         sc.Tick,
		InitialUnits: sc.initialUnits(),
	}, clk, rec, logger)
	defer eng.Close()

	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		clk.AdvanceTo(Epoch.Add(st.At))
		if err := apply(ctx, eng, st); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, st.Action, err)
		}
		if err := eng.CheckInvariants(); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, st.Action, err)
		}
		logger.Debug("step applied", "step", i, "action", st.Action, "at", st.At.String())
	}

	clk.AdvanceTo(Epoch.Add(sc.end()))
	if err := eng.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("final state: %w", err)
	}

	state := eng.Snapshot()

	rec.mu.Lock()
	events := append([]model.Event(nil), rec.events...)
	rec.mu.Unlock()

	return &Result{State: state, Events: events}, nil
}

func apply(ctx context.Context, eng *engine.Engine, st Step) error {
	switch st.Action {
	case ActionEnqueue:
		_, err := eng.EnqueueOrder(ctx, st.Priority)
		return err
	case ActionAddUnit:
		eng.AddUnit(ctx)
	case ActionRemoveUnit:
		eng.RemoveUnit(ctx)
	case ActionClearCompleted:
		eng.ClearCompleted(ctx)
	case ActionReset:
		eng.Reset(ctx)
	default:
		return fmt.Errorf("%w %q", ErrInvalidAction, st.Action)
	}
	return nil
}

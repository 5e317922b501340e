package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fauzi-lee/se-take-home-assignment/internal/model"
	"github.com/fauzi-lee/se-take-home-assignment/internal/tracing"
)

type taskState int

const (
	taskRunning taskState = iota
	taskCompleting
	taskDone
	taskCancelled
)

func (s taskState) String() string {
	switch s {
	case taskRunning:
		return "running"
	case taskCompleting:
		return "completing"
	case taskDone:
		return "done"
	case taskCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// task simulates the processing of one order by one unit. It owns two
// scheduler events: the next progress tick and the completion deadline. The
// completion event is scheduled once at start and does not depend on how
// many ticks have fired.
type task struct {
	unit    *model.Unit
	order   *model.Order
	state   taskState
	steps   int
	step    int
	started time.Time

	tickEvent string
	doneEvent string
}

// startTaskLocked schedules the progress ticks and the completion of o on u.
func (e *Engine) startTaskLocked(u *model.Unit, o *model.Order) {
	t := &task{
		unit:    u,
		order:   o,
		state:   taskRunning,
		steps:   e.settings.steps(),
		started: e.sched.Now(),
	}
	e.tasks[u.ID] = t

	t.doneEvent = e.sched.Schedule(t.started.Add(e.settings.Duration), func() { e.complete(t) })
	e.scheduleTickLocked(t)
}

func (e *Engine) scheduleTickLocked(t *task) {
	at := t.started.Add(time.Duration(t.step+1) * e.settings.Tick)
	t.tickEvent = e.sched.Schedule(at, func() { e.tick(t) })
}

// tick advances the unit's progress by one step.
func (e *Engine) tick(t *task) {
	e.mu.Lock()
	if !e.taskLiveLocked(t) {
		e.mu.Unlock()
		return
	}

	t.step++
	t.unit.Progress = min(model.MaxProgress, t.unit.Progress+model.MaxProgress/float64(t.steps))
	e.emitLocked(model.EventProgress, t.order, t.unit)

	t.tickEvent = ""
	if t.step < t.steps {
		e.scheduleTickLocked(t)
	}
	e.mu.Unlock()
	e.flush()
}

// complete finalizes the order once the processing duration has elapsed.
// A completion that arrives after cancellation, or for an order that is no
// longer reserved, only stops the task's timers.
func (e *Engine) complete(t *task) {
	_, span := tracing.Tracer().Start(context.Background(), "engine.complete_order")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", t.order.ID), attribute.Int64("unit.id", t.unit.ID))

	e.mu.Lock()
	t.doneEvent = ""
	if !e.taskLiveLocked(t) {
		e.stopTaskLocked(t, t.state)
		e.mu.Unlock()
		span.SetAttributes(attribute.Bool("order.stale", true))
		return
	}

	t.state = taskCompleting
	o, u := t.order, t.unit
	if !o.Transition(model.OrderCompleted) {
		e.stopTaskLocked(t, taskCancelled)
		e.mu.Unlock()
		return
	}
	now := e.sched.Now()
	o.CompletedAt = &now

	e.stopTaskLocked(t, taskDone)
	if !e.holdsCompletedLocked(o.ID) {
		e.completed = append(e.completed, o)
	}
	u.Free()
	e.queue.remove(o.ID)

	ordersCompleted.WithLabelValues(o.Priority).Inc()
	e.emitLocked(model.EventOrderCompleted, o, u)
	e.logger.Info("order completed", "order_id", o.ID, "unit_id", u.ID, "priority", o.Priority)

	e.reconcileLocked()
	e.mu.Unlock()
	e.flush()
}

// taskLiveLocked reports whether t may still act on its unit: it is running,
// registered for the unit, and its order is still reserved on that unit.
func (e *Engine) taskLiveLocked(t *task) bool {
	if t.state != taskRunning || e.tasks[t.unit.ID] != t {
		return false
	}
	return t.order.Status == model.OrderReserved && t.unit.CurrentOrder == t.order
}

// stopTaskLocked cancels any outstanding events of t and unregisters it.
func (e *Engine) stopTaskLocked(t *task, final taskState) {
	if t.tickEvent != "" {
		e.sched.Cancel(t.tickEvent)
		t.tickEvent = ""
	}
	if t.doneEvent != "" {
		e.sched.Cancel(t.doneEvent)
		t.doneEvent = ""
	}
	t.state = final
	if e.tasks[t.unit.ID] == t {
		delete(e.tasks, t.unit.ID)
	}
}

func (e *Engine) holdsCompletedLocked(id int64) bool {
	for _, o := range e.completed {
		if o.ID == id {
			return true
		}
	}
	return false
}

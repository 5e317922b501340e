package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fauzi-lee/se-take-home-assignment/internal/clock"
	"github.com/fauzi-lee/se-take-home-assignment/internal/model"
	"github.com/fauzi-lee/se-take-home-assignment/internal/tracing"
)

// Default processing parameters.
const (
	DefaultDuration     = 10 * time.Second
	DefaultTick         = 100 * time.Millisecond
	DefaultInitialUnits = 1
)

// Settings controls the simulated processing time and the initial pool size.
type Settings struct {
	// Duration is the total processing time of one order.
	Duration time.Duration
	// Tick is the interval between progress updates.
	Tick time.Duration
	// InitialUnits is the number of idle units seeded at start and on Reset.
	InitialUnits int
}

// withDefaults fills zero or invalid fields.
func (s Settings) withDefaults() Settings {
	if s.Duration <= 0 {
		s.Duration = DefaultDuration
	}
	if s.Tick <= 0 || s.Tick > s.Duration {
		s.Tick = min(DefaultTick, s.Duration)
	}
	if s.InitialUnits < 0 {
		s.InitialUnits = DefaultInitialUnits
	}
	return s
}

// steps is the number of progress ticks in one assignment.
func (s Settings) steps() int {
	n := int(s.Duration / s.Tick)
	if n < 1 {
		n = 1
	}
	return n
}

// Journal records engine events. The store package satisfies it.
type Journal interface {
	RecordEvent(ctx context.Context, ev model.Event) error
}

// OrderView is a pending order together with its display reservation flag.
type OrderView struct {
	model.Order
	Reserved bool `json:"reserved"`
}

// State is a point-in-time copy of the simulation.
type State struct {
	Units     []model.Unit  `json:"units"`
	Pending   []OrderView   `json:"pending"`
	Completed []model.Order `json:"completed"`
	Now       time.Time     `json:"now"`
}

// Engine owns the simulation state and serializes every mutation.
type Engine struct {
	settings Settings
	sched    clock.Scheduler
	journal  Journal
	logger   *slog.Logger
	broker   *EventBroker

	mu        sync.Mutex
	queue     orderQueue
	pool      unitPool
	completed []*model.Order
	tasks     map[int64]*task
	orderIDs  model.Sequence
	unitIDs   model.Sequence
	eventSeq  int64
	outbox    []model.Event
	closed    bool

	// flushMu keeps events leaving the outbox in sequence order.
	flushMu sync.Mutex
}

// NewEngine creates an engine seeded with Settings.InitialUnits idle units.
// journal may be nil.
func NewEngine(settings Settings, sched clock.Scheduler, journal Journal, logger *slog.Logger) *Engine {
	e := &Engine{
		settings: settings.withDefaults(),
		sched:    sched,
		journal:  journal,
		logger:   logger,
		broker:   NewEventBroker(),
		tasks:    make(map[int64]*task),
	}

	e.mu.Lock()
	e.seedUnitsLocked()
	e.observeLocked()
	e.mu.Unlock()
	e.flush()

	return e
}

// Broker returns the engine's event broker for SSE subscription.
func (e *Engine) Broker() *EventBroker {
	return e.broker
}

// Settings returns the effective processing settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// EnqueueOrder creates an order with the next id and queues it by priority.
// An empty priority means standard.
func (e *Engine) EnqueueOrder(ctx context.Context, priority string) (model.Order, error) {
	_, span := tracing.Tracer().Start(ctx, "engine.enqueue_order")
	defer span.End()

	p, err := model.ParsePriority(priority)
	if err != nil {
		return model.Order{}, err
	}

	e.mu.Lock()
	o := &model.Order{
		ID:        e.orderIDs.Next(),
		Priority:  p,
		Status:    model.OrderPending,
		CreatedAt: e.sched.Now(),
	}
	e.queue.enqueue(o)
	ordersEnqueued.WithLabelValues(p).Inc()
	e.emitLocked(model.EventOrderEnqueued, o, nil)
	e.logger.Debug("order enqueued", "order_id", o.ID, "priority", p)

	e.reconcileLocked()
	out := *o
	e.mu.Unlock()
	e.flush()

	span.SetAttributes(attribute.Int64("order.id", out.ID), attribute.String("order.priority", p))
	return out, nil
}

// AddUnit appends an idle unit and immediately offers it pending work.
func (e *Engine) AddUnit(ctx context.Context) model.Unit {
	_, span := tracing.Tracer().Start(ctx, "engine.add_unit")
	defer span.End()

	e.mu.Lock()
	u := e.addUnitLocked()
	e.reconcileLocked()
	out := copyUnit(u)
	e.mu.Unlock()
	e.flush()

	span.SetAttributes(attribute.Int64("unit.id", out.ID))
	return out
}

// RemoveUnit removes the most recently added unit. A busy unit's order goes
// back to the front of the queue before the unit leaves the pool. It reports
// false when the pool is empty.
func (e *Engine) RemoveUnit(ctx context.Context) (model.Unit, bool) {
	_, span := tracing.Tracer().Start(ctx, "engine.remove_unit")
	defer span.End()

	e.mu.Lock()
	u := e.pool.last()
	if u == nil {
		e.mu.Unlock()
		return model.Unit{}, false
	}

	removed := copyUnit(u)
	if !u.Idle() {
		e.cancelLocked(u)
	}
	e.pool.removeLast()
	e.emitLocked(model.EventUnitRemoved, nil, u)
	e.logger.Debug("unit removed", "unit_id", u.ID)

	e.reconcileLocked()
	e.mu.Unlock()
	e.flush()

	span.SetAttributes(attribute.Int64("unit.id", removed.ID))
	return removed, true
}

// ClearCompleted empties the completed collection and returns how many orders
// were dropped.
func (e *Engine) ClearCompleted(ctx context.Context) int {
	_, span := tracing.Tracer().Start(ctx, "engine.clear_completed")
	defer span.End()

	e.mu.Lock()
	n := len(e.completed)
	e.completed = nil
	if n > 0 {
		e.emitLocked(model.EventCompletedCleared, nil, nil)
	}
	e.observeLocked()
	e.mu.Unlock()
	e.flush()

	return n
}

// Reset stops all in-flight work, drops every order and unit, and seeds a
// fresh pool. Identifiers continue from where they were.
func (e *Engine) Reset(ctx context.Context) State {
	_, span := tracing.Tracer().Start(ctx, "engine.reset")
	defer span.End()

	e.mu.Lock()
	for _, t := range e.tasks {
		e.stopTaskLocked(t, taskCancelled)
	}
	e.tasks = make(map[int64]*task)
	e.queue.clear()
	e.pool.clear()
	e.completed = nil
	e.emitLocked(model.EventReset, nil, nil)
	e.seedUnitsLocked()
	e.observeLocked()
	s := e.snapshotLocked()
	e.mu.Unlock()
	e.flush()

	e.logger.Info("simulation reset", "units", len(s.Units))
	return s
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Order looks up an order wherever it currently lives.
func (e *Engine) Order(id int64) (model.Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if o := e.queue.find(id); o != nil {
		return *o, true
	}
	for _, u := range e.pool.units {
		if u.CurrentOrder != nil && u.CurrentOrder.ID == id {
			return *u.CurrentOrder, true
		}
	}
	for _, o := range e.completed {
		if o.ID == id {
			return *o, true
		}
	}
	return model.Order{}, false
}

// Close cancels all scheduled work and closes the event broker. In-flight
// orders stay reserved on their busy units with no task behind them, which
// CheckInvariants accepts once the engine is closed.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	for _, t := range e.tasks {
		e.stopTaskLocked(t, taskCancelled)
	}
	e.mu.Unlock()
	e.flush()

	e.broker.Close()
}

// CheckInvariants verifies the queue, pool and completed collection agree
// with each other. It returns the first violation found.
func (e *Engine) CheckInvariants() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.checkInvariantsLocked()
}

func (e *Engine) checkInvariantsLocked() error {
	seen := make(map[int64]string)

	for _, o := range e.queue.orders {
		if o.Status != model.OrderPending {
			return fmt.Errorf("queued order %d has status %q", o.ID, o.Status)
		}
		if where, dup := seen[o.ID]; dup {
			return fmt.Errorf("order %d queued and %s", o.ID, where)
		}
		seen[o.ID] = "queued"
	}

	unitIDs := make(map[int64]bool)
	for _, u := range e.pool.units {
		if unitIDs[u.ID] {
			return fmt.Errorf("unit id %d appears twice", u.ID)
		}
		unitIDs[u.ID] = true

		if u.Idle() {
			if u.Progress != 0 || u.CurrentOrder != nil {
				return fmt.Errorf("idle unit %d has progress %.1f, order %v", u.ID, u.Progress, u.CurrentOrder)
			}
			if _, ok := e.tasks[u.ID]; ok {
				return fmt.Errorf("idle unit %d has a running task", u.ID)
			}
			continue
		}

		o := u.CurrentOrder
		if o == nil {
			return fmt.Errorf("busy unit %d has no order", u.ID)
		}
		if o.Status != model.OrderReserved {
			return fmt.Errorf("busy unit %d holds order %d with status %q", u.ID, o.ID, o.Status)
		}
		if u.Progress < 0 || u.Progress > model.MaxProgress {
			return fmt.Errorf("unit %d progress %.1f out of range", u.ID, u.Progress)
		}
		if where, dup := seen[o.ID]; dup {
			return fmt.Errorf("order %d held by unit %d and %s", o.ID, u.ID, where)
		}
		seen[o.ID] = fmt.Sprintf("held by unit %d", u.ID)

		if e.closed {
			continue
		}
		t, ok := e.tasks[u.ID]
		if !ok || t.order != o {
			return fmt.Errorf("busy unit %d has no task for order %d", u.ID, o.ID)
		}
	}

	if len(e.tasks) > len(unitIDs) {
		return fmt.Errorf("%d tasks for %d units", len(e.tasks), len(unitIDs))
	}

	for _, o := range e.completed {
		if o.Status != model.OrderCompleted {
			return fmt.Errorf("completed order %d has status %q", o.ID, o.Status)
		}
		if where, dup := seen[o.ID]; dup {
			return fmt.Errorf("order %d completed and %s", o.ID, where)
		}
		seen[o.ID] = "completed"
	}

	for id := range seen {
		if id < 1 || id > e.orderIDs.Last() {
			return fmt.Errorf("order id %d was never allocated", id)
		}
	}
	for id := range unitIDs {
		if id < 1 || id > e.unitIDs.Last() {
			return fmt.Errorf("unit id %d was never allocated", id)
		}
	}
	return nil
}

func (e *Engine) seedUnitsLocked() {
	for range e.settings.InitialUnits {
		e.addUnitLocked()
	}
}

func (e *Engine) addUnitLocked() *model.Unit {
	u := e.pool.add(e.unitIDs.Next())
	e.emitLocked(model.EventUnitAdded, nil, u)
	e.logger.Debug("unit added", "unit_id", u.ID)
	return u
}

func (e *Engine) snapshotLocked() State {
	s := State{
		Units:     make([]model.Unit, 0, len(e.pool.units)),
		Pending:   make([]OrderView, 0, e.queue.len()),
		Completed: make([]model.Order, 0, len(e.completed)),
		Now:       e.sched.Now(),
	}
	for _, u := range e.pool.units {
		s.Units = append(s.Units, copyUnit(u))
	}
	for _, o := range e.queue.orders {
		s.Pending = append(s.Pending, OrderView{Order: *o, Reserved: o.Status == model.OrderReserved})
	}
	for _, o := range e.completed {
		s.Completed = append(s.Completed, *o)
	}
	return s
}

// emitLocked queues an event for delivery once the mutex is released.
func (e *Engine) emitLocked(kind string, o *model.Order, u *model.Unit) {
	e.eventSeq++
	ev := model.Event{
		ID:   model.NewID(),
		Seq:  e.eventSeq,
		Kind: kind,
		At:   e.sched.Now(),
	}
	if o != nil {
		id := o.ID
		ev.OrderID = &id
		ev.Priority = o.Priority
	}
	if u != nil {
		id := u.ID
		ev.UnitID = &id
		if kind == model.EventProgress {
			p := u.Progress
			ev.Progress = &p
		}
	}
	e.outbox = append(e.outbox, ev)
}

// flush hands queued events to the journal and the broker. It must be called
// without holding e.mu.
func (e *Engine) flush() {
	e.flushMu.Lock()
	defer e.flushMu.Unlock()

	e.mu.Lock()
	events := e.outbox
	e.outbox = nil
	e.mu.Unlock()

	for _, ev := range events {
		// Progress ticks are live-only; the journal keeps lifecycle events.
		if e.journal != nil && ev.Kind != model.EventProgress {
			if err := e.journal.RecordEvent(context.Background(), ev); err != nil {
				e.logger.Error("failed to record event", "kind", ev.Kind, "seq", ev.Seq, "error", err)
			}
		}
		e.broker.Publish(ev)
	}
}

// observeLocked refreshes the state gauges.
func (e *Engine) observeLocked() {
	idle, busy := e.pool.counts()
	unitsByState.WithLabelValues(model.UnitIdle).Set(float64(idle))
	unitsByState.WithLabelValues(model.UnitBusy).Set(float64(busy))
	ordersPending.Set(float64(e.queue.len()))
	ordersCompletedHeld.Set(float64(len(e.completed)))
}

func copyUnit(u *model.Unit) model.Unit {
	c := *u
	if u.CurrentOrder != nil {
		o := *u.CurrentOrder
		c.CurrentOrder = &o
	}
	return c
}

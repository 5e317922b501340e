package engine

import "github.com/fauzi-lee/se-take-home-assignment/internal/model"

// reconcileLocked pairs idle units, in pool order, with the next pending
// order until either side runs out. It is the only place orders leave the
// queue for a unit and runs after every queue or pool mutation.
func (e *Engine) reconcileLocked() {
	defer e.observeLocked()

	if e.closed {
		return
	}

	for _, u := range e.pool.units {
		if !u.Idle() {
			continue
		}
		o := e.queue.nextEligible()
		if o == nil {
			return
		}
		if !o.Transition(model.OrderReserved) {
			// nextEligible only returns pending orders.
			e.logger.Error("order not reservable", "order_id", o.ID, "status", o.Status)
			return
		}
		e.queue.remove(o.ID)

		u.State = model.UnitBusy
		u.Progress = 0
		u.CurrentOrder = o

		orderWaitSeconds.WithLabelValues(o.Priority).Observe(e.sched.Now().Sub(o.CreatedAt).Seconds())
		e.emitLocked(model.EventOrderAssigned, o, u)
		e.logger.Debug("order assigned", "order_id", o.ID, "unit_id", u.ID)

		e.startTaskLocked(u, o)
	}
}

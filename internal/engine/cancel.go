package engine

import "github.com/fauzi-lee/se-take-home-assignment/internal/model"

// cancelLocked preempts the task running on busy unit u so that removing the
// unit looks as if its order was never started: the order returns to the
// head of the queue as pending and the task's timers are stopped. The unit
// itself is left for the caller to remove.
func (e *Engine) cancelLocked(u *model.Unit) {
	o := u.CurrentOrder
	if t, ok := e.tasks[u.ID]; ok {
		e.stopTaskLocked(t, taskCancelled)
	}
	u.Free()

	if o == nil {
		return
	}
	if !o.Transition(model.OrderPending) {
		e.logger.Error("cancelled order not reserved", "order_id", o.ID, "unit_id", u.ID, "status", o.Status)
		return
	}
	e.queue.requeueFront(o)

	ordersRequeued.Inc()
	e.emitLocked(model.EventOrderRequeued, o, u)
	e.logger.Info("order requeued", "order_id", o.ID, "unit_id", u.ID)
}

package engine

import "github.com/fauzi-lee/se-take-home-assignment/internal/model"

// orderQueue is the ordered pending queue. Expedited orders form a prefix
// ahead of standard orders; each class keeps its enqueue order.
type orderQueue struct {
	orders []*model.Order
}

// enqueue inserts o behind every expedited order already queued if o is
// expedited, otherwise at the end.
func (q *orderQueue) enqueue(o *model.Order) {
	if !o.Expedited() {
		q.orders = append(q.orders, o)
		return
	}

	idx := 0
	for idx < len(q.orders) && q.orders[idx].Expedited() {
		idx++
	}
	q.orders = append(q.orders, nil)
	copy(q.orders[idx+1:], q.orders[idx:])
	q.orders[idx] = o
}

// nextEligible returns the first order that is still pending, or nil.
func (q *orderQueue) nextEligible() *model.Order {
	for _, o := range q.orders {
		if o.Status == model.OrderPending {
			return o
		}
	}
	return nil
}

// remove drops the order with the given id. Absent ids are ignored.
func (q *orderQueue) remove(id int64) bool {
	for i, o := range q.orders {
		if o.ID == id {
			q.orders = append(q.orders[:i], q.orders[i+1:]...)
			return true
		}
	}
	return false
}

// requeueFront puts o at the head of the queue so it is served next.
func (q *orderQueue) requeueFront(o *model.Order) {
	q.remove(o.ID)
	q.orders = append([]*model.Order{o}, q.orders...)
}

func (q *orderQueue) find(id int64) *model.Order {
	for _, o := range q.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (q *orderQueue) len() int {
	return len(q.orders)
}

func (q *orderQueue) clear() {
	q.orders = nil
}

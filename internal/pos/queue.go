package pos

// Queue holds parked orders awaiting payment, in the order they were parked.
type Queue struct {
	orders []Order
}

func NewQueue(orders []Order) *Queue {
	q := &Queue{orders: make([]Order, 0, len(orders))}
	for _, o := range orders {
		q.orders = append(q.orders, o.Clone())
	}
	return q
}

// Park appends a copy of the order. Several orders may share a location.
func (q *Queue) Park(o Order) {
	q.orders = append(q.orders, o.Clone())
}

func (q *Queue) Find(id int64) (Order, bool) {
	i := q.index(id)
	if i < 0 {
		return Order{}, false
	}
	return q.orders[i].Clone(), true
}

// Resume removes the order from the queue and hands it to the caller.
func (q *Queue) Resume(id int64) (Order, error) {
	i := q.index(id)
	if i < 0 {
		return Order{}, NotFoundError{ID: id}
	}

	o := q.orders[i]
	q.orders = append(q.orders[:i], q.orders[i+1:]...)
	return o, nil
}

// Remove deletes the order. Removing an absent id returns NotFoundError and
// leaves the queue as it was.
func (q *Queue) Remove(id int64) error {
	_, err := q.Resume(id)
	return err
}

// List returns copies of the parked orders in insertion order.
func (q *Queue) List() []Order {
	out := make([]Order, 0, len(q.orders))
	for _, o := range q.orders {
		out = append(out, o.Clone())
	}
	return out
}

func (q *Queue) Len() int {
	return len(q.orders)
}

func (q *Queue) index(id int64) int {
	for i := range q.orders {
		if q.orders[i].ID == id {
			return i
		}
	}
	return -1
}

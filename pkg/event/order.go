package event

import "time"

const (
	OrdersTopic       = "pos.orders"
	EventOrderParked  = "order.parked"
	EventOrderResumed = "order.resumed"
)

// OrderEventMetadata is shared by every event on OrdersTopic.
type OrderEventMetadata struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    int64     `json:"order_id"`
	Location   string    `json:"location"`
}

// OrderParkedEvent announces a new order waiting for payment. A kitchen screen
// uses it to start preparing the items.
type OrderParkedEvent struct {
	OrderEventMetadata
	Items []OrderLine `json:"items"`
	Total string      `json:"total"`
}

// OrderResumedEvent announces that a parked order was taken back for editing.
type OrderResumedEvent struct {
	OrderEventMetadata
}

type OrderLine struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

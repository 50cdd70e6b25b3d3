package event

import "time"

const (
	SalesTopic         = "pos.sales"
	EventSaleCompleted = "sale.completed"
)

// SaleCompletedEvent is published once a payment is recorded in the ledger.
// Amounts are decimal strings with two places.
type SaleCompletedEvent struct {
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	ReceiptID  string      `json:"receipt_id"`
	OrderID    int64       `json:"order_id"`
	Location   string      `json:"location"`
	Items      []OrderLine `json:"items"`
	Total      string      `json:"total"`
	Paid       string      `json:"paid"`
	Change     string      `json:"change"`
}

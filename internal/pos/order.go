package pos

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product row of an order. Name and UnitPrice are copied from
// the catalog when the product is first added.
type LineItem struct {
	CatalogItemID int             `json:"id"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order is a finalized order, parked in the queue or embedded in a sale.
type Order struct {
	ID        int64           `json:"id"`
	Location  string          `json:"location"`
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Clone returns a copy that shares no mutable storage with o.
func (o Order) Clone() Order {
	o.Items = cloneItems(o.Items)
	return o
}

// Summary renders the items as "2x Taco Bistec, 1x Vasos".
func (o Order) Summary() string {
	return summarizeItems(o.Items, ", ")
}

func sumItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.Subtotal())
	}
	return total
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

func summarizeItems(items []LineItem, sep string) string {
	parts := make([]string, 0, len(items))
	for _, li := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", li.Quantity, li.Name))
	}
	return strings.Join(parts, sep)
}

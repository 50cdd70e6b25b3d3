package pos

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Draft is the single order being built at the counter.
type Draft struct {
	Location string          `json:"location"`
	Items    []LineItem      `json:"items"`
	Total    decimal.Decimal `json:"total"`
}

func NewDraft() *Draft {
	return &Draft{Items: []LineItem{}, Total: decimal.Zero}
}

// DraftFrom seeds a draft with the contents of a resumed order. The order id
// and creation time are dropped.
func DraftFrom(o Order) *Draft {
	d := &Draft{
		Location: o.Location,
		Items:    cloneItems(o.Items),
	}
	d.recompute()
	return d
}

// AddItem adds one unit of the product, merging with an existing line.
func (d *Draft) AddItem(item CatalogItem) {
	for i := range d.Items {
		if d.Items[i].CatalogItemID == item.ID {
			d.Items[i].Quantity++
			d.recompute()
			return
		}
	}

	d.Items = append(d.Items, LineItem{
		CatalogItemID: item.ID,
		Name:          item.Name,
		UnitPrice:     item.UnitPrice,
		Quantity:      1,
	})
	d.recompute()
}

// SetLocation replaces the current location.
func (d *Draft) SetLocation(location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		return ValidationError{Field: "location", Message: "location is required"}
	}
	d.Location = location
	return nil
}

// Validate reports whether the draft can be finalized.
func (d *Draft) Validate() error {
	if d.Location == "" {
		return ValidationError{Field: "location", Message: "select a location for the order"}
	}
	if len(d.Items) == 0 {
		return ValidationError{Field: "items", Message: "order must contain at least one product"}
	}
	return nil
}

// Finalize turns the draft into an order and resets it. On a validation error
// the draft is left untouched.
func (d *Draft) Finalize(id int64, now time.Time) (Order, error) {
	if err := d.Validate(); err != nil {
		return Order{}, err
	}

	d.recompute()
	o := Order{
		ID:        id,
		Location:  d.Location,
		Items:     cloneItems(d.Items),
		Total:     d.Total,
		CreatedAt: now,
	}

	d.Clear()
	return o, nil
}

// Clear resets the draft to an empty order with no location.
func (d *Draft) Clear() {
	d.Location = ""
	d.Items = []LineItem{}
	d.Total = decimal.Zero
}

func (d *Draft) IsEmpty() bool {
	return d.Location == "" && len(d.Items) == 0
}

// Snapshot returns a copy safe to hand to renderers.
func (d *Draft) Snapshot() Draft {
	return Draft{
		Location: d.Location,
		Items:    cloneItems(d.Items),
		Total:    d.Total,
	}
}

func (d *Draft) recompute() {
	d.Total = sumItems(d.Items)
}

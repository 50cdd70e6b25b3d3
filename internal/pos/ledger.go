package pos

import (
	"sort"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesRecord is a paid order. It is never modified after creation.
type SalesRecord struct {
	Order
	ReceiptID   uuid.UUID       `json:"receiptId"`
	PaidAmount  decimal.Decimal `json:"paidAmount"`
	Change      decimal.Decimal `json:"change"`
	PaymentDate time.Time       `json:"paymentDate"`
}

func (r SalesRecord) Clone() SalesRecord {
	r.Order = r.Order.Clone()
	return r
}

// Ledger is the append-only sales history.
type Ledger struct {
	records  []SalesRecord
	location *time.Location
}

// NewLedger builds a ledger over previously recorded sales. Calendar-day
// filtering uses loc; nil means time.Local.
func NewLedger(records []SalesRecord, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.Local
	}
	l := &Ledger{
		records:  make([]SalesRecord, 0, len(records)),
		location: loc,
	}
	for _, r := range records {
		l.records = append(l.records, r.Clone())
	}
	return l
}

// RecordPayment appends a sale for the order. The order itself is not
// modified.
func (l *Ledger) RecordPayment(o Order, paid decimal.Decimal, paymentDate time.Time) (SalesRecord, error) {
	paid = RoundMoney(paid)
	if paid.LessThan(o.Total) {
		return SalesRecord{}, InsufficientPaymentError{Due: o.Total, Paid: paid}
	}

	rec := SalesRecord{
		Order:       o.Clone(),
		ReceiptID:   apt.GenerateNewID(),
		PaidAmount:  paid,
		Change:      paid.Sub(o.Total),
		PaymentDate: paymentDate,
	}

	l.records = append(l.records, rec)
	return rec.Clone(), nil
}

// Query returns the sales paid on the given local calendar day, or all sales
// for the zero Day, newest first.
func (l *Ledger) Query(day Day) []SalesRecord {
	out := make([]SalesRecord, 0, len(l.records))
	for _, r := range l.records {
		if !day.IsZero() && !day.Contains(r.PaymentDate.In(l.location)) {
			continue
		}
		out = append(out, r.Clone())
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PaymentDate.After(out[j].PaymentDate)
	})

	return out
}

// All returns every record in insertion order, as persisted.
func (l *Ledger) All() []SalesRecord {
	out := make([]SalesRecord, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, r.Clone())
	}
	return out
}

func (l *Ledger) Len() int {
	return len(l.records)
}

func (l *Ledger) Location() *time.Location {
	return l.location
}

// Revenue sums the totals of the given records.
func Revenue(records []SalesRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Total)
	}
	return total
}

package pos

import (
	"github.com/shopspring/decimal"
)

// Denominations are the bills and coins handed back as change, largest first.
// The set is canonical, so the greedy breakdown is also the one with the fewest
// pieces.
var Denominations = []decimal.Decimal{
	decimal.NewFromInt(1000),
	decimal.NewFromInt(500),
	decimal.NewFromInt(200),
	decimal.NewFromInt(100),
	decimal.NewFromInt(50),
	decimal.NewFromInt(20),
	decimal.NewFromInt(10),
	decimal.NewFromInt(5),
	decimal.NewFromInt(2),
	decimal.NewFromInt(1),
	decimal.RequireFromString("0.5"),
}

// DenominationCount is one entry of a change breakdown.
type DenominationCount struct {
	Value decimal.Decimal `json:"value"`
	Count int64           `json:"count"`
}

// Upsell suggests asking the payer for a little more cash so the change comes
// out in whole pieces.
type Upsell struct {
	Request         decimal.Decimal `json:"request"`
	ResultingChange decimal.Decimal `json:"resulting_change"`
}

// Change is the result of a change computation.
type Change struct {
	Due        decimal.Decimal     `json:"due"`
	Tendered   decimal.Decimal     `json:"tendered"`
	ChangeDue  decimal.Decimal     `json:"change_due"`
	Sufficient bool                `json:"sufficient"`
	Breakdown  []DenominationCount `json:"breakdown"`
	Remainder  decimal.Decimal     `json:"remainder"`
	Upsell     *Upsell             `json:"upsell,omitempty"`
}

// Count returns how many pieces of the given denomination the breakdown holds.
func (c Change) Count(value decimal.Decimal) int64 {
	for _, dc := range c.Breakdown {
		if dc.Value.Equal(value) {
			return dc.Count
		}
	}
	return 0
}

// ComputeChange works out the change for a tendered amount. It never fails:
// a short tender yields zero change with Sufficient unset, which is what a
// live display needs while the operator is still typing.
func ComputeChange(due, tendered decimal.Decimal) Change {
	due = RoundMoney(due)
	tendered = RoundMoney(tendered)

	c := Change{
		Due:        due,
		Tendered:   tendered,
		ChangeDue:  decimal.Zero,
		Sufficient: tendered.GreaterThanOrEqual(due),
		Breakdown:  []DenominationCount{},
		Remainder:  decimal.Zero,
	}

	diff := tendered.Sub(due)
	if !diff.IsPositive() {
		return c
	}

	c.ChangeDue = diff
	c.Breakdown, c.Remainder = breakdown(diff)
	c.Upsell = suggestUpsell(diff, c.Remainder)
	return c
}

func breakdown(amount decimal.Decimal) ([]DenominationCount, decimal.Decimal) {
	remaining := amount
	out := []DenominationCount{}

	for _, denom := range Denominations {
		if remaining.LessThan(denom) {
			continue
		}
		count := remaining.Div(denom).Floor()
		if !count.IsPositive() {
			continue
		}
		out = append(out, DenominationCount{Value: denom, Count: count.IntPart()})
		remaining = RoundMoney(remaining.Sub(count.Mul(denom)))
	}

	return out, remaining
}

func suggestUpsell(change, remainder decimal.Decimal) *Upsell {
	if !remainder.IsPositive() {
		return nil
	}

	needed := decimal.NewFromInt(1).Sub(remainder)
	if !needed.IsPositive() || needed.GreaterThan(decimal.NewFromInt(1)) {
		return nil
	}

	return &Upsell{
		Request:         needed,
		ResultingChange: change.Add(needed),
	}
}

// TenderPresets are the quick amounts offered on the payment screen: the exact
// total, the total plus ten, and common bills above the total.
func TenderPresets(due decimal.Decimal) []decimal.Decimal {
	due = RoundMoney(due)
	presets := []decimal.Decimal{due, due.Add(decimal.NewFromInt(10))}

	for _, bill := range []int64{50, 100, 200, 500} {
		b := decimal.NewFromInt(bill)
		if b.GreaterThan(due) {
			presets = append(presets, b)
		}
	}

	return presets
}

package pos

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeChange(t *testing.T) {
	tests := []struct {
		name           string
		due            string
		tendered       string
		wantChange     string
		wantSufficient bool
		wantBreakdown  map[string]int64
		wantRemainder  string
		wantUpsell     string
	}{
		{
			name:           "exactPayment",
			due:            "55",
			tendered:       "55",
			wantChange:     "0",
			wantSufficient: true,
			wantBreakdown:  map[string]int64{},
			wantRemainder:  "0",
		},
		{
			name:           "singleBill",
			due:            "55",
			tendered:       "65",
			wantChange:     "10",
			wantSufficient: true,
			wantBreakdown:  map[string]int64{"10": 1},
			wantRemainder:  "0",
		},
		{
			name:           "halfCoin",
			due:            "55",
			tendered:       "57.5",
			wantChange:     "2.5",
			wantSufficient: true,
			wantBreakdown:  map[string]int64{"2": 1, "0.5": 1},
			wantRemainder:  "0",
		},
		{
			name:           "remainderWithUpsell",
			due:            "55",
			tendered:       "56.8",
			wantChange:     "1.8",
			wantSufficient: true,
			wantBreakdown:  map[string]int64{"1": 1, "0.5": 1},
			wantRemainder:  "0.3",
			wantUpsell:     "0.7",
		},
		{
			name:           "largeTender",
			due:            "79",
			tendered:       "1000",
			wantChange:     "921",
			wantSufficient: true,
			wantBreakdown:  map[string]int64{"500": 1, "200": 2, "20": 1, "1": 1},
			wantRemainder:  "0",
		},
		{
			name:           "shortTender",
			due:            "55",
			tendered:       "50",
			wantChange:     "0",
			wantSufficient: false,
			wantBreakdown:  map[string]int64{},
			wantRemainder:  "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ComputeChange(dec(tt.due), dec(tt.tendered))

			if !c.ChangeDue.Equal(dec(tt.wantChange)) {
				t.Errorf("ChangeDue = %s, want %s", c.ChangeDue, tt.wantChange)
			}
			if c.Sufficient != tt.wantSufficient {
				t.Errorf("Sufficient = %v, want %v", c.Sufficient, tt.wantSufficient)
			}
			if len(c.Breakdown) != len(tt.wantBreakdown) {
				t.Errorf("Breakdown = %+v, want %v", c.Breakdown, tt.wantBreakdown)
			}
			for value, count := range tt.wantBreakdown {
				if got := c.Count(dec(value)); got != count {
					t.Errorf("Count(%s) = %d, want %d", value, got, count)
				}
			}
			if !c.Remainder.Equal(dec(tt.wantRemainder)) {
				t.Errorf("Remainder = %s, want %s", c.Remainder, tt.wantRemainder)
			}

			if tt.wantUpsell == "" {
				if c.Upsell != nil {
					t.Errorf("Upsell = %+v, want none", c.Upsell)
				}
				return
			}
			if c.Upsell == nil {
				t.Fatal("Upsell = nil, want a suggestion")
			}
			if !c.Upsell.Request.Equal(dec(tt.wantUpsell)) {
				t.Errorf("Upsell.Request = %s, want %s", c.Upsell.Request, tt.wantUpsell)
			}
			want := dec(tt.wantChange).Add(dec(tt.wantUpsell))
			if !c.Upsell.ResultingChange.Equal(want) {
				t.Errorf("Upsell.ResultingChange = %s, want %s", c.Upsell.ResultingChange, want)
			}
		})
	}
}

func TestComputeChangeBreakdownAddsUp(t *testing.T) {
	for _, tendered := range []string{"60", "100", "123.5", "999.99", "1500"} {
		c := ComputeChange(dec("37"), dec(tendered))

		sum := c.Remainder
		for _, dc := range c.Breakdown {
			sum = sum.Add(dc.Value.Mul(decimal.NewFromInt(dc.Count)))
		}
		if !sum.Equal(c.ChangeDue) {
			t.Errorf("tendered %s: breakdown sums to %s, want %s", tendered, sum, c.ChangeDue)
		}
	}
}

func TestTenderPresets(t *testing.T) {
	tests := []struct {
		name string
		due  string
		want []string
	}{
		{name: "small", due: "39", want: []string{"39", "49", "50", "100", "200", "500"}},
		{name: "medium", due: "120", want: []string{"120", "130", "200", "500"}},
		{name: "large", due: "640", want: []string{"640", "650"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TenderPresets(dec(tt.due))
			if len(got) != len(tt.want) {
				t.Fatalf("TenderPresets(%s) = %v, want %v", tt.due, got, tt.want)
			}
			for i := range got {
				if !got[i].Equal(dec(tt.want[i])) {
					t.Errorf("TenderPresets(%s)[%d] = %s, want %s", tt.due, i, got[i], tt.want[i])
				}
			}
		})
	}
}

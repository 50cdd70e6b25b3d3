package seeding

import (
	"context"
	"fmt"

	"github.com/appetiteclub/tacopos/internal/pos"
)

type demoLine struct {
	productID int
	quantity  int
}

type demoOrder struct {
	location string
	lines    []demoLine
}

// demoOrders uses the ids of the built-in catalog.
var demoOrders = []demoOrder{
	{location: "Mesa 1", lines: []demoLine{{2, 3}, {6, 2}}},
	{location: "Mesa 2", lines: []demoLine{{1, 4}, {4, 2}, {5, 1}}},
	{location: "Para llevar", lines: []demoLine{{3, 2}, {7, 1}, {8, 3}}},
	{location: "Barra", lines: []demoLine{{2, 1}, {5, 1}}},
}

// ParkDemoOrders builds and parks n demo orders, cycling through a fixed set of
// tables and dishes. The current draft is cleared first.
func ParkDemoOrders(ctx context.Context, session *pos.Session, n int) ([]pos.Order, error) {
	if n < 1 {
		return nil, fmt.Errorf("order count must be positive, got %d", n)
	}

	session.ClearDraft()

	parked := make([]pos.Order, 0, n)
	for i := 0; i < n; i++ {
		demo := demoOrders[i%len(demoOrders)]

		location := demo.location
		if i >= len(demoOrders) {
			location = fmt.Sprintf("%s (%d)", demo.location, i/len(demoOrders)+1)
		}

		if _, err := session.SetLocation(location); err != nil {
			return parked, fmt.Errorf("cannot create demo order %d: %w", i+1, err)
		}
		for _, line := range demo.lines {
			for q := 0; q < line.quantity; q++ {
				if _, err := session.AddItem(line.productID); err != nil {
					session.ClearDraft()
					return parked, fmt.Errorf("cannot create demo order %d: %w", i+1, err)
				}
			}
		}

		order, _, err := session.Park(ctx)
		if err != nil {
			return parked, fmt.Errorf("cannot park demo order %d: %w", i+1, err)
		}
		parked = append(parked, order)
	}

	return parked, nil
}

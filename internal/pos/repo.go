package pos

import (
	"context"
)

// Slot names under which the queue and the sales history are stored.
const (
	QueueSlot  = "tacosPosOrders"
	LedgerSlot = "tacosPosHistory"
)

// Snapshot is the full persisted state. The draft is not persisted.
type Snapshot struct {
	Queue  []Order
	Ledger []SalesRecord
}

// Gateway persists snapshots. Load treats a missing slot as an empty
// collection; Save overwrites both slots.
type Gateway interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// MemoryGateway keeps the snapshot in process. It backs tests and the memory
// store driver.
type MemoryGateway struct {
	snap  Snapshot
	Saves int
}

func NewMemoryGateway(initial Snapshot) *MemoryGateway {
	return &MemoryGateway{snap: copySnapshot(initial)}
}

func (g *MemoryGateway) Load(ctx context.Context) (Snapshot, error) {
	return copySnapshot(g.snap), nil
}

func (g *MemoryGateway) Save(ctx context.Context, snap Snapshot) error {
	g.snap = copySnapshot(snap)
	g.Saves++
	return nil
}

func copySnapshot(s Snapshot) Snapshot {
	out := Snapshot{
		Queue:  make([]Order, 0, len(s.Queue)),
		Ledger: make([]SalesRecord, 0, len(s.Ledger)),
	}
	for _, o := range s.Queue {
		out.Queue = append(out.Queue, o.Clone())
	}
	for _, r := range s.Ledger {
		out.Ledger = append(out.Ledger, r.Clone())
	}
	return out
}

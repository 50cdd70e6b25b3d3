package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/tacopos/internal/pos"
)

// Gateway stores each slot as a JSON file in a data directory, the on-disk
// counterpart of browser local storage.
type Gateway struct {
	dir    string
	logger apt.Logger
}

func NewGateway(dir string, logger apt.Logger) *Gateway {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Gateway{dir: dir, logger: logger}
}

func (g *Gateway) Start(ctx context.Context) error {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return fmt.Errorf("cannot create data directory: %w", err)
	}
	g.logger.Info("file store ready", "dir", g.dir)
	return nil
}

func (g *Gateway) Load(ctx context.Context) (pos.Snapshot, error) {
	var snap pos.Snapshot

	if err := g.readSlot(pos.QueueSlot, &snap.Queue); err != nil {
		return pos.Snapshot{}, err
	}
	if err := g.readSlot(pos.LedgerSlot, &snap.Ledger); err != nil {
		return pos.Snapshot{}, err
	}

	return snap, nil
}

func (g *Gateway) Save(ctx context.Context, snap pos.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	queue := snap.Queue
	if queue == nil {
		queue = []pos.Order{}
	}
	ledger := snap.Ledger
	if ledger == nil {
		ledger = []pos.SalesRecord{}
	}

	if err := g.writeSlot(pos.QueueSlot, queue); err != nil {
		return err
	}
	return g.writeSlot(pos.LedgerSlot, ledger)
}

// SlotPath returns the file backing a slot.
func (g *Gateway) SlotPath(slot string) string {
	return filepath.Join(g.dir, slot+".json")
}

func (g *Gateway) readSlot(slot string, target interface{}) error {
	data, err := os.ReadFile(g.SlotPath(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot read slot %s: %w", slot, err)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("cannot decode slot %s: %w", slot, err)
	}
	return nil
}

// writeSlot replaces the slot file through a rename so a reader never sees a
// partial write.
func (g *Gateway) writeSlot(slot string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cannot encode slot %s: %w", slot, err)
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return fmt.Errorf("cannot create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(g.dir, slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("cannot write slot %s: %w", slot, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write slot %s: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write slot %s: %w", slot, err)
	}

	if err := os.Rename(tmp.Name(), g.SlotPath(slot)); err != nil {
		return fmt.Errorf("cannot replace slot %s: %w", slot, err)
	}
	return nil
}

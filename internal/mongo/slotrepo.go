package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appetiteclub/tacopos/internal/pos"
)

// slotDocument keeps a slot's JSON as an opaque string, the same shape the
// file store writes to disk.
type slotDocument struct {
	Slot      string    `bson:"_id"`
	Data      string    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// SlotRepo is a pos.Gateway over a MongoDB collection with one document per
// slot.
type SlotRepo struct {
	collection *mongo.Collection
}

func NewSlotRepo(db *mongo.Database) *SlotRepo {
	return &SlotRepo{
		collection: db.Collection("slots"),
	}
}

func (r *SlotRepo) Load(ctx context.Context) (pos.Snapshot, error) {
	var snap pos.Snapshot

	if err := r.readSlot(ctx, pos.QueueSlot, &snap.Queue); err != nil {
		return pos.Snapshot{}, err
	}
	if err := r.readSlot(ctx, pos.LedgerSlot, &snap.Ledger); err != nil {
		return pos.Snapshot{}, err
	}

	return snap, nil
}

func (r *SlotRepo) Save(ctx context.Context, snap pos.Snapshot) error {
	queue := snap.Queue
	if queue == nil {
		queue = []pos.Order{}
	}
	ledger := snap.Ledger
	if ledger == nil {
		ledger = []pos.SalesRecord{}
	}

	if err := r.writeSlot(ctx, pos.QueueSlot, queue); err != nil {
		return err
	}
	return r.writeSlot(ctx, pos.LedgerSlot, ledger)
}

func (r *SlotRepo) readSlot(ctx context.Context, slot string, target interface{}) error {
	var doc slotDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": slot}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot get slot %s: %w", slot, err)
	}

	if doc.Data == "" {
		return nil
	}

	if err := json.Unmarshal([]byte(doc.Data), target); err != nil {
		return fmt.Errorf("cannot decode slot %s: %w", slot, err)
	}
	return nil
}

func (r *SlotRepo) writeSlot(ctx context.Context, slot string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cannot encode slot %s: %w", slot, err)
	}

	doc := slotDocument{
		Slot:      slot,
		Data:      string(data),
		UpdatedAt: time.Now(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": slot}, doc, opts); err != nil {
		return fmt.Errorf("cannot save slot %s: %w", slot, err)
	}

	return nil
}

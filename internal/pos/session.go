package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/shopspring/decimal"

	"github.com/appetiteclub/tacopos/pkg/event"
)

// State is what a renderer needs after every action: the draft being built and
// the orders waiting for payment.
type State struct {
	Draft Draft   `json:"draft"`
	Queue []Order `json:"queue"`
}

type SessionDeps struct {
	Catalog   *Catalog
	Gateway   Gateway
	Publisher events.Publisher
	Metrics   *Metrics
	// Location is the time zone used for calendar-day filtering and exports.
	Location *time.Location
	CSV      CSVFormat
	Clock    func() time.Time
}

// Session owns the counter state: catalog, draft, queue and ledger. Every
// action runs under one lock and is persisted before it returns.
type Session struct {
	mu        sync.Mutex
	catalog   *Catalog
	draft     *Draft
	queue     *Queue
	ledger    *Ledger
	ids       *IDSequence
	gateway   Gateway
	publisher events.Publisher
	metrics   *Metrics
	csv       CSVFormat
	loc       *time.Location
	now       func() time.Time
	logger    apt.Logger
}

// NewSession loads the persisted queue and ledger and starts with an empty
// draft.
func NewSession(ctx context.Context, deps SessionDeps, logger apt.Logger) (*Session, error) {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if deps.Catalog == nil {
		deps.Catalog = DefaultCatalog()
	}
	if deps.Gateway == nil {
		deps.Gateway = NewMemoryGateway(Snapshot{})
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(nil)
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.CSV.Location == nil {
		deps.CSV.Location = deps.Location
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	snap, err := deps.Gateway.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot load saved state: %w", err)
	}

	s := &Session{
		catalog:   deps.Catalog,
		draft:     NewDraft(),
		queue:     NewQueue(snap.Queue),
		ledger:    NewLedger(snap.Ledger, deps.Location),
		ids:       NewIDSequence(),
		gateway:   deps.Gateway,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		csv:       deps.CSV,
		loc:       deps.Location,
		now:       deps.Clock,
		logger:    logger,
	}

	for _, o := range snap.Queue {
		s.ids.Observe(o.ID)
	}
	for _, r := range snap.Ledger {
		s.ids.Observe(r.ID)
	}
	s.metrics.QueueDepth.Set(float64(s.queue.Len()))

	s.log().Info("session ready", "queued", s.queue.Len(), "sales", s.ledger.Len(), "products", s.catalog.Len(), "last_id", s.ids.Last())
	return s, nil
}

// Location is the time zone used for calendar days.
func (s *Session) Location() *time.Location {
	return s.loc
}

func (s *Session) Catalog() []CatalogItem {
	return s.catalog.Items()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state()
}

// AddItem adds one unit of a catalog product to the draft.
func (s *Session) AddItem(productID int) (State, error) {
	item, ok := s.catalog.Get(productID)
	if !ok {
		return s.State(), fmt.Errorf("%w: %d", ErrUnknownProduct, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft.AddItem(item)
	return s.state(), nil
}

func (s *Session) SetLocation(location string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.draft.SetLocation(location); err != nil {
		return s.state(), err
	}
	return s.state(), nil
}

// ClearDraft drops the order being built.
func (s *Session) ClearDraft() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft.Clear()
	return s.state()
}

// Park finalizes the draft and queues it for payment.
func (s *Session) Park(ctx context.Context) (Order, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.draft.Validate(); err != nil {
		return Order{}, s.state(), err
	}

	now := s.now()
	o, err := s.draft.Finalize(s.ids.Next(now), now)
	if err != nil {
		return Order{}, s.state(), err
	}

	s.queue.Park(o)
	s.metrics.OrdersParked.Inc()
	s.persist(ctx)
	s.publish(ctx, event.OrdersTopic, event.OrderParkedEvent{
		OrderEventMetadata: orderMetadata(event.EventOrderParked, o, now),
		Items:              eventLines(o.Items),
		Total:              o.Total.StringFixed(CentPlaces),
	})

	s.log().Info("order parked", "order_id", o.ID, "location", o.Location, "total", o.Total.StringFixed(CentPlaces))
	return o.Clone(), s.state(), nil
}

// FindOrder returns a parked order.
func (s *Session) FindOrder(id int64) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.queue.Find(id)
	if !ok {
		return Order{}, NotFoundError{ID: id}
	}
	return o, nil
}

// Resume takes a parked order out of the queue and makes it the draft. The
// order gets a new id when it is parked or paid again.
func (s *Session) Resume(ctx context.Context, id int64) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.queue.Resume(id)
	if err != nil {
		return s.state(), err
	}

	if !s.draft.IsEmpty() {
		s.log().Debug("draft replaced by resumed order", "order_id", id, "dropped_items", len(s.draft.Items))
	}
	s.draft = DraftFrom(o)

	s.metrics.OrdersResumed.Inc()
	s.persist(ctx)
	s.publish(ctx, event.OrdersTopic, event.OrderResumedEvent{
		OrderEventMetadata: orderMetadata(event.EventOrderResumed, o, s.now()),
	})

	s.log().Info("order resumed", "order_id", id, "location", o.Location)
	return s.state(), nil
}

// Quote computes the change for a parked order without paying it.
func (s *Session) Quote(id int64, tendered decimal.Decimal) (Change, error) {
	o, err := s.FindOrder(id)
	if err != nil {
		return Change{}, err
	}
	return ComputeChange(o.Total, tendered), nil
}

// QuoteDraft computes the change for the draft total.
func (s *Session) QuoteDraft(tendered decimal.Decimal) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	return ComputeChange(s.draft.Total, tendered)
}

// Pay settles a parked order, moving it from the queue to the ledger.
func (s *Session) Pay(ctx context.Context, id int64, tendered decimal.Decimal) (SalesRecord, Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.queue.Find(id)
	if !ok {
		return SalesRecord{}, Change{}, NotFoundError{ID: id}
	}

	rec, err := s.ledger.RecordPayment(o, tendered, s.now())
	if err != nil {
		return SalesRecord{}, ComputeChange(o.Total, tendered), err
	}

	if err := s.queue.Remove(id); err != nil {
		s.log().Error("paid order missing from queue", "order_id", id, "error", err)
	}

	return rec, s.completeSale(ctx, rec), nil
}

// PayDraft finalizes the draft and settles it at once, skipping the queue. On
// any error the draft is left as it was.
func (s *Session) PayDraft(ctx context.Context, tendered decimal.Decimal) (SalesRecord, Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.draft.Validate(); err != nil {
		return SalesRecord{}, Change{}, err
	}

	tendered = RoundMoney(tendered)
	if tendered.LessThan(s.draft.Total) {
		return SalesRecord{}, ComputeChange(s.draft.Total, tendered), InsufficientPaymentError{Due: s.draft.Total, Paid: tendered}
	}

	now := s.now()
	o, err := s.draft.Finalize(s.ids.Next(now), now)
	if err != nil {
		return SalesRecord{}, Change{}, err
	}

	rec, err := s.ledger.RecordPayment(o, tendered, now)
	if err != nil {
		return SalesRecord{}, Change{}, err
	}

	return rec, s.completeSale(ctx, rec), nil
}

// History lists sales for a calendar day, or all of them for the zero Day,
// newest first.
func (s *Session) History(day Day) []SalesRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.Query(day)
}

// Export renders the history for a day as CSV and names the file.
func (s *Session) Export(day Day) (string, []byte, error) {
	records := s.History(day)
	if len(records) == 0 {
		return "", nil, ErrNothingToExport
	}

	var buf bytes.Buffer
	if err := ExportCSV(&buf, records, s.csv); err != nil {
		return "", nil, err
	}
	return ExportFilename(day), buf.Bytes(), nil
}

// Reset empties the draft, the queue and the sales history and persists the
// empty state. Ids keep increasing across a reset.
func (s *Session) Reset(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := s.queue.Len()
	sales := s.ledger.Len()

	s.draft.Clear()
	s.queue = NewQueue(nil)
	s.ledger = NewLedger(nil, s.loc)
	s.persist(ctx)

	s.log().Info("session reset", "dropped_orders", dropped, "dropped_sales", sales)
	return s.state()
}

func (s *Session) completeSale(ctx context.Context, rec SalesRecord) Change {
	s.metrics.Sales.Inc()
	s.metrics.Revenue.Add(rec.Total.InexactFloat64())
	s.persist(ctx)
	s.publish(ctx, event.SalesTopic, event.SaleCompletedEvent{
		EventType:  event.EventSaleCompleted,
		OccurredAt: rec.PaymentDate,
		ReceiptID:  rec.ReceiptID.String(),
		OrderID:    rec.ID,
		Location:   rec.Location,
		Items:      eventLines(rec.Items),
		Total:      rec.Total.StringFixed(CentPlaces),
		Paid:       rec.PaidAmount.StringFixed(CentPlaces),
		Change:     rec.Change.StringFixed(CentPlaces),
	})

	s.log().Info("sale completed", "order_id", rec.ID, "receipt_id", rec.ReceiptID.String(),
		"total", rec.Total.StringFixed(CentPlaces), "paid", rec.PaidAmount.StringFixed(CentPlaces))
	return ComputeChange(rec.Total, rec.PaidAmount)
}

// persist writes the full snapshot. A failed write is logged and counted; the
// in-memory state stays authoritative.
func (s *Session) persist(ctx context.Context) {
	s.metrics.QueueDepth.Set(float64(s.queue.Len()))

	snap := Snapshot{Queue: s.queue.List(), Ledger: s.ledger.All()}
	if err := s.gateway.Save(ctx, snap); err != nil {
		s.metrics.PersistFailures.Inc()
		s.log().Error("cannot save state, changes kept in memory", "error", err)
	}
}

func (s *Session) publish(ctx context.Context, topic string, payload interface{}) {
	if s.publisher == nil {
		return
	}

	msg, err := json.Marshal(payload)
	if err != nil {
		s.log().Error("cannot encode event", "topic", topic, "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, topic, msg); err != nil {
		s.log().Error("cannot publish event", "topic", topic, "error", err)
	}
}

func (s *Session) state() State {
	return State{
		Draft: s.draft.Snapshot(),
		Queue: s.queue.List(),
	}
}

func (s *Session) log() apt.Logger {
	return s.logger.With("component", "Session")
}

func orderMetadata(eventType string, o Order, at time.Time) event.OrderEventMetadata {
	return event.OrderEventMetadata{
		EventType:  eventType,
		OccurredAt: at,
		OrderID:    o.ID,
		Location:   o.Location,
	}
}

func eventLines(items []LineItem) []event.OrderLine {
	lines := make([]event.OrderLine, 0, len(items))
	for _, li := range items {
		lines = append(lines, event.OrderLine{
			ProductID: li.CatalogItemID,
			Name:      li.Name,
			Quantity:  li.Quantity,
		})
	}
	return lines
}

package pos

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MockPublisher is a test mock for events.Publisher
type MockPublisher struct {
	mu              sync.Mutex
	PublishedEvents []PublishedEvent
	PublishFunc     func(ctx context.Context, topic string, data []byte) error
}

type PublishedEvent struct {
	Topic string
	Data  []byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		PublishedEvents: make([]PublishedEvent, 0),
	}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishedEvents = append(m.PublishedEvents, PublishedEvent{Topic: topic, Data: data})
	return nil
}

func (m *MockPublisher) Events(topic string) []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []PublishedEvent
	for _, e := range m.PublishedEvents {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}

// MockGateway is a test mock for Gateway
type MockGateway struct {
	Snapshot Snapshot
	Saves    int
	LoadFunc func(ctx context.Context) (Snapshot, error)
	SaveFunc func(ctx context.Context, snap Snapshot) error
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) Load(ctx context.Context) (Snapshot, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return m.Snapshot, nil
}

func (m *MockGateway) Save(ctx context.Context, snap Snapshot) error {
	m.Saves++
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, snap)
	}
	m.Snapshot = snap
	return nil
}

// fakeClock returns a fixed time that tests can move forward.
type fakeClock struct {
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func catalogItem(id int) CatalogItem {
	item, ok := DefaultCatalog().Get(id)
	if !ok {
		panic("unknown catalog item in test")
	}
	return item
}

func newTestSession(gateway Gateway, publisher *MockPublisher, clock *fakeClock) *Session {
	deps := SessionDeps{
		Gateway:  gateway,
		Location: time.UTC,
		Clock:    clock.Now,
	}
	if publisher != nil {
		deps.Publisher = publisher
	}

	s, err := NewSession(context.Background(), deps, nil)
	if err != nil {
		panic(err)
	}
	return s
}

package pkg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/appetiteclub/tacopos/pkg/event"
)

const (
	SalesStreamName   = "TACOPOS_SALES"
	DefaultArchiveAge = 90 * 24 * time.Hour
)

// SalesArchive keeps sale events in a JetStream stream so they can be replayed
// after the fact. Plain publishes on the sales topic are captured as well.
type SalesArchive struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	stream jetstream.Stream
	logger apt.Logger
}

type SalesArchiveConfig struct {
	URL        string
	ClientName string
	// MaxAge bounds how long sale events are retained. Zero uses DefaultArchiveAge.
	MaxAge time.Duration
}

// NewSalesArchive connects and creates or updates the sales stream.
func NewSalesArchive(ctx context.Context, cfg SalesArchiveConfig, logger apt.Logger) (*SalesArchive, error) {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultArchiveAge
	}

	conn, err := nats.Connect(cfg.URL, nats.Name(cfg.ClientName))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     SalesStreamName,
		Subjects: []string{event.SalesTopic},
		MaxAge:   cfg.MaxAge,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create/update stream %s: %w", SalesStreamName, err)
	}

	return &SalesArchive{conn: conn, js: js, stream: stream, logger: logger}, nil
}

// Replay reads every archived sale event, oldest first, and hands each to
// handler. It stops at the first handler error.
func (a *SalesArchive) Replay(ctx context.Context, handler events.HandlerFunc) (int, error) {
	info, err := a.stream.Info(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot read stream info: %w", err)
	}
	pending := int(info.State.Msgs)
	if pending == 0 {
		return 0, nil
	}

	consumer, err := a.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		FilterSubject: event.SalesTopic,
	})
	if err != nil {
		return 0, fmt.Errorf("cannot create replay consumer: %w", err)
	}

	replayed := 0
	for replayed < pending {
		batch, err := consumer.Fetch(pending-replayed, jetstream.FetchMaxWait(2*time.Second))
		if err != nil {
			return replayed, fmt.Errorf("failed to fetch messages: %w", err)
		}

		received := 0
		for msg := range batch.Messages() {
			received++
			if err := handler(ctx, msg.Data()); err != nil {
				_ = msg.Nak()
				return replayed, err
			}
			_ = msg.Ack()
			replayed++
		}
		if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
			return replayed, fmt.Errorf("failed to fetch messages: %w", err)
		}
		if received == 0 {
			break
		}
	}

	a.logger.Debug("sales replayed", "count", replayed)
	return replayed, nil
}

func (a *SalesArchive) Close() error {
	a.conn.Close()
	return nil
}

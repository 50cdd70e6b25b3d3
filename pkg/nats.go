package pkg

import (
	"context"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/nats-io/nats.go"
)

// NATSBus publishes and subscribes POS events over a single NATS connection.
// It satisfies events.Publisher and events.Subscriber.
type NATSBus struct {
	conn   *nats.Conn
	logger apt.Logger
}

func NewNATSBus(url, clientName string, logger apt.Logger) (*NATSBus, error) {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	conn, err := nats.Connect(url,
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSBus{conn: conn, logger: logger}, nil
}

func (b *NATSBus) Publish(ctx context.Context, topic string, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.conn.Publish(topic, msg)
}

// Subscribe delivers every message on topic to handler until the connection
// is closed. Handler errors are logged, not redelivered.
func (b *NATSBus) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	_, err := b.conn.Subscribe(topic, func(msg *nats.Msg) {
		if err := handler(ctx, msg.Data); err != nil {
			b.logger.Error("event handler failed", "topic", topic, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("cannot subscribe to %s: %w", topic, err)
	}
	return nil
}

func (b *NATSBus) Close() error {
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
	return nil
}

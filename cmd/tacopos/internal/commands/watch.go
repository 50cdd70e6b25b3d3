package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/appetiteclub/apt/events"
	"github.com/spf13/cobra"

	"github.com/appetiteclub/tacopos/internal/app"
	"github.com/appetiteclub/tacopos/pkg"
	"github.com/appetiteclub/tacopos/pkg/event"
)

func newWatchCmd(g *globalFlags) *cobra.Command {
	var replay bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print order and sale events as they happen",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			if cfg.NATSURL == "" {
				return errors.New("nats.url is not set, use --nats-url")
			}

			bus, err := pkg.NewNATSBus(cfg.NATSURL, app.AppName+"-watch", logger)
			if err != nil {
				return err
			}
			defer bus.Close()

			ctx := cmd.Context()
			printer := &eventPrinter{out: cmd.OutOrStdout()}

			if replay {
				archive, err := pkg.NewSalesArchive(ctx, pkg.SalesArchiveConfig{
					URL:        cfg.NATSURL,
					ClientName: app.AppName + "-replay",
				}, logger)
				if err != nil {
					return err
				}
				n, err := archive.Replay(ctx, printer.handler(event.SalesTopic))
				archive.Close()
				if err != nil {
					return err
				}
				logger.Info("archived sales replayed", "count", n)
			}

			for _, topic := range []string{event.OrdersTopic, event.SalesTopic} {
				if err := bus.Subscribe(ctx, topic, printer.handler(topic)); err != nil {
					return err
				}
			}

			logger.Info("watching events", "url", cfg.NATSURL)
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&replay, "replay", false, "Print archived sale events before watching")
	return cmd
}

// eventPrinter writes one line per event. Subscriptions deliver on their own
// goroutines so writes are serialized.
type eventPrinter struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *eventPrinter) handler(topic string) events.HandlerFunc {
	return func(ctx context.Context, msg []byte) error {
		var head struct {
			EventType string `json:"event_type"`
		}
		if err := json.Unmarshal(msg, &head); err != nil {
			return fmt.Errorf("cannot decode event on %s: %w", topic, err)
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		_, err := fmt.Fprintf(p.out, "%s %s %s\n", topic, head.EventType, msg)
		return err
	}
}

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/appetiteclub/tacopos/cmd/tacopos/internal/seeding"
	"github.com/appetiteclub/tacopos/internal/pos"
)

func newSeedCmd(g *globalFlags) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Park demo orders in the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := g.start(ctx)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			orders, err := seeding.ParkDemoOrders(ctx, a.Session(), count)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, o := range orders {
				fmt.Fprintf(out, "[%d] %s  %s  %s\n", o.ID, o.Location, pos.FormatMoney(o.Total), o.Summary())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "orders", 4, "Number of demo orders")
	return cmd
}

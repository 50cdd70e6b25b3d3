package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd(g *globalFlags) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all pending orders and the sales history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("reset deletes every pending order and sale, pass --yes to continue")
			}

			ctx := cmd.Context()
			a, err := g.start(ctx)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			a.Session().Reset(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Pending orders and sales history deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the reset")
	return cmd
}

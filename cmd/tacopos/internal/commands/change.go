package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/appetiteclub/tacopos/internal/pos"
	"github.com/appetiteclub/tacopos/internal/shell"
)

func newChangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change <due> <tendered>",
		Short: "Break the change for an amount into bills and coins",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			due, err := pos.ParseAmount(args[0])
			if err != nil {
				return err
			}
			tendered, err := pos.ParseAmount(args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Due %s, received %s.\n", pos.FormatMoney(due), pos.FormatMoney(tendered))
			shell.WriteChange(out, pos.ComputeChange(due, tendered))
			return nil
		},
	}
}

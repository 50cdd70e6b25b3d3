package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/appetiteclub/tacopos/internal/pos"
	"github.com/appetiteclub/tacopos/internal/shell"
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded sales, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := pos.ParseDay(date)
			if err != nil {
				return err
			}

			a, err := g.start(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			out := cmd.OutOrStdout()
			records := a.Session().History(day)
			if len(records) == 0 {
				fmt.Fprintln(out, "No sales.")
				return nil
			}

			if err := shell.WriteHistory(out, records, a.Session().Location()); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d sales, %s\n", len(records), pos.FormatMoney(pos.Revenue(records)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Only sales paid on this day (YYYY-MM-DD)")
	return cmd
}

func newExportCmd(g *globalFlags) *cobra.Command {
	var (
		date   string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the sales history as a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := pos.ParseDay(date)
			if err != nil {
				return err
			}

			a, err := g.start(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			name, data, err := a.Session().Export(day)
			if errors.Is(err, pos.ErrNothingToExport) {
				fmt.Fprintln(cmd.OutOrStdout(), "No sales to export.")
				return nil
			}
			if err != nil {
				return err
			}

			path := filepath.Join(outDir, name)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("cannot write export: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Only sales paid on this day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&outDir, "out", ".", "Destination directory")
	return cmd
}

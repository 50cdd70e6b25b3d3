package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/appetiteclub/tacopos/internal/shell"
)

func newShellCmd(g *globalFlags) *cobra.Command {
	var exportDir string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Open the interactive counter shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, g, exportDir)
		},
	}

	cmd.Flags().StringVar(&exportDir, "export-dir", ".", "Directory for CSV exports")
	return cmd
}

func runShell(cmd *cobra.Command, g *globalFlags, exportDir string) error {
	ctx := cmd.Context()

	a, err := g.start(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	sh := shell.New(a.Session(), shell.Options{
		In:        cmd.InOrStdin(),
		Out:       cmd.OutOrStdout(),
		ExportDir: exportDir,
	}, a.Logger())

	return sh.Run(ctx)
}

package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/appetiteclub/tacopos/internal/shell"
)

func newCatalogCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "catalog",
		Aliases: []string{"menu"},
		Short:   "List the products on sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.start(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			return shell.WriteCatalog(cmd.OutOrStdout(), a.Session().Catalog())
		},
	}
}

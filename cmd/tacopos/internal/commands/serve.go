package commands

import (
	"github.com/spf13/cobra"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the POS JSON API",
		Long: `Serve exposes the catalog, draft, queue, payments and sales history over
HTTP. The listen address is the web.port setting (TACOPOS_WEB_PORT).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.start(cmd.Context())
			if err != nil {
				return err
			}
			return a.Serve(cmd.Context())
		},
	}
}

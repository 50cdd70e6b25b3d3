package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/spf13/cobra"

	"github.com/appetiteclub/tacopos/internal/app"
	"github.com/appetiteclub/tacopos/internal/config"
)

// globalFlags override the values read from the environment and config file.
type globalFlags struct {
	logLevel    string
	storeDriver string
	storeDir    string
	catalogFile string
	timezone    string
	natsURL     string
}

func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "tacopos",
		Short: "Point of sale for a taco stand",
		Long: `tacopos builds orders from the menu, keeps unpaid orders in a queue,
computes change in bills and coins, and records every sale.

Run without a subcommand to open the counter shell.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, g, ".")
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, error)")
	pf.StringVar(&g.storeDriver, "store-driver", "", "Storage driver (file, mongo, memory)")
	pf.StringVar(&g.storeDir, "store-dir", "", "Data directory for the file driver")
	pf.StringVar(&g.catalogFile, "catalog", "", "YAML product catalog")
	pf.StringVar(&g.timezone, "timezone", "", "Time zone for calendar days, e.g. America/Mexico_City")
	pf.StringVar(&g.natsURL, "nats-url", "", "NATS server for order and sale events")

	cmd.AddCommand(
		newShellCmd(g),
		newServeCmd(g),
		newCatalogCmd(g),
		newHistoryCmd(g),
		newExportCmd(g),
		newChangeCmd(),
		newWatchCmd(g),
		newSeedCmd(g),
		newResetCmd(g),
		newVersionCmd(),
	)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", app.AppName, app.AppVersion)
		},
	}
}

// apply copies every flag that was given onto cfg.
func (g *globalFlags) apply(cfg *config.Config) {
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.storeDriver != "" {
		cfg.Store.Driver = g.storeDriver
	}
	if g.storeDir != "" {
		cfg.Store.Dir = g.storeDir
	}
	if g.catalogFile != "" {
		cfg.CatalogFile = g.catalogFile
	}
	if g.timezone != "" {
		cfg.Timezone = g.timezone
	}
	if g.natsURL != "" {
		cfg.NATSURL = g.natsURL
	}
}

func (g *globalFlags) load() (*apt.Config, config.Config, apt.Logger, error) {
	ac, err := apt.LoadConfig(config.Namespace, []string{})
	if err != nil {
		return nil, config.Config{}, nil, fmt.Errorf("cannot load config: %w", err)
	}

	cfg := config.Load(ac)
	g.apply(&cfg)

	return ac, cfg, apt.NewLogger(cfg.LogLevel), nil
}

// start builds and initializes the app. Callers own the Close.
func (g *globalFlags) start(ctx context.Context) (*app.App, error) {
	ac, cfg, logger, err := g.load()
	if err != nil {
		return nil, err
	}

	a, err := app.New(ac, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := a.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("cannot start %s: %w", app.AppName, err)
	}
	return a, nil
}

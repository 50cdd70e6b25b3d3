// Package app wires configuration, storage, events and metrics into a POS
// session and exposes it over HTTP or to the command line.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/appetiteclub/tacopos/internal/config"
	"github.com/appetiteclub/tacopos/internal/filestore"
	"github.com/appetiteclub/tacopos/internal/mongo"
	"github.com/appetiteclub/tacopos/internal/pos"
	"github.com/appetiteclub/tacopos/pkg"
)

const (
	AppName    = "tacopos"
	AppVersion = "0.1.0"
)

// App holds the long-lived pieces behind every command.
type App struct {
	config   *apt.Config
	cfg      config.Config
	logger   apt.Logger
	session  *pos.Session
	registry *prometheus.Registry
	closers  []func(context.Context) error
}

func New(ac *apt.Config, cfg config.Config, logger apt.Logger) (*App, error) {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &App{
		config: ac,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Initialize opens the store, connects the event bus when configured and
// loads the session.
func (a *App) Initialize(ctx context.Context) error {
	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}

	gateway, err := a.openGateway(ctx)
	if err != nil {
		return err
	}

	catalog := pos.DefaultCatalog()
	if a.cfg.CatalogFile != "" {
		catalog, err = pos.LoadCatalogFile(a.cfg.CatalogFile)
		if err != nil {
			return err
		}
		a.logger.Info("catalog loaded", "file", a.cfg.CatalogFile, "products", catalog.Len())
	}

	var publisher events.Publisher
	if a.cfg.NATSURL != "" {
		bus, err := pkg.NewNATSBus(a.cfg.NATSURL, AppName, a.logger)
		if err != nil {
			a.logger.Error("event bus unavailable, continuing without events", "url", a.cfg.NATSURL, "error", err)
		} else {
			publisher = bus
			a.closers = append(a.closers, func(context.Context) error { return bus.Close() })
			a.openSalesArchive(ctx)
		}
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.session, err = pos.NewSession(ctx, pos.SessionDeps{
		Catalog:   catalog,
		Gateway:   gateway,
		Publisher: publisher,
		Metrics:   pos.NewMetrics(a.registry),
		Location:  loc,
		CSV: pos.CSVFormat{
			DateLayout: a.cfg.CSV.DateFormat,
			TimeLayout: a.cfg.CSV.TimeFormat,
			Location:   loc,
		},
	}, a.logger)
	if err != nil {
		_ = a.Close(ctx)
		return err
	}

	return nil
}

func (a *App) openGateway(ctx context.Context) (pos.Gateway, error) {
	switch a.cfg.Store.Driver {
	case config.DriverMongo:
		baseRepo := mongo.NewBaseRepo(a.cfg.Mongo, a.logger)
		if err := baseRepo.Start(ctx); err != nil {
			return nil, err
		}
		db := baseRepo.GetDatabase()
		if db == nil {
			_ = baseRepo.Stop(ctx)
			return nil, errors.New("repository database is nil")
		}
		a.closers = append(a.closers, baseRepo.Stop)
		return mongo.NewSlotRepo(db), nil

	case config.DriverMemory:
		a.logger.Info("memory store selected, nothing will be kept after exit")
		return pos.NewMemoryGateway(pos.Snapshot{}), nil

	default:
		fileStore := filestore.NewGateway(a.cfg.Store.Dir, a.logger)
		if err := fileStore.Start(ctx); err != nil {
			return nil, err
		}
		return fileStore, nil
	}
}

// openSalesArchive makes sure sale events are retained for replay. Servers
// without JetStream still get live events.
func (a *App) openSalesArchive(ctx context.Context) {
	archive, err := pkg.NewSalesArchive(ctx, pkg.SalesArchiveConfig{
		URL:        a.cfg.NATSURL,
		ClientName: AppName + "-archive",
	}, a.logger)
	if err != nil {
		a.logger.Error("sales archive unavailable", "error", err)
		return
	}
	a.closers = append(a.closers, func(context.Context) error { return archive.Close() })
}

func (a *App) Logger() apt.Logger {
	return a.logger
}

func (a *App) Session() *pos.Session {
	return a.session
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if a.session == nil {
		return errors.New("app not initialized")
	}

	handler := pos.NewHandler(pos.HandlerDeps{
		Session:  a.session,
		Gatherer: a.registry,
	}, a.logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      a.logger,
		DisableCORS: true,
	})

	lifecycles := []interface{}{
		apt.LifecycleHooks{OnStop: a.Close},
	}

	options := []apt.Option{
		apt.WithConfig(a.config),
		apt.WithLogger(a.logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", handler),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(AppName),
	}

	ms := apt.NewMicro(options...)
	a.logger.Infof("Starting %s(%s)", AppName, AppVersion)

	if err := ms.Run(ctx); err != nil {
		_ = a.Close(context.Background())
		return err
	}

	a.logger.Infof("%s(%s) stopped", AppName, AppVersion)
	return nil
}

// Close releases the store and bus connections in reverse order of opening.
// It is safe to call more than once.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

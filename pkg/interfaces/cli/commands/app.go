package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/procurement/pkg/application/services/lifecycle"
	"github.com/vsinha/procurement/pkg/application/services/scenario"
	"github.com/vsinha/procurement/pkg/application/services/scheduler"
	"github.com/vsinha/procurement/pkg/application/services/workspace"
	"github.com/vsinha/procurement/pkg/application/state"
	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/domain/repositories"
	"github.com/vsinha/procurement/pkg/infrastructure/config"
	"github.com/vsinha/procurement/pkg/infrastructure/events"
	"github.com/vsinha/procurement/pkg/infrastructure/logging"
	"github.com/vsinha/procurement/pkg/infrastructure/remote/httpapi"
	"github.com/vsinha/procurement/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/procurement/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/procurement/pkg/interfaces/cli/output"
)

// app wires one client session
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	printer *output.Printer

	store     *state.Store
	events    *events.InMemoryEventStore
	remote    repositories.ProcurementService
	offline   *memory.Service
	scheduler *scheduler.Scheduler
	lifecycle *lifecycle.Service
	scenario  *scenario.Model
	workspace *workspace.Service
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return buildApp(cfg, cmd.OutOrStdout(), outputFormat)
}

func buildApp(cfg *config.Config, out io.Writer, formatName string) (*app, error) {
	logger, err := logging.New(logging.Config{
		Level:             cfg.Logging.Level,
		Encoding:          cfg.Logging.Encoding,
		DisableCaller:     cfg.Logging.DisableCaller,
		DisableStacktrace: cfg.Logging.DisableStacktrace,
		File:              cfg.Logging.File,
	})
	if err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	role, err := entities.ParseRole(cfg.User.Role)
	if err != nil {
		return nil, err
	}
	params, err := entities.NewScenarioParameters(cfg.Scenario.DelayDays, cfg.Scenario.DemandSpikePct)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		printer: output.New(out, format, cfg.Display.Currency),
		store:   state.NewStore(role, params),
		events:  events.NewInMemoryEventStore(logger),
	}

	if cfg.Offline.Enabled {
		a.offline, err = newOfflineService(cfg, logger)
		if err != nil {
			return nil, err
		}
		a.remote = a.offline
	} else {
		a.remote, err = httpapi.NewClient(httpapi.Config{
			BaseURL: cfg.API.BaseURL,
			Timeout: cfg.API.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
	}

	a.scheduler = scheduler.New(a.store, scheduler.NewRepositoryFetcher(a.remote, a.store), cfg.Sync.Interval, a.events, logger)
	a.lifecycle = lifecycle.NewService(a.remote, a.store, a.scheduler, a.events, logger)
	a.workspace = workspace.NewService(a.remote, a.store, a.scheduler, logger)
	a.scenario, err = scenario.NewModel(params, a.scheduler, a.events, logger)
	if err != nil {
		return nil, err
	}

	logger.Debug("client ready",
		zap.Bool("offline", cfg.Offline.Enabled),
		zap.String("role", string(role)),
		zap.Duration("interval", cfg.Sync.Interval),
	)
	return a, nil
}

func newOfflineService(cfg *config.Config, logger *zap.Logger) (*memory.Service, error) {
	options := memory.DefaultOptions()
	options.AutoApproveLimit = decimal.NewFromFloat(cfg.Offline.AutoApproveLimit)
	options.DayLength = cfg.Offline.DayLength

	seed := memory.DefaultCatalog()
	if cfg.Offline.SeedFile != "" {
		var err error
		seed, err = csv.NewLoader().LoadProducts(cfg.Offline.SeedFile)
		if err != nil {
			return nil, err
		}
	}

	service := memory.NewService(options, logger)
	if err := service.LoadProducts(seed); err != nil {
		return nil, err
	}
	return service, nil
}

func (a *app) Close() {
	a.scheduler.Wait()
	if a.offline != nil {
		a.offline.Close()
	}
	_ = a.logger.Sync()
}

// refresh loads resources one after the other, stopping at the first failure
func (a *app) refresh(ctx context.Context, resources ...state.Resource) error {
	for _, r := range resources {
		if err := a.scheduler.Refresh(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) vatRate() decimal.Decimal {
	return decimal.NewFromFloat(a.cfg.Display.VATRate)
}

// withApp builds the session for a command and closes it afterwards
func withApp(run func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd.Context(), a, args)
	}
}

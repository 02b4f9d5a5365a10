package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vsinha/procurement/pkg/application/dto"
	"github.com/vsinha/procurement/pkg/application/services/lifecycle"
	"github.com/vsinha/procurement/pkg/application/services/scheduler"
	"github.com/vsinha/procurement/pkg/application/state"
	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/domain/errors"
	"github.com/vsinha/procurement/pkg/infrastructure/config"
	"github.com/vsinha/procurement/pkg/infrastructure/events"
)

var watchView string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the dashboard in sync and act on it interactively",
	Long: `Poll the service for the active view and print what happens. Commands
are read from standard input, one per line:

  view <name>              switch view (market, inventory, contracts,
                           orders, analytics, forecast, scenario)
  show                     print the active view
  submit <qty> <product>   submit an order, product by name or #<id>
  approve <order-id>       approve a pending order
  reject <order-id>        reject a pending order
  role <employee|manager>  change the acting role
  scenario <delay> <spike> change the what-if parameters
  sim                      start or stop the simulation clock
  quit                     stop watching

Changes to scenario or role in the config file are applied while running.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return runWatch(cmd.Context(), a, cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchView, "view", "", "initial view (default sync.initial_view)")
}

// watchedEvents are echoed to the user; resource.applied would fire every tick
var watchedEvents = []string{
	events.OrderSubmittedEvent,
	events.OrderApprovedEvent,
	events.OrderRejectedEvent,
	events.OrderActionFailedEvent,
	events.ResourceFetchFailedEvent,
	events.ScenarioChangedEvent,
	events.ViewActivatedEvent,
}

// session serializes output from the event handlers, the config watcher
// and the command loop.
type session struct {
	app *app
	mu  sync.Mutex
}

func runWatch(ctx context.Context, a *app, in io.Reader) error {
	s := &session{app: a}

	handler := events.HandlerFunc(func(event events.Event) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return a.printer.Event(event)
	})
	if err := a.events.Subscribe(watchedEvents, handler); err != nil {
		return err
	}
	defer func() { _ = a.events.Unsubscribe(handler) }()

	view := watchView
	if view == "" {
		view = a.cfg.Sync.InitialView
	}
	parsed, err := scheduler.ParseView(view)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(func(e fsnotify.Event) {
			s.reload(runCtx, e.Name)
		})
		viper.WatchConfig()
	}

	if err := a.scheduler.Activate(runCtx, parsed); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- a.scheduler.Run(runCtx) }()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-runCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-runCtx.Done():
			<-done
			return nil
		case line, ok := <-lines:
			if !ok {
				// input closed: keep syncing until interrupted
				lines = nil
				continue
			}
			quit, err := s.handle(runCtx, line)
			if err != nil {
				s.report(err)
			}
			if quit {
				cancel()
				<-done
				return nil
			}
		}
	}
}

// handle runs one input line and reports whether the session should end
func (s *session) handle(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	a := s.app

	switch fields[0] {
	case "quit", "exit":
		return true, nil
	case "view":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: view <name>")
		}
		view, err := scheduler.ParseView(fields[1])
		if err != nil {
			return false, err
		}
		return false, a.scheduler.Activate(ctx, view)
	case "show":
		return false, s.show()
	case "submit":
		if len(fields) < 3 {
			return false, fmt.Errorf("usage: submit <qty> <product>")
		}
		qty, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return false, fmt.Errorf("invalid quantity %q", fields[1])
		}
		ref := parseProductRef(strings.Join(fields[2:], " "))
		if ref.ID == nil {
			// names resolve against the catalog, which the active view may not keep fresh
			if err := a.refresh(ctx, state.ResourceProducts); err != nil {
				return false, err
			}
		}
		_, err = a.lifecycle.Submit(ctx, lifecycle.SubmitRequest{
			Product:   ref,
			Quantity:  qty,
			OrderType: entities.OrderType(a.cfg.Orders.DefaultType),
		})
		return false, err
	case "approve", "reject":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: %s <order-id>", fields[0])
		}
		id := entities.OrderID(fields[1])
		if fields[0] == "approve" {
			return false, a.lifecycle.Approve(ctx, a.store.Role(), id)
		}
		return false, a.lifecycle.Reject(ctx, a.store.Role(), id)
	case "role":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: role <employee|manager>")
		}
		role, err := entities.ParseRole(fields[1])
		if err != nil {
			return false, err
		}
		a.store.SetRole(role)
		return false, nil
	case "scenario":
		if len(fields) != 3 {
			return false, fmt.Errorf("usage: scenario <delay-days> <spike-pct>")
		}
		delay, err1 := strconv.Atoi(fields[1])
		spike, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil {
			return false, fmt.Errorf("scenario values must be whole numbers")
		}
		_, err := a.scenario.Set(ctx, entities.ScenarioParameters{DelayDays: delay, DemandSpikePct: spike})
		return false, err
	case "sim":
		_, err := a.workspace.ToggleSimulation(ctx)
		return false, err
	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
}

// show prints the active view from the last applied snapshots
func (s *session) show() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.app
	view, ok := a.scheduler.ActiveView()
	if !ok {
		return nil
	}

	switch view {
	case scheduler.ViewOrders:
		return a.printer.Orders(a.orderRows())
	case scheduler.ViewMarket, scheduler.ViewInventory:
		return a.printer.Inventory(dto.NewInventoryRows(a.store.Products()))
	case scheduler.ViewForecast:
		return a.printer.Forecast("Forecast", dto.NewForecastRows(a.store.Forecast()))
	case scheduler.ViewScenario:
		classified, _ := a.store.Scenario()
		return a.printer.Forecast(scenarioTitle(a.store.ScenarioParameters()), dto.NewForecastRows(classified))
	default:
		return a.printer.Status(dto.NewStatusSummary(a.store, recentEvents))
	}
}

// reload applies scenario and role changes from the config file
func (s *session) reload(ctx context.Context, file string) {
	a := s.app
	cfg, err := config.Load()
	if err != nil {
		a.logger.Warn("ignoring invalid config change", zap.String("file", file), zap.Error(err))
		return
	}
	if role, err := entities.ParseRole(cfg.User.Role); err == nil && role != a.store.Role() {
		a.store.SetRole(role)
		a.logger.Info("role changed", zap.String("role", string(role)))
	}
	params := entities.ScenarioParameters{DelayDays: cfg.Scenario.DelayDays, DemandSpikePct: cfg.Scenario.DemandSpikePct}
	if _, err := a.scenario.Set(ctx, params); err != nil {
		a.logger.Warn("ignoring scenario from config", zap.Error(err))
	}
}

func (s *session) report(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.app.printer.Value(map[string]string{"error": errors.UserMessage(err)}, "error: "+errors.UserMessage(err))
}

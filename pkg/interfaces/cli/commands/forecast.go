package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/procurement/pkg/application/dto"
	"github.com/vsinha/procurement/pkg/application/state"
	"github.com/vsinha/procurement/pkg/domain/entities"
)

var (
	scenarioDelay int
	scenarioSpike int
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Show the stock forecast with replenishment advice",
	Long: `Show how many days each product lasts, graded against its lead time:
critical when stock runs out before a new order could arrive, warning
when the margin is under two days, safe otherwise. Restock is advised
whenever the margin is under three days.`,
	RunE: withApp(runForecast),
}

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Project the forecast under a supplier delay and demand spike",
}

func init() {
	scenarioCmd.RunE = withApp(runScenario)

	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(scenarioCmd)

	scenarioCmd.Flags().IntVar(&scenarioDelay, "delay", 0, "supplier delay in days (default scenario.delay_days)")
	scenarioCmd.Flags().IntVar(&scenarioSpike, "spike", 0, "demand spike in percent (default scenario.demand_spike_pct)")
}

func runForecast(ctx context.Context, a *app, _ []string) error {
	if err := a.refresh(ctx, state.ResourceProducts, state.ResourceForecast); err != nil {
		return err
	}
	return a.printer.Forecast("Forecast", dto.NewForecastRows(a.store.Forecast()))
}

func runScenario(ctx context.Context, a *app, _ []string) error {
	params := a.scenario.Current()
	if scenarioCmd.Flags().Changed("delay") {
		params.DelayDays = scenarioDelay
	}
	if scenarioCmd.Flags().Changed("spike") {
		params.DemandSpikePct = scenarioSpike
	}

	if err := a.refresh(ctx, state.ResourceProducts); err != nil {
		return err
	}

	changed, err := a.scenario.Set(ctx, params)
	if err != nil {
		return err
	}
	if changed {
		a.scheduler.Wait()
	} else if err := a.refresh(ctx, state.ResourceScenario); err != nil {
		return err
	}

	classified, ok := a.store.Scenario()
	if !ok {
		return fmt.Errorf("no projection available for %s", params.RequestKey())
	}
	return a.printer.Forecast(scenarioTitle(params), dto.NewForecastRows(classified))
}

func scenarioTitle(p entities.ScenarioParameters) string {
	return fmt.Sprintf("What-if: +%d days delay, +%d%% demand", p.DelayDays, p.DemandSpikePct)
}

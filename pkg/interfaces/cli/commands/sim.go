package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/procurement/pkg/application/dto"
	"github.com/vsinha/procurement/pkg/application/state"
)

const recentEvents = 5

var advanceDays int

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Inspect and control the simulation clock",
	RunE:  withApp(runSimStatus),
}

var simStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the simulated date, counters and recent events",
	RunE:  withApp(runSimStatus),
}

var simStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the simulation clock",
	RunE:  withApp(runSimSwitch(true)),
}

var simStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the simulation clock",
	RunE:  withApp(runSimSwitch(false)),
}

var simAdvanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Advance the offline simulation by whole days",
	RunE:  withApp(runSimAdvance),
}

func init() {
	rootCmd.AddCommand(simCmd)
	simCmd.AddCommand(simStatusCmd)
	simCmd.AddCommand(simStartCmd)
	simCmd.AddCommand(simStopCmd)
	simCmd.AddCommand(simAdvanceCmd)

	simAdvanceCmd.Flags().IntVarP(&advanceDays, "days", "d", 1, "number of days to simulate")
}

func runSimStatus(ctx context.Context, a *app, _ []string) error {
	if err := a.refresh(ctx, state.ResourceClock, state.ResourceClockEvents, state.ResourceDashboard); err != nil {
		return err
	}
	return a.printer.Status(dto.NewStatusSummary(a.store, recentEvents))
}

func runSimSwitch(running bool) func(ctx context.Context, a *app, args []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		if err := a.refresh(ctx, state.ResourceClock); err != nil {
			return err
		}
		if clock, ok := a.store.Clock(); !ok || clock.IsRunning != running {
			if _, err := a.workspace.ToggleSimulation(ctx); err != nil {
				return err
			}
		}
		return runSimStatus(ctx, a, args)
	}
}

func runSimAdvance(ctx context.Context, a *app, args []string) error {
	if a.offline == nil {
		return fmt.Errorf("advance is only available with --offline")
	}
	if advanceDays <= 0 {
		return fmt.Errorf("days must be positive, got %d", advanceDays)
	}
	for i := 0; i < advanceDays; i++ {
		a.offline.AdvanceDay()
	}
	return runSimStatus(ctx, a, args)
}

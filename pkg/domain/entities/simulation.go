package entities

import "time"

// SimulationClock is the service's virtual calendar. Read-only to the client
// apart from toggling whether it runs.
type SimulationClock struct {
	CurrentDate time.Time
	IsRunning   bool
}

// SimulationEvent is one entry of the service's append-only action log
type SimulationEvent struct {
	Sequence int
	Date     time.Time
	Kind     string
	Message  string
}

// DashboardSnapshot aggregates inventory and order counters
type DashboardSnapshot struct {
	TotalItems     float64
	LowStockCount  int
	PendingOrders  int
	InventoryValue float64
	GeneratedAt    time.Time
}

// HistoryPoint is one day of the historical time series
type HistoryPoint struct {
	Date          time.Time
	TotalItems    float64
	LowStockCount int
	PendingOrders int
}

package memory

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/procurement/pkg/domain/entities"
)

func (s *Service) GetDashboard(ctx context.Context) (*entities.DashboardSnapshot, error) {
	if err := checkContext(ctx, "get dashboard"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value := decimal.Zero
	lowStock := 0
	for _, item := range s.items {
		value = value.Add(item.unitCost.Mul(decimal.NewFromFloat(item.product.CurrentStock)))
		if item.product.IsLowStock() {
			lowStock++
		}
	}

	return &entities.DashboardSnapshot{
		TotalItems:     s.totalItems(),
		LowStockCount:  lowStock,
		PendingOrders:  s.countStatus(entities.StatusPendingApproval),
		InventoryValue: value.Round(2).InexactFloat64(),
		GeneratedAt:    s.clock.CurrentDate,
	}, nil
}

func (s *Service) GetHistory(ctx context.Context) ([]entities.HistoryPoint, error) {
	if err := checkContext(ctx, "get history"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.HistoryPoint(nil), s.history...), nil
}

// GetForecast projects every product's runway at its learned burn rate
func (s *Service) GetForecast(ctx context.Context) ([]entities.ForecastEntry, error) {
	if err := checkContext(ctx, "get forecast"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project(0, 0), nil
}

// GetScenario projects runways with demand scaled up by the spike and
// every lead time extended by the delay.
func (s *Service) GetScenario(ctx context.Context, params entities.ScenarioParameters) (*entities.ScenarioProjection, error) {
	if err := checkContext(ctx, "get scenario"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return &entities.ScenarioProjection{
		Parameters: params,
		Entries:    s.project(params.DelayDays, params.DemandSpikePct),
	}, nil
}

// project must be called with the lock held
func (s *Service) project(delayDays, spikePct int) []entities.ForecastEntry {
	entries := make([]entities.ForecastEntry, 0, len(s.items))
	for _, item := range s.items {
		burn := maxBurn(item.burnRate * (1 + float64(spikePct)/100))
		daysLeft := item.product.CurrentStock / burn
		leadTime := item.product.EffectiveLeadTime() + delayDays

		entry := entities.ForecastEntry{
			ProductID:          item.product.ID,
			ProductName:        item.product.Name,
			CurrentStock:       item.product.CurrentStock,
			BurnRate:           round(burn, 2),
			DaysLeft:           round(daysLeft, 1),
			LeadTimeDays:       &leadTime,
			ServerStatus:       serverStatus(daysLeft, leadTime),
			RestockRecommended: daysLeft < float64(leadTime),
		}
		if incoming, next := s.incoming(item.product.ID); incoming > 0 {
			entry.IncomingStock = &incoming
			entry.NextDeliveryDate = next
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DaysLeft < entries[j].DaysLeft
	})
	if len(entries) > forecastLimit {
		entries = entries[:forecastLimit]
	}
	return entries
}

func (s *Service) incoming(id entities.ProductID) (float64, *time.Time) {
	total := 0.0
	var next *time.Time
	for _, o := range s.orders {
		if o.Status != entities.StatusOrdered || o.ProductID == nil || *o.ProductID != id {
			continue
		}
		total += o.Quantity
		if next == nil || o.EstimatedDelivery.Before(*next) {
			date := o.EstimatedDelivery
			next = &date
		}
	}
	return total, next
}

// serverStatus is the backend's own coarse grading, sent alongside the data
func serverStatus(daysLeft float64, leadTime int) string {
	switch {
	case daysLeft < float64(leadTime):
		return "critical"
	case daysLeft < float64(leadTime)*1.5:
		return "warning"
	default:
		return "safe"
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

package memory

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/procurement/pkg/domain/entities"
)

const eventLogLimit = 50

func (s *Service) GetClock(ctx context.Context) (*entities.SimulationClock, error) {
	if err := checkContext(ctx, "get clock"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	clock := s.clock
	return &clock, nil
}

// ListClockEvents returns the most recent log entries, newest first
func (s *Service) ListClockEvents(ctx context.Context) ([]entities.SimulationEvent, error) {
	if err := checkContext(ctx, "list clock events"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]entities.SimulationEvent, 0, eventLogLimit)
	for i := len(s.log) - 1; i >= 0 && len(events) < eventLogLimit; i-- {
		events = append(events, s.log[i])
	}
	return events, nil
}

// StartClock advances one day per configured day length until stopped.
// Starting a running clock does nothing.
func (s *Service) StartClock(ctx context.Context) error {
	if err := checkContext(ctx, "start clock"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock.IsRunning {
		return nil
	}
	s.clock.IsRunning = true
	s.stopRun = make(chan struct{})
	s.record("clock", "Simulation started")

	stop := s.stopRun
	s.running.Add(1)
	go s.run(stop)
	return nil
}

func (s *Service) StopClock(ctx context.Context) error {
	if err := checkContext(ctx, "stop clock"); err != nil {
		return err
	}

	s.mu.Lock()
	if !s.clock.IsRunning {
		s.mu.Unlock()
		return nil
	}
	s.clock.IsRunning = false
	close(s.stopRun)
	s.stopRun = nil
	s.record("clock", "Simulation stopped")
	s.mu.Unlock()

	s.running.Wait()
	return nil
}

func (s *Service) run(stop <-chan struct{}) {
	defer s.running.Done()

	ticker := time.NewTicker(s.options.DayLength)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.AdvanceDay()
		}
	}
}

// AdvanceDay runs one simulated day: consumption with a burn rate update,
// due deliveries, automatic replenishment and the daily history point.
func (s *Service) AdvanceDay() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock.CurrentDate = s.clock.CurrentDate.AddDate(0, 0, 1)
	today := s.clock.CurrentDate

	for _, item := range s.items {
		consumed := math.Min(item.product.CurrentStock, item.burnRate)
		item.product.CurrentStock -= consumed
		item.burnRate = item.burnRate*(1-emaAlpha) + consumed*emaAlpha
	}

	delivered := 0
	for _, o := range s.orders {
		if o.Status != entities.StatusOrdered || o.EstimatedDelivery.After(today) {
			continue
		}
		o.Status = entities.StatusDelivered
		delivered++
		if o.ProductID != nil {
			if item, ok := s.byID[*o.ProductID]; ok {
				item.product.CurrentStock += o.Quantity
				s.record("delivery", fmt.Sprintf("Received %v %s of %s (order %s)", o.Quantity, item.product.Unit, item.product.Name, o.ID))
			}
		}
	}

	lowStock := 0
	for _, item := range s.items {
		if !item.product.IsLowStock() {
			continue
		}
		lowStock++
		if s.hasOpenOrder(item.product.ID) {
			continue
		}
		qty := math.Max(minReorderQty, item.product.MinStockLevel*2-item.product.CurrentStock)
		total := item.unitCost.Mul(decimal.NewFromFloat(qty)).Round(2)
		order := s.newOrder(orderID("AUTO", 6), item, qty, total, entities.OrderTypeAutomatic, entities.StatusOrdered)
		s.orders = append(s.orders, order)
		s.record("replenishment", fmt.Sprintf("Automatic order %s for %v %s of %s", order.ID, qty, item.product.Unit, item.product.Name))
	}

	s.history = append(s.history, entities.HistoryPoint{
		Date:          today,
		TotalItems:    s.totalItems(),
		LowStockCount: lowStock,
		PendingOrders: s.countStatus(entities.StatusPendingApproval),
	})

	s.logger.Debug("day advanced",
		zap.Time("date", today),
		zap.Int("delivered", delivered),
		zap.Int("low_stock", lowStock),
	)
}

func (s *Service) totalItems() float64 {
	total := 0.0
	for _, item := range s.items {
		total += item.product.CurrentStock
	}
	return total
}

func (s *Service) countStatus(status entities.OrderStatus) int {
	count := 0
	for _, o := range s.orders {
		if o.Status == status {
			count++
		}
	}
	return count
}

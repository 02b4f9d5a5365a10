package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/domain/errors"
)

// ListOrders returns the newest orders first
func (s *Service) ListOrders(ctx context.Context) ([]entities.Order, error) {
	if err := checkContext(ctx, "list orders"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]entities.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, copyOrder(o))
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if len(orders) > ordersLimit {
		orders = orders[:ordersLimit]
	}
	return orders, nil
}

func (s *Service) GetOrder(ctx context.Context, id entities.OrderID) (*entities.Order, error) {
	if err := checkContext(ctx, "get order"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	order, err := s.findOrder("get order", id)
	if err != nil {
		return nil, err
	}
	copied := copyOrder(order)
	return &copied, nil
}

// CreateOrder prices the order from the active contract, or the unit cost
// when there is none. Orders above the auto-approve limit wait for a manager.
func (s *Service) CreateOrder(ctx context.Context, draft entities.OrderDraft) (*entities.Order, error) {
	if err := checkContext(ctx, "create order"); err != nil {
		return nil, err
	}
	if draft.Quantity <= 0 {
		return nil, errors.NewRemoteStatusError("create order", 422, "quantity must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.byID[draft.ProductID]
	if !ok {
		return nil, errors.NewRemoteStatusError("create order", 404, fmt.Sprintf("Product with ID %d not found", draft.ProductID))
	}

	unitPrice := item.unitCost
	if item.product.ActiveContract != nil {
		unitPrice = item.product.ActiveContract.Price
	}
	total := unitPrice.Mul(decimal.NewFromFloat(draft.Quantity)).Round(2)

	status := entities.StatusOrdered
	if total.GreaterThan(s.options.AutoApproveLimit) {
		status = entities.StatusPendingApproval
	}

	orderType := draft.OrderType
	if orderType == "" {
		orderType = entities.OrderTypeStandard
	}

	order := s.newOrder(orderID("ORD", 8), item, draft.Quantity, total, orderType, status)
	s.orders = append(s.orders, order)
	s.record("order", fmt.Sprintf("Order %s for %v %s of %s is %s", order.ID, draft.Quantity, item.product.Unit, item.product.Name, status.Label()))

	s.logger.Debug("order created",
		zap.String("order_id", string(order.ID)),
		zap.String("status", status.String()),
		zap.String("total", total.StringFixed(2)),
	)

	copied := copyOrder(order)
	return &copied, nil
}

func (s *Service) ApproveOrder(ctx context.Context, id entities.OrderID) error {
	return s.transition(ctx, "approve order", id, entities.StatusOrdered)
}

func (s *Service) RejectOrder(ctx context.Context, id entities.OrderID) error {
	return s.transition(ctx, "reject order", id, entities.StatusCancelled)
}

func (s *Service) transition(ctx context.Context, op string, id entities.OrderID, next entities.OrderStatus) error {
	if err := checkContext(ctx, op); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.findOrder(op, id)
	if err != nil {
		return err
	}
	if !order.Status.CanTransitionTo(next) {
		return errors.NewRemoteStatusError(op, 400, fmt.Sprintf("Order %s is not awaiting approval", id))
	}

	order.Status = next
	if next == entities.StatusOrdered {
		// delivery is counted from the approval date
		order.EstimatedDelivery = s.clock.CurrentDate.AddDate(0, 0, s.leadTime(order))
	}
	s.record("order", fmt.Sprintf("Order %s is %s", id, next.Label()))
	return nil
}

func (s *Service) newOrder(
	id entities.OrderID,
	item *stockItem,
	quantity float64,
	total decimal.Decimal,
	orderType entities.OrderType,
	status entities.OrderStatus,
) *entities.Order {
	productID := item.product.ID
	now := s.clock.CurrentDate
	// orders placed on the same simulated day keep their creation order
	return &entities.Order{
		ID:                id,
		Status:            status,
		ProductID:         &productID,
		Product:           &entities.ProductSummary{ID: productID, Name: item.product.Name},
		Quantity:          quantity,
		TotalPrice:        total,
		OrderType:         orderType,
		CreatedAt:         now.Add(time.Duration(len(s.orders)) * time.Nanosecond),
		PaymentTermsDays:  paymentTermsDays,
		EstimatedDelivery: now.AddDate(0, 0, item.product.EffectiveLeadTime()),
	}
}

func (s *Service) findOrder(op string, id entities.OrderID) (*entities.Order, error) {
	for _, o := range s.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, errors.NewRemoteStatusError(op, 404, fmt.Sprintf("Order %s not found", id))
}

func (s *Service) leadTime(order *entities.Order) int {
	if order.ProductID != nil {
		if item, ok := s.byID[*order.ProductID]; ok {
			return item.product.EffectiveLeadTime()
		}
	}
	return entities.DefaultLeadTimeDays
}

func (s *Service) hasOpenOrder(id entities.ProductID) bool {
	for _, o := range s.orders {
		if o.ProductID != nil && *o.ProductID == id &&
			(o.Status == entities.StatusOrdered || o.Status == entities.StatusPendingApproval) {
			return true
		}
	}
	return false
}

func orderID(prefix string, length int) entities.OrderID {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return entities.OrderID(prefix + "-" + strings.ToUpper(hex[:length]))
}

func copyOrder(o *entities.Order) entities.Order {
	copied := *o
	if o.ProductID != nil {
		id := *o.ProductID
		copied.ProductID = &id
	}
	if o.Product != nil {
		summary := *o.Product
		copied.Product = &summary
	}
	return copied
}

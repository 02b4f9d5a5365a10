package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/procurement/pkg/application/state"
	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/domain/errors"
	"github.com/vsinha/procurement/pkg/domain/repositories"
	"github.com/vsinha/procurement/pkg/infrastructure/events"
)

// Refresher forces a refetch of one resource and waits for it to land
type Refresher interface {
	Refresh(ctx context.Context, resource state.Resource) error
}

// SubmitRequest describes a new order as entered by the user
type SubmitRequest struct {
	Product   entities.ProductRef
	Quantity  float64
	OrderType entities.OrderType
}

// Service drives orders through submission and the manager decision.
// The service is authoritative for status; nothing here predicts it.
type Service struct {
	orders    repositories.OrderRepository
	store     *state.Store
	refresher Refresher
	publisher events.Publisher
	logger    *zap.Logger
}

func NewService(
	orders repositories.OrderRepository,
	store *state.Store,
	refresher Refresher,
	publisher events.Publisher,
	logger *zap.Logger,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:    orders,
		store:     store,
		refresher: refresher,
		publisher: publisher,
		logger:    logger.Named("lifecycle"),
	}
}

// Submit creates an order and returns it exactly as the service stored it.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*entities.Order, error) {
	if !(req.Quantity > 0) {
		err := errors.NewValidationError("quantity", fmt.Sprintf("got %v", req.Quantity), errors.ErrInvalidQuantity)
		return nil, s.fail(entities.ActionSubmit, "", err)
	}

	productID, err := s.store.ResolveProduct(req.Product)
	if err != nil {
		return nil, s.fail(entities.ActionSubmit, "", err)
	}

	draft, err := entities.NewOrderDraft(productID, req.Quantity, req.OrderType)
	if err != nil {
		return nil, s.fail(entities.ActionSubmit, "", errors.NewValidationError("quantity", err.Error(), errors.ErrInvalidQuantity))
	}

	order, err := s.orders.CreateOrder(ctx, *draft)
	if err != nil {
		return nil, s.fail(entities.ActionSubmit, "", err)
	}

	s.logger.Info("order submitted",
		zap.String("order_id", string(order.ID)),
		zap.Int64("product_id", int64(productID)),
		zap.Float64("quantity", req.Quantity),
		zap.String("status", order.Status.String()),
	)
	s.publisher.Publish(events.NewOrderSubmitted(order))
	s.refresh(ctx)

	return order, nil
}

// Approve moves a pending order to ordered. Only a manager sees the control.
func (s *Service) Approve(ctx context.Context, role entities.Role, id entities.OrderID) error {
	return s.decide(ctx, entities.ActionApprove, role, id)
}

// Reject cancels a pending order. Only a manager sees the control.
func (s *Service) Reject(ctx context.Context, role entities.Role, id entities.OrderID) error {
	return s.decide(ctx, entities.ActionReject, role, id)
}

func (s *Service) decide(ctx context.Context, action entities.OrderAction, role entities.Role, id entities.OrderID) error {
	if !role.CanDecide() {
		err := errors.NewValidationError("role", fmt.Sprintf("%s cannot %s orders", role, action), errors.ErrNotPermitted)
		return s.fail(action, id, err)
	}

	order, ok := s.store.Order(id)
	if !ok {
		return s.fail(action, id, errors.NewValidationError("order", fmt.Sprintf("order %s is not loaded", id), errors.ErrUnknownOrder))
	}
	if _, ok := order.Status.UserTransition(action); !ok {
		err := errors.NewValidationError("status", fmt.Sprintf("cannot %s an order that is %s", action, order.Status), errors.ErrInvalidTransition)
		return s.fail(action, id, err)
	}

	var err error
	switch action {
	case entities.ActionApprove:
		err = s.orders.ApproveOrder(ctx, id)
	case entities.ActionReject:
		err = s.orders.RejectOrder(ctx, id)
	}
	if err != nil {
		return s.fail(action, id, err)
	}

	s.logger.Info("order decided",
		zap.String("order_id", string(id)),
		zap.String("action", string(action)),
		zap.String("role", string(role)),
	)
	if action == entities.ActionApprove {
		s.publisher.Publish(events.NewOrderApproved(id, role))
	} else {
		s.publisher.Publish(events.NewOrderRejected(id, role))
	}
	s.refresh(ctx)

	return nil
}

// Actions lists the controls shown for an order to the given role. A nil
// order asks for the controls that do not depend on one.
func (s *Service) Actions(role entities.Role, order *entities.Order) []entities.OrderAction {
	return Actions(role, order)
}

func Actions(role entities.Role, order *entities.Order) []entities.OrderAction {
	actions := []entities.OrderAction{entities.ActionSubmit}
	if order == nil || !role.CanDecide() {
		return actions
	}
	for _, action := range []entities.OrderAction{entities.ActionApprove, entities.ActionReject} {
		if _, ok := order.Status.UserTransition(action); ok {
			actions = append(actions, action)
		}
	}
	return actions
}

// refresh issues the single forced refetch that follows a successful write.
// The write already succeeded, so a failed refetch is only logged.
func (s *Service) refresh(ctx context.Context) {
	if s.refresher == nil {
		return
	}
	if err := s.refresher.Refresh(ctx, state.ResourceOrders); err != nil {
		s.logger.Warn("order refetch failed", zap.Error(err))
	}
}

func (s *Service) fail(action entities.OrderAction, id entities.OrderID, err error) error {
	if errors.IsUserFacing(err) {
		s.logger.Info("order action refused", zap.String("action", string(action)), zap.Error(err))
	} else {
		s.logger.Warn("order action failed", zap.String("action", string(action)), zap.Error(err))
	}
	s.publisher.Publish(events.NewOrderActionFailed(action, id, err))
	return err
}

package repositories

import (
	"context"

	"github.com/vsinha/procurement/pkg/domain/entities"
)

// OrderRepository provides access to purchase orders
type OrderRepository interface {
	ListOrders(ctx context.Context) ([]entities.Order, error)
	GetOrder(ctx context.Context, id entities.OrderID) (*entities.Order, error)
	// CreateOrder returns the order as stored by the service, including the
	// status the service chose for it.
	CreateOrder(ctx context.Context, draft entities.OrderDraft) (*entities.Order, error)
	ApproveOrder(ctx context.Context, id entities.OrderID) error
	RejectOrder(ctx context.Context, id entities.OrderID) error
}

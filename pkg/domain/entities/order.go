package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderID is the opaque identifier assigned by the service
type OrderID string

// AutoOrderPrefix marks orders raised by the remote planner. Display only.
const AutoOrderPrefix = "AUTO"

// IsAutomatic reports whether the id carries the planner prefix
func (id OrderID) IsAutomatic() bool {
	return strings.HasPrefix(string(id), AutoOrderPrefix)
}

// OrderStatus represents where an order sits in its lifecycle
type OrderStatus string

const (
	StatusPendingApproval OrderStatus = "pending_approval"
	StatusOrdered         OrderStatus = "ordered"
	StatusDelivered       OrderStatus = "delivered"
	StatusCancelled       OrderStatus = "cancelled"
)

// ParseOrderStatus converts a wire value into an OrderStatus
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPendingApproval, StatusOrdered, StatusDelivered, StatusCancelled:
		return OrderStatus(s), nil
	default:
		return "", fmt.Errorf("unknown order status: %q", s)
	}
}

// String method for OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// Label returns the dashboard wording for the status
func (s OrderStatus) Label() string {
	switch s {
	case StatusPendingApproval:
		return "Awaiting approval"
	case StatusOrdered:
		return "In transit"
	case StatusDelivered:
		return "Delivered"
	case StatusCancelled:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// transitions lists every allowed status change. Ordered -> Delivered is
// driven by the service and never requested by a user.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPendingApproval: {StatusOrdered, StatusCancelled},
	StatusOrdered:         {StatusDelivered},
}

// CanTransitionTo reports whether the lifecycle allows moving to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// OrderAction is a user-initiated operation on an order
type OrderAction string

const (
	ActionSubmit  OrderAction = "submit"
	ActionApprove OrderAction = "approve"
	ActionReject  OrderAction = "reject"
)

// UserTransition returns the status a user action leads to from s.
// Only pending orders accept approve/reject.
func (s OrderStatus) UserTransition(action OrderAction) (OrderStatus, bool) {
	if s != StatusPendingApproval {
		return "", false
	}
	switch action {
	case ActionApprove:
		return StatusOrdered, true
	case ActionReject:
		return StatusCancelled, true
	default:
		return "", false
	}
}

// OrderType tags how an order was sourced
type OrderType string

const (
	OrderTypeStandard  OrderType = "standard"
	OrderTypeCost      OrderType = "cost"
	OrderTypeRisk      OrderType = "risk"
	OrderTypeAutomatic OrderType = "automatic"
)

// Order is a purchase order as returned by the service
type Order struct {
	ID                OrderID
	Status            OrderStatus
	ProductID         *ProductID
	Product           *ProductSummary
	Quantity          float64
	TotalPrice        decimal.Decimal
	OrderType         OrderType
	CreatedAt         time.Time
	PaymentTermsDays  int
	EstimatedDelivery time.Time
	DelayDays         int
}

// ProductSummary is the product detail optionally embedded in an order
type ProductSummary struct {
	ID   ProductID
	Name string
}

// ProductName returns the embedded product name, or an empty string
func (o Order) ProductName() string {
	if o.Product == nil {
		return ""
	}
	return o.Product.Name
}

// IsPending reports whether the order awaits a manager decision
func (o Order) IsPending() bool {
	return o.Status == StatusPendingApproval
}

// OrderDraft is the client payload for creating an order
type OrderDraft struct {
	ProductID ProductID
	Quantity  float64
	OrderType OrderType
}

// NewOrderDraft creates a validated OrderDraft
func NewOrderDraft(productID ProductID, quantity float64, orderType OrderType) (*OrderDraft, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %v", quantity)
	}
	if orderType == "" {
		orderType = OrderTypeStandard
	}
	return &OrderDraft{
		ProductID: productID,
		Quantity:  quantity,
		OrderType: orderType,
	}, nil
}

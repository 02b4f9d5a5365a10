package events

import (
	"github.com/vsinha/procurement/pkg/domain/entities"
)

const (
	OrderSubmittedEvent    = "order.submitted"
	OrderApprovedEvent     = "order.approved"
	OrderRejectedEvent     = "order.rejected"
	OrderActionFailedEvent = "order.action_failed"

	ResourceAppliedEvent     = "resource.applied"
	ResourceDiscardedEvent   = "resource.discarded"
	ResourceFetchFailedEvent = "resource.fetch_failed"

	ScenarioChangedEvent = "scenario.changed"
	ViewActivatedEvent   = "view.activated"
)

// Stream ids
const (
	OrdersStream   = "orders"
	SyncStream     = "sync"
	ScenarioStream = "scenario"
)

type OrderSubmittedData struct {
	OrderID  entities.OrderID     `json:"order_id"`
	Product  string               `json:"product"`
	Quantity float64              `json:"quantity"`
	Status   entities.OrderStatus `json:"status"`
}

type OrderDecisionData struct {
	OrderID entities.OrderID `json:"order_id"`
	Role    entities.Role    `json:"role"`
}

type OrderActionFailedData struct {
	Action  entities.OrderAction `json:"action"`
	OrderID entities.OrderID     `json:"order_id,omitempty"`
	Reason  string               `json:"reason"`
}

type ResourceData struct {
	Resource string `json:"resource"`
	Sequence uint64 `json:"sequence"`
	Reason   string `json:"reason,omitempty"`
}

type ScenarioChangedData struct {
	Previous entities.ScenarioParameters `json:"previous"`
	Current  entities.ScenarioParameters `json:"current"`
}

type ViewActivatedData struct {
	View     string   `json:"view"`
	Started  []string `json:"started"`
	Released []string `json:"released"`
}

func NewOrderSubmitted(order *entities.Order) Event {
	return NewEvent(OrderSubmittedEvent, OrdersStream, OrderSubmittedData{
		OrderID:  order.ID,
		Product:  order.ProductName(),
		Quantity: order.Quantity,
		Status:   order.Status,
	})
}

func NewOrderApproved(id entities.OrderID, role entities.Role) Event {
	return NewEvent(OrderApprovedEvent, OrdersStream, OrderDecisionData{OrderID: id, Role: role})
}

func NewOrderRejected(id entities.OrderID, role entities.Role) Event {
	return NewEvent(OrderRejectedEvent, OrdersStream, OrderDecisionData{OrderID: id, Role: role})
}

func NewOrderActionFailed(action entities.OrderAction, id entities.OrderID, err error) Event {
	return NewEvent(OrderActionFailedEvent, OrdersStream, OrderActionFailedData{
		Action:  action,
		OrderID: id,
		Reason:  err.Error(),
	})
}

func NewResourceApplied(resource string, seq uint64) Event {
	return NewEvent(ResourceAppliedEvent, SyncStream, ResourceData{Resource: resource, Sequence: seq})
}

func NewResourceDiscarded(resource string, seq uint64) Event {
	return NewEvent(ResourceDiscardedEvent, SyncStream, ResourceData{
		Resource: resource,
		Sequence: seq,
		Reason:   "superseded by a newer response",
	})
}

func NewResourceFetchFailed(resource string, seq uint64, err error) Event {
	return NewEvent(ResourceFetchFailedEvent, SyncStream, ResourceData{
		Resource: resource,
		Sequence: seq,
		Reason:   err.Error(),
	})
}

func NewScenarioChanged(previous, current entities.ScenarioParameters) Event {
	return NewEvent(ScenarioChangedEvent, ScenarioStream, ScenarioChangedData{Previous: previous, Current: current})
}

func NewViewActivated(view string, started, released []string) Event {
	return NewEvent(ViewActivatedEvent, SyncStream, ViewActivatedData{View: view, Started: started, Released: released})
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

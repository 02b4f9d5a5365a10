package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/domain/errors"
)

const (
	productsLimit = 100
	ordersLimit   = 50
	forecastLimit = 50
)

func (c *Client) ListProducts(ctx context.Context, query string) ([]entities.Product, error) {
	params := url.Values{"limit": {strconv.Itoa(productsLimit)}}
	if query != "" {
		params.Set("search", query)
	}

	var wire []wireProduct
	if err := c.get(ctx, "list products", "/products", params, &wire); err != nil {
		return nil, err
	}
	products := make([]entities.Product, 0, len(wire))
	for _, w := range wire {
		products = append(products, w.toEntity())
	}
	return products, nil
}

func (c *Client) ListAlternatives(ctx context.Context, id entities.ProductID) ([]entities.Alternative, error) {
	var wire []wireAlternative
	path := fmt.Sprintf("/products/%d/alternatives", id)
	if err := c.get(ctx, "list alternatives", path, nil, &wire); err != nil {
		return nil, err
	}
	alternatives := make([]entities.Alternative, 0, len(wire))
	for _, w := range wire {
		alternatives = append(alternatives, w.toEntity())
	}
	return alternatives, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]entities.Order, error) {
	var wire []wireOrder
	params := url.Values{"limit": {strconv.Itoa(ordersLimit)}}
	if err := c.get(ctx, "list orders", "/orders", params, &wire); err != nil {
		return nil, err
	}
	orders := make([]entities.Order, 0, len(wire))
	for _, w := range wire {
		orders = append(orders, w.toEntity())
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id entities.OrderID) (*entities.Order, error) {
	var wire wireOrder
	if err := c.get(ctx, "get order", "/orders/"+string(id), nil, &wire); err != nil {
		return nil, err
	}
	order := wire.toEntity()
	return &order, nil
}

func (c *Client) CreateOrder(ctx context.Context, draft entities.OrderDraft) (*entities.Order, error) {
	req := wireOrderCreate{
		ProductID: int64(draft.ProductID),
		Quantity:  draft.Quantity,
		OrderType: string(draft.OrderType),
	}
	var wire wireOrder
	if err := c.send(ctx, "create order", http.MethodPost, "/orders", req, &wire); err != nil {
		return nil, err
	}
	order := wire.toEntity()
	return &order, nil
}

func (c *Client) ApproveOrder(ctx context.Context, id entities.OrderID) error {
	return c.send(ctx, "approve order", http.MethodPut, "/orders/"+string(id)+"/approve", nil, nil)
}

func (c *Client) RejectOrder(ctx context.Context, id entities.OrderID) error {
	return c.send(ctx, "reject order", http.MethodPut, "/orders/"+string(id)+"/reject", nil, nil)
}

func (c *Client) GetDashboard(ctx context.Context) (*entities.DashboardSnapshot, error) {
	var wire wireDashboard
	if err := c.get(ctx, "get dashboard", "/analytics/dashboard", nil, &wire); err != nil {
		return nil, err
	}
	return wire.toEntity(), nil
}

func (c *Client) GetHistory(ctx context.Context) ([]entities.HistoryPoint, error) {
	var wire []wireHistoryPoint
	if err := c.get(ctx, "get history", "/analytics/history", nil, &wire); err != nil {
		return nil, err
	}
	history := make([]entities.HistoryPoint, 0, len(wire))
	for _, w := range wire {
		history = append(history, w.toEntity())
	}
	return history, nil
}

func (c *Client) GetForecast(ctx context.Context) ([]entities.ForecastEntry, error) {
	var wire wirePredictions
	params := url.Values{"limit": {strconv.Itoa(forecastLimit)}}
	if err := c.get(ctx, "get forecast", "/analytics/predictions", params, &wire); err != nil {
		return nil, err
	}
	return wire.toEntities(), nil
}

// GetScenario tags the projection with the parameters it was requested
// for, since the response does not echo them.
func (c *Client) GetScenario(ctx context.Context, p entities.ScenarioParameters) (*entities.ScenarioProjection, error) {
	var wire wirePredictions
	params := url.Values{
		"delay_days":       {strconv.Itoa(p.DelayDays)},
		"demand_spike_pct": {strconv.Itoa(p.DemandSpikePct)},
	}
	if err := c.get(ctx, "get scenario", "/analytics/scenario", params, &wire); err != nil {
		return nil, err
	}
	return &entities.ScenarioProjection{Parameters: p, Entries: wire.toEntities()}, nil
}

func (c *Client) GetClock(ctx context.Context) (*entities.SimulationClock, error) {
	var wire wireClock
	if err := c.get(ctx, "get clock", "/simulation/status", nil, &wire); err != nil {
		return nil, err
	}
	return &entities.SimulationClock{CurrentDate: wire.CurrentDate.value(), IsRunning: wire.IsRunning}, nil
}

func (c *Client) ListClockEvents(ctx context.Context) ([]entities.SimulationEvent, error) {
	var wire []wireClockEvent
	if err := c.get(ctx, "list clock events", "/simulation/events", nil, &wire); err != nil {
		return nil, err
	}
	events := make([]entities.SimulationEvent, 0, len(wire))
	for _, w := range wire {
		events = append(events, w.toEntity())
	}
	return events, nil
}

func (c *Client) StartClock(ctx context.Context) error {
	return c.send(ctx, "start clock", http.MethodPost, "/simulation/start", nil, nil)
}

func (c *Client) StopClock(ctx context.Context) error {
	return c.send(ctx, "stop clock", http.MethodPost, "/simulation/stop", nil, nil)
}

// UploadContract sends the document as the multipart field "file"
func (c *Client) UploadContract(ctx context.Context, filename string, content io.Reader) (*entities.ContractDraft, error) {
	const op = "upload contract"

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, errors.NewRemoteCallError(op, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, errors.NewRemoteCallError(op, fmt.Errorf("read %s: %w", filename, err))
	}
	if err := form.Close(); err != nil {
		return nil, errors.NewRemoteCallError(op, err)
	}

	var wire wireContractDraft
	if err := c.do(ctx, op, http.MethodPost, c.endpoint("/contracts/upload", nil), &body, form.FormDataContentType(), &wire); err != nil {
		return nil, err
	}
	draft, err := wire.toEntity()
	if err != nil {
		return nil, errors.NewRemoteCallError(op, err)
	}
	return draft, nil
}

func (c *Client) ConfirmContract(ctx context.Context, draft entities.ContractDraft) (*entities.ContractConfirmation, error) {
	var wire wireContractConfirmation
	if err := c.send(ctx, "confirm contract", http.MethodPost, "/contracts/confirm", newContractConfirm(draft), &wire); err != nil {
		return nil, err
	}
	return &entities.ContractConfirmation{ContractID: wire.ContractID, Message: wire.Message}, nil
}

func (c *Client) SendMessage(ctx context.Context, message string) (*entities.ChatReply, error) {
	var wire wireChatReply
	if err := c.send(ctx, "send message", http.MethodPost, "/assistant/chat", wireChatRequest{Message: message}, &wire); err != nil {
		return nil, err
	}
	return &entities.ChatReply{Reply: wire.Reply, Action: wire.action()}, nil
}

func (c *Client) ReportURL() string {
	return c.endpoint("/analytics/report/pdf", nil)
}

func (c *Client) OrderDocumentURL(id entities.OrderID) string {
	return c.endpoint("/orders/"+string(id)+"/pdf", nil)
}

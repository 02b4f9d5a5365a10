package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/procurement/pkg/domain/entities"
)

// Response fields the service may omit are pointers; conversion decides
// what an absent value means.

// wireTime accepts the timestamp layouts the service emits, with or
// without a zone, and plain dates.
type wireTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

func (t *wireTime) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

func (t *wireTime) value() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.Time
}

type wireContract struct {
	SupplierName string          `json:"supplier_name"`
	Price        decimal.Decimal `json:"price"`
	ValidUntil   *wireTime       `json:"valid_until"`
}

type wireProduct struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	Category       string        `json:"category"`
	Unit           string        `json:"unit"`
	CurrentStock   *float64      `json:"current_stock"`
	MinStockLevel  *float64      `json:"min_stock_level"`
	LeadTimeDays   *int          `json:"lead_time_days"`
	ActiveContract *wireContract `json:"active_contract"`
}

func (w wireProduct) toEntity() entities.Product {
	p := entities.Product{
		ID:            entities.ProductID(w.ID),
		Name:          w.Name,
		Category:      w.Category,
		Unit:          w.Unit,
		CurrentStock:  valueOr(w.CurrentStock, 0),
		MinStockLevel: valueOr(w.MinStockLevel, 0),
		LeadTimeDays:  valueOr(w.LeadTimeDays, 0),
	}
	if w.ActiveContract != nil {
		p.ActiveContract = &entities.ContractInfo{
			SupplierName: w.ActiveContract.SupplierName,
			Price:        w.ActiveContract.Price,
			ValidUntil:   w.ActiveContract.ValidUntil.value(),
		}
	}
	return p
}

type wireAlternative struct {
	ID        *int64   `json:"id"`
	ProductID *int64   `json:"product_id"`
	Name      string   `json:"name"`
	Reason    string   `json:"reason"`
	Score     *float64 `json:"score"`
}

func (w wireAlternative) toEntity() entities.Alternative {
	id := w.ProductID
	if id == nil {
		id = w.ID
	}
	return entities.Alternative{
		Product: entities.ProductID(valueOr(id, 0)),
		Name:    w.Name,
		Reason:  w.Reason,
		Score:   valueOr(w.Score, 0),
	}
}

type wireOrder struct {
	ID                string          `json:"id"`
	ProductID         *int64          `json:"product_id"`
	Product           *wireProduct    `json:"product"`
	Quantity          float64         `json:"quantity"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	Status            string          `json:"status"`
	OrderType         *string         `json:"order_type"`
	CreatedAt         *wireTime       `json:"created_at"`
	EstimatedDelivery *wireTime       `json:"estimated_delivery"`
	PaymentTermsDays  *int            `json:"payment_terms_days"`
	DelayDays         *int            `json:"delay_days"`
}

// toEntity keeps the status exactly as sent, even when it is not one the
// client knows; such an order simply offers no controls.
func (w wireOrder) toEntity() entities.Order {
	o := entities.Order{
		ID:                entities.OrderID(w.ID),
		Status:            entities.OrderStatus(w.Status),
		Quantity:          w.Quantity,
		TotalPrice:        w.TotalPrice,
		OrderType:         entities.OrderType(valueOr(w.OrderType, string(entities.OrderTypeStandard))),
		CreatedAt:         w.CreatedAt.value(),
		EstimatedDelivery: w.EstimatedDelivery.value(),
		PaymentTermsDays:  valueOr(w.PaymentTermsDays, 0),
		DelayDays:         valueOr(w.DelayDays, 0),
	}
	if w.ProductID != nil {
		id := entities.ProductID(*w.ProductID)
		o.ProductID = &id
	}
	if w.Product != nil {
		o.Product = &entities.ProductSummary{ID: entities.ProductID(w.Product.ID), Name: w.Product.Name}
		if o.ProductID == nil {
			id := entities.ProductID(w.Product.ID)
			o.ProductID = &id
		}
	}
	return o
}

type wireOrderCreate struct {
	ProductID int64   `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	OrderType string  `json:"order_type"`
}

type wireDashboard struct {
	TotalItems     float64   `json:"total_items"`
	LowStockCount  int       `json:"low_stock_count"`
	PendingOrders  int       `json:"pending_orders"`
	InventoryValue float64   `json:"inventory_value"`
	GeneratedAt    *wireTime `json:"generated_at"`
}

func (w wireDashboard) toEntity() *entities.DashboardSnapshot {
	return &entities.DashboardSnapshot{
		TotalItems:     w.TotalItems,
		LowStockCount:  w.LowStockCount,
		PendingOrders:  w.PendingOrders,
		InventoryValue: w.InventoryValue,
		GeneratedAt:    w.GeneratedAt.value(),
	}
}

type wireHistoryPoint struct {
	Date          *wireTime `json:"date"`
	TotalItems    float64   `json:"total_items"`
	LowStockCount int       `json:"low_stock_count"`
	PendingOrders int       `json:"pending_orders"`
}

func (w wireHistoryPoint) toEntity() entities.HistoryPoint {
	return entities.HistoryPoint{
		Date:          w.Date.value(),
		TotalItems:    w.TotalItems,
		LowStockCount: w.LowStockCount,
		PendingOrders: w.PendingOrders,
	}
}

type wirePrediction struct {
	ID                 int64     `json:"id"`
	ProductName        string    `json:"product_name"`
	CurrentStock       float64   `json:"current_stock"`
	BurnRate           float64   `json:"burn_rate"`
	DaysLeft           float64   `json:"days_left"`
	LeadTimeDays       *int      `json:"lead_time_days"`
	IncomingStock      *float64  `json:"incoming_stock"`
	NextDeliveryDate   *wireTime `json:"next_delivery_date"`
	Status             string    `json:"status"`
	RestockRecommended bool      `json:"restock_recommended"`
}

func (w wirePrediction) toEntity() entities.ForecastEntry {
	return entities.ForecastEntry{
		ProductID:          entities.ProductID(w.ID),
		ProductName:        w.ProductName,
		CurrentStock:       w.CurrentStock,
		BurnRate:           w.BurnRate,
		DaysLeft:           w.DaysLeft,
		LeadTimeDays:       w.LeadTimeDays,
		IncomingStock:      w.IncomingStock,
		NextDeliveryDate:   w.NextDeliveryDate.ptr(),
		ServerStatus:       w.Status,
		RestockRecommended: w.RestockRecommended,
	}
}

// wirePredictions accepts either a bare list or an object wrapping one
type wirePredictions []wirePrediction

func (w *wirePredictions) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Items       []wirePrediction `json:"items"`
			Predictions []wirePrediction `json:"predictions"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return err
		}
		if wrapped.Predictions != nil {
			*w = wrapped.Predictions
		} else {
			*w = wrapped.Items
		}
		return nil
	}
	var list []wirePrediction
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return err
	}
	*w = list
	return nil
}

func (w wirePredictions) toEntities() []entities.ForecastEntry {
	entries := make([]entities.ForecastEntry, 0, len(w))
	for _, p := range w {
		entries = append(entries, p.toEntity())
	}
	return entries
}

type wireClock struct {
	CurrentDate *wireTime `json:"current_date"`
	IsRunning   bool      `json:"is_running"`
}

type wireClockEvent struct {
	ID       *int      `json:"id"`
	Sequence *int      `json:"sequence"`
	Date     *wireTime `json:"date"`
	Type     string    `json:"type"`
	Kind     string    `json:"kind"`
	Message  string    `json:"message"`
}

func (w wireClockEvent) toEntity() entities.SimulationEvent {
	seq := w.Sequence
	if seq == nil {
		seq = w.ID
	}
	kind := w.Kind
	if kind == "" {
		kind = w.Type
	}
	return entities.SimulationEvent{
		Sequence: valueOr(seq, 0),
		Date:     w.Date.value(),
		Kind:     kind,
		Message:  w.Message,
	}
}

type wireContractDraft struct {
	SupplierName string      `json:"supplier_name"`
	ProductName  string      `json:"product_name"`
	Price        json.Number `json:"price"`
	ValidUntil   *wireTime   `json:"valid_until,omitempty"`
}

func (w wireContractDraft) toEntity() (*entities.ContractDraft, error) {
	price := decimal.Zero
	if w.Price != "" {
		parsed, err := decimal.NewFromString(w.Price.String())
		if err != nil {
			return nil, fmt.Errorf("invalid price %q: %w", w.Price, err)
		}
		price = parsed
	}
	return &entities.ContractDraft{
		SupplierName: w.SupplierName,
		ProductName:  w.ProductName,
		Price:        price,
		ValidUntil:   w.ValidUntil.ptr(),
	}, nil
}

// wireContractConfirm is the request body; the service reads dates in
// ISO form.
type wireContractConfirm struct {
	SupplierName string      `json:"supplier_name"`
	ProductName  string      `json:"product_name"`
	Price        json.Number `json:"price"`
	ValidUntil   *string     `json:"valid_until,omitempty"`
}

func newContractConfirm(d entities.ContractDraft) wireContractConfirm {
	w := wireContractConfirm{
		SupplierName: d.SupplierName,
		ProductName:  d.ProductName,
		Price:        json.Number(d.Price.String()),
	}
	if d.ValidUntil != nil {
		s := d.ValidUntil.Format("2006-01-02T15:04:05")
		w.ValidUntil = &s
	}
	return w
}

type wireContractConfirmation struct {
	ContractID int64  `json:"contract_id"`
	Message    string `json:"message"`
}

type wireChatRequest struct {
	Message string `json:"message"`
}

type wireChatReply struct {
	Reply  string          `json:"reply"`
	Action json.RawMessage `json:"action"`
}

// action accepts a bare action name or an object with type and target
func (w wireChatReply) action() *entities.SuggestedAction {
	raw := bytes.TrimSpace(w.Action)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		if name == "" {
			return nil
		}
		return &entities.SuggestedAction{Kind: entities.AssistantAction(name)}
	}

	var obj struct {
		Type   string `json:"type"`
		Kind   string `json:"kind"`
		Target string `json:"target"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	kind := obj.Type
	if kind == "" {
		kind = obj.Kind
	}
	if kind == "" {
		return nil
	}
	return &entities.SuggestedAction{Kind: entities.AssistantAction(kind), Target: obj.Target}
}

func valueOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

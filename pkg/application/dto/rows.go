// Package dto holds the flattened rows the CLI renders.
package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/procurement/pkg/application/services/lifecycle"
	"github.com/vsinha/procurement/pkg/application/state"
	"github.com/vsinha/procurement/pkg/domain/entities"
)

// OrderRow is one line of the orders table
type OrderRow struct {
	ID                string          `json:"id" yaml:"id"`
	Product           string          `json:"product" yaml:"product"`
	Quantity          float64         `json:"quantity" yaml:"quantity"`
	Status            string          `json:"status" yaml:"status"`
	StatusLabel       string          `json:"status_label" yaml:"status_label"`
	OrderType         string          `json:"order_type" yaml:"order_type"`
	Automatic         bool            `json:"automatic" yaml:"automatic"`
	Gross             decimal.Decimal `json:"gross" yaml:"gross"`
	Net               decimal.Decimal `json:"net" yaml:"net"`
	VAT               decimal.Decimal `json:"vat" yaml:"vat"`
	CreatedAt         time.Time       `json:"created_at" yaml:"created_at"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty" yaml:"estimated_delivery,omitempty"`
	// Actions lists the decision controls offered to the current role.
	Actions []string `json:"actions" yaml:"actions"`
}

// NewOrderRows builds order rows. Totals from the service are gross; net
// and VAT are derived with vatRate. Products resolve names for orders that
// arrived without an embedded product.
func NewOrderRows(orders []entities.Order, products []entities.Product, role entities.Role, vatRate decimal.Decimal) []OrderRow {
	names := make(map[entities.ProductID]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	rows := make([]OrderRow, 0, len(orders))
	for i := range orders {
		order := orders[i]
		net, vat := SplitGross(order.TotalPrice, vatRate)

		row := OrderRow{
			ID:          string(order.ID),
			Product:     orderProduct(order, names),
			Quantity:    order.Quantity,
			Status:      order.Status.String(),
			StatusLabel: order.Status.Label(),
			OrderType:   string(order.OrderType),
			Automatic:   order.ID.IsAutomatic(),
			Gross:       order.TotalPrice,
			Net:         net,
			VAT:         vat,
			CreatedAt:   order.CreatedAt,
			Actions:     []string{},
		}
		if !order.EstimatedDelivery.IsZero() {
			eta := order.EstimatedDelivery
			row.EstimatedDelivery = &eta
		}
		for _, action := range lifecycle.Actions(role, &order) {
			if action != entities.ActionSubmit {
				row.Actions = append(row.Actions, string(action))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// SplitGross splits a gross amount into net and VAT, rounded to cents
func SplitGross(gross, vatRate decimal.Decimal) (net, vat decimal.Decimal) {
	net = gross.Div(decimal.NewFromInt(1).Add(vatRate)).Round(2)
	return net, gross.Sub(net)
}

func orderProduct(order entities.Order, names map[entities.ProductID]string) string {
	if name := order.ProductName(); name != "" {
		return name
	}
	if order.ProductID != nil {
		if name, ok := names[*order.ProductID]; ok {
			return name
		}
		return fmt.Sprintf("#%d", *order.ProductID)
	}
	return "-"
}

// ForecastRow is one line of the forecast or scenario table
type ForecastRow struct {
	ProductID    int64                 `json:"product_id" yaml:"product_id"`
	Product      string                `json:"product" yaml:"product"`
	CurrentStock float64               `json:"current_stock" yaml:"current_stock"`
	BurnRate     float64               `json:"burn_rate" yaml:"burn_rate"`
	DaysLeft     float64               `json:"days_left" yaml:"days_left"`
	LeadTimeDays int                   `json:"lead_time_days" yaml:"lead_time_days"`
	BufferDays   float64               `json:"buffer_days" yaml:"buffer_days"`
	Tier         entities.SeverityTier `json:"tier" yaml:"tier"`
	Restock      bool                  `json:"restock" yaml:"restock"`
	Incoming     float64               `json:"incoming,omitempty" yaml:"incoming,omitempty"`
}

// NewForecastRows flattens classified forecast entries
func NewForecastRows(classified []entities.ClassifiedForecast) []ForecastRow {
	rows := make([]ForecastRow, 0, len(classified))
	for _, c := range classified {
		row := ForecastRow{
			ProductID:    int64(c.Entry.ProductID),
			Product:      c.Entry.ProductName,
			CurrentStock: c.Entry.CurrentStock,
			BurnRate:     c.Entry.BurnRate,
			DaysLeft:     c.Entry.DaysLeft,
			LeadTimeDays: c.Decision.LeadTimeDays,
			BufferDays:   c.Decision.BufferDays,
			Tier:         c.Decision.Tier,
			Restock:      c.Decision.RestockRecommended,
		}
		if c.Entry.IncomingStock != nil {
			row.Incoming = *c.Entry.IncomingStock
		}
		rows = append(rows, row)
	}
	return rows
}

// InventoryRow is one line of the product table
type InventoryRow struct {
	ID           int64   `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Category     string  `json:"category" yaml:"category"`
	CurrentStock float64 `json:"current_stock" yaml:"current_stock"`
	MinStock     float64 `json:"min_stock_level" yaml:"min_stock_level"`
	Unit         string  `json:"unit" yaml:"unit"`
	LeadTimeDays int     `json:"lead_time_days" yaml:"lead_time_days"`
	LowStock     bool    `json:"low_stock" yaml:"low_stock"`
	Supplier     string  `json:"supplier,omitempty" yaml:"supplier,omitempty"`
	// ContractPrice is empty when no contract is active.
	ContractPrice string `json:"contract_price,omitempty" yaml:"contract_price,omitempty"`
}

// NewInventoryRows flattens products
func NewInventoryRows(products []entities.Product) []InventoryRow {
	rows := make([]InventoryRow, 0, len(products))
	for _, p := range products {
		row := InventoryRow{
			ID:           int64(p.ID),
			Name:         p.Name,
			Category:     p.Category,
			CurrentStock: p.CurrentStock,
			MinStock:     p.MinStockLevel,
			Unit:         p.Unit,
			LeadTimeDays: p.EffectiveLeadTime(),
			LowStock:     p.IsLowStock(),
		}
		if p.HasContract() {
			row.Supplier = p.ActiveContract.SupplierName
			row.ContractPrice = p.ActiveContract.Price.StringFixed(2)
		}
		rows = append(rows, row)
	}
	return rows
}

// AlternativeRow is one suggested substitute
type AlternativeRow struct {
	ProductID int64   `json:"product_id" yaml:"product_id"`
	Name      string  `json:"name" yaml:"name"`
	Reason    string  `json:"reason" yaml:"reason"`
	Score     float64 `json:"score" yaml:"score"`
}

// NewAlternativeRows flattens the alternatives snapshot
func NewAlternativeRows(alternatives state.Alternatives) []AlternativeRow {
	rows := make([]AlternativeRow, 0, len(alternatives.Items))
	for _, a := range alternatives.Items {
		rows = append(rows, AlternativeRow{
			ProductID: int64(a.Product),
			Name:      a.Name,
			Reason:    a.Reason,
			Score:     a.Score,
		})
	}
	return rows
}

// StatusSummary is the header of the dashboard
type StatusSummary struct {
	Date           *time.Time `json:"date,omitempty" yaml:"date,omitempty"`
	Running        bool       `json:"running" yaml:"running"`
	Role           string     `json:"role" yaml:"role"`
	TotalItems     float64    `json:"total_items" yaml:"total_items"`
	LowStockCount  int        `json:"low_stock_count" yaml:"low_stock_count"`
	PendingOrders  int        `json:"pending_orders" yaml:"pending_orders"`
	InventoryValue float64    `json:"inventory_value" yaml:"inventory_value"`
	// RecentEvents holds the newest simulation log messages.
	RecentEvents []string `json:"recent_events" yaml:"recent_events"`
}

// NewStatusSummary reads the clock, dashboard and event log from the store
func NewStatusSummary(store *state.Store, maxEvents int) StatusSummary {
	summary := StatusSummary{Role: string(store.Role()), RecentEvents: []string{}}
	if clock, ok := store.Clock(); ok {
		date := clock.CurrentDate
		summary.Date = &date
		summary.Running = clock.IsRunning
	}
	if dashboard, ok := store.Dashboard(); ok {
		summary.TotalItems = dashboard.TotalItems
		summary.LowStockCount = dashboard.LowStockCount
		summary.PendingOrders = dashboard.PendingOrders
		summary.InventoryValue = dashboard.InventoryValue
	}
	for i, event := range store.ClockEvents() {
		if i >= maxEvents {
			break
		}
		summary.RecentEvents = append(summary.RecentEvents, event.Message)
	}
	return summary
}

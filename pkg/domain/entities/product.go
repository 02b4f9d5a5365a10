package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ProductID identifies a catalog product on the remote service
type ProductID int64

// DefaultLeadTimeDays is assumed whenever a product's lead time is unknown
const DefaultLeadTimeDays = 7

// ContractInfo describes the active supply contract attached to a product
type ContractInfo struct {
	SupplierName string
	Price        decimal.Decimal
	ValidUntil   time.Time
}

// Product represents a catalog item as last reported by the service
type Product struct {
	ID             ProductID
	Name           string
	Category       string
	CurrentStock   float64
	MinStockLevel  float64
	Unit           string
	LeadTimeDays   int
	ActiveContract *ContractInfo
}

// NewProduct creates a validated Product
func NewProduct(id ProductID, name, category, unit string, currentStock, minStockLevel float64, leadTimeDays int) (*Product, error) {
	if name == "" {
		return nil, fmt.Errorf("product name cannot be empty")
	}
	if currentStock < 0 {
		return nil, fmt.Errorf("current stock cannot be negative, got %v", currentStock)
	}
	if minStockLevel < 0 {
		return nil, fmt.Errorf("min stock level cannot be negative, got %v", minStockLevel)
	}
	if leadTimeDays < 0 {
		return nil, fmt.Errorf("lead time cannot be negative, got %d", leadTimeDays)
	}

	return &Product{
		ID:            id,
		Name:          name,
		Category:      category,
		CurrentStock:  currentStock,
		MinStockLevel: minStockLevel,
		Unit:          unit,
		LeadTimeDays:  leadTimeDays,
	}, nil
}

// IsLowStock reports whether stock has fallen to or below the minimum level
func (p Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinStockLevel
}

// IsOutOfStock reports whether nothing is left on hand
func (p Product) IsOutOfStock() bool {
	return p.CurrentStock == 0
}

// HasContract reports whether purchases are covered by an active contract
func (p Product) HasContract() bool {
	return p.ActiveContract != nil
}

// EffectiveLeadTime returns the lead time, falling back to the default when unset
func (p Product) EffectiveLeadTime() int {
	if p.LeadTimeDays <= 0 {
		return DefaultLeadTimeDays
	}
	return p.LeadTimeDays
}

// ProductRef points at a product either by id or by display name.
// The name is only used when no id is available.
type ProductRef struct {
	ID   *ProductID
	Name string
}

// ProductRefByID builds a reference from a known identifier
func ProductRefByID(id ProductID) ProductRef {
	return ProductRef{ID: &id}
}

// ProductRefByName builds a reference that must be resolved before use
func ProductRefByName(name string) ProductRef {
	return ProductRef{Name: name}
}

// String returns a human readable form of the reference
func (r ProductRef) String() string {
	if r.ID != nil {
		return fmt.Sprintf("#%d", *r.ID)
	}
	return fmt.Sprintf("%q", r.Name)
}

// Alternative is a substitute product suggested by the service
type Alternative struct {
	Product ProductID
	Name    string
	Reason  string
	Score   float64
}

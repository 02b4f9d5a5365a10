package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/domain/errors"
)

// ListProducts returns the catalog, filtered by a case-insensitive match on
// name or category when query is set.
func (s *Service) ListProducts(ctx context.Context, query string) ([]entities.Product, error) {
	if err := checkContext(ctx, "list products"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	products := make([]entities.Product, 0, len(s.items))
	for _, item := range s.items {
		if query != "" &&
			!strings.Contains(strings.ToLower(item.product.Name), query) &&
			!strings.Contains(strings.ToLower(item.product.Category), query) {
			continue
		}
		products = append(products, copyProduct(item.product))
		if len(products) == productsLimit {
			break
		}
	}
	return products, nil
}

// ListAlternatives suggests other products of the same category, the
// best stocked first.
func (s *Service) ListAlternatives(ctx context.Context, id entities.ProductID) ([]entities.Alternative, error) {
	if err := checkContext(ctx, "list alternatives"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	target, ok := s.byID[id]
	if !ok {
		return nil, errors.NewRemoteStatusError("list alternatives", 404, fmt.Sprintf("Product with ID %d not found", id))
	}

	var alternatives []entities.Alternative
	for _, item := range s.items {
		if item == target || item.product.Category != target.product.Category {
			continue
		}
		days := item.product.CurrentStock / maxBurn(item.burnRate)
		reason := fmt.Sprintf("%s, %.0f %s in stock", item.product.Category, item.product.CurrentStock, item.product.Unit)
		if item.product.HasContract() {
			reason += ", under contract"
		}
		alternatives = append(alternatives, entities.Alternative{
			Product: item.product.ID,
			Name:    item.product.Name,
			Reason:  reason,
			Score:   days,
		})
	}
	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].Score > alternatives[j].Score
	})
	return alternatives, nil
}

func copyProduct(p entities.Product) entities.Product {
	if p.ActiveContract != nil {
		contract := *p.ActiveContract
		p.ActiveContract = &contract
	}
	return p
}

func maxBurn(burn float64) float64 {
	if burn < minBurnRate {
		return minBurnRate
	}
	return burn
}

// DefaultCatalog is the catalog used when no seed file is configured
func DefaultCatalog() []SeedProduct {
	seed := []struct {
		name, category, unit string
		stock, min           float64
		lead                 int
		burn                 float64
		cost                 string
	}{
		{"Copy paper A4", "Office", "ream", 120, 40, 3, 6, "18.50"},
		{"Blue pens", "Office", "box", 25, 10, 2, 1.5, "12.00"},
		{"Toner HP 305A", "IT", "pcs", 6, 4, 10, 0.8, "289.00"},
		{"USB-C docking station", "IT", "pcs", 3, 2, 14, 0.1, "749.00"},
		{"Hand sanitizer 5L", "Hygiene", "can", 9, 6, 5, 0.7, "64.90"},
		{"Paper towels", "Hygiene", "pack", 40, 30, 4, 5, "21.30"},
		{"Coffee beans 1kg", "Kitchen", "bag", 14, 8, 7, 1.2, "79.00"},
		{"Dishwasher tablets", "Kitchen", "box", 4, 3, 6, 0.3, "55.00"},
	}

	catalog := make([]SeedProduct, 0, len(seed))
	for i, row := range seed {
		catalog = append(catalog, SeedProduct{
			Product: entities.Product{
				ID:            entities.ProductID(i + 1),
				Name:          row.name,
				Category:      row.category,
				Unit:          row.unit,
				CurrentStock:  row.stock,
				MinStockLevel: row.min,
				LeadTimeDays:  row.lead,
			},
			BurnRate: row.burn,
			UnitCost: decimal.RequireFromString(row.cost),
		})
	}
	return catalog
}

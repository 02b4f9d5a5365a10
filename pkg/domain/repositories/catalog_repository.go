package repositories

import (
	"context"

	"github.com/vsinha/procurement/pkg/domain/entities"
)

// ProductRepository provides access to the product catalog
type ProductRepository interface {
	// ListProducts returns the catalog. A non-empty query asks the service
	// for its free-text search ranking instead.
	ListProducts(ctx context.Context, query string) ([]entities.Product, error)
	ListAlternatives(ctx context.Context, id entities.ProductID) ([]entities.Alternative, error)
}

package scheduler

import (
	"context"
	"fmt"

	"github.com/vsinha/procurement/pkg/application/state"
	"github.com/vsinha/procurement/pkg/domain/repositories"
)

// Fetcher loads the current value of one resource
type Fetcher interface {
	Fetch(ctx context.Context, resource state.Resource) (any, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, resource state.Resource) (any, error)

func (f FetcherFunc) Fetch(ctx context.Context, resource state.Resource) (any, error) {
	return f(ctx, resource)
}

// RepositoryFetcher maps resources onto repository reads. Inputs that are
// part of the client state, such as the search query, are read from the
// store at fetch time.
type RepositoryFetcher struct {
	service repositories.ProcurementService
	store   *state.Store
}

func NewRepositoryFetcher(service repositories.ProcurementService, store *state.Store) *RepositoryFetcher {
	return &RepositoryFetcher{service: service, store: store}
}

func (f *RepositoryFetcher) Fetch(ctx context.Context, resource state.Resource) (any, error) {
	switch resource {
	case state.ResourceClock:
		return f.service.GetClock(ctx)
	case state.ResourceClockEvents:
		return f.service.ListClockEvents(ctx)
	case state.ResourceProducts:
		return f.service.ListProducts(ctx, f.store.Search())
	case state.ResourceOrders:
		return f.service.ListOrders(ctx)
	case state.ResourceDashboard:
		return f.service.GetDashboard(ctx)
	case state.ResourceHistory:
		return f.service.GetHistory(ctx)
	case state.ResourceForecast:
		return f.service.GetForecast(ctx)
	case state.ResourceScenario:
		return f.service.GetScenario(ctx, f.store.ScenarioParameters())
	case state.ResourceAlternatives:
		id, ok := f.store.AlternativesTarget()
		if !ok {
			return nil, fmt.Errorf("no product selected for alternatives")
		}
		items, err := f.service.ListAlternatives(ctx, id)
		if err != nil {
			return nil, err
		}
		return &state.Alternatives{Product: id, Items: items}, nil
	default:
		return nil, fmt.Errorf("unknown resource: %q", resource)
	}
}

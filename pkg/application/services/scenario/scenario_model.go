package scenario

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/domain/errors"
	"github.com/vsinha/procurement/pkg/infrastructure/events"
)

// Requester fetches a projection for the given parameters
type Requester interface {
	RequestScenario(ctx context.Context, p entities.ScenarioParameters)
}

// Model holds the what-if parameters. Each distinct change yields exactly
// one projection request; setting the current value again yields none.
type Model struct {
	mu        sync.Mutex
	current   entities.ScenarioParameters
	requester Requester
	publisher events.Publisher
	logger    *zap.Logger
}

func NewModel(initial entities.ScenarioParameters, requester Requester, publisher events.Publisher, logger *zap.Logger) (*Model, error) {
	if err := initial.Validate(); err != nil {
		return nil, errors.NewValidationError("scenario", err.Error(), errors.ErrInvalidScenario)
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{
		current:   initial,
		requester: requester,
		publisher: publisher,
		logger:    logger.Named("scenario"),
	}, nil
}

func (m *Model) Current() entities.ScenarioParameters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Set replaces the parameters and reports whether a request was issued.
func (m *Model) Set(ctx context.Context, p entities.ScenarioParameters) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, errors.NewValidationError("scenario", err.Error(), errors.ErrInvalidScenario)
	}

	m.mu.Lock()
	previous := m.current
	if previous == p {
		m.mu.Unlock()
		return false, nil
	}
	m.current = p
	m.mu.Unlock()

	m.logger.Debug("scenario changed",
		zap.Int("delay_days", p.DelayDays),
		zap.Int("demand_spike_pct", p.DemandSpikePct),
	)
	m.publisher.Publish(events.NewScenarioChanged(previous, p))
	if m.requester != nil {
		m.requester.RequestScenario(ctx, p)
	}
	return true, nil
}

// SetDelay changes only the supplier delay axis
func (m *Model) SetDelay(ctx context.Context, days int) (bool, error) {
	p := m.Current()
	p.DelayDays = days
	return m.Set(ctx, p)
}

// SetDemandSpike changes only the demand spike axis
func (m *Model) SetDemandSpike(ctx context.Context, pct int) (bool, error) {
	p := m.Current()
	p.DemandSpikePct = pct
	return m.Set(ctx, p)
}

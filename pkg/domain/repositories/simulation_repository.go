package repositories

import (
	"context"

	"github.com/vsinha/procurement/pkg/domain/entities"
)

// SimulationRepository exposes the service's virtual clock
type SimulationRepository interface {
	GetClock(ctx context.Context) (*entities.SimulationClock, error)
	ListClockEvents(ctx context.Context) ([]entities.SimulationEvent, error)
	StartClock(ctx context.Context) error
	StopClock(ctx context.Context) error
}

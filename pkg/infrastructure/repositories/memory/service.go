package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/domain/errors"
	"github.com/vsinha/procurement/pkg/domain/repositories"
)

const (
	productsLimit = 100
	ordersLimit   = 50
	forecastLimit = 50

	minBurnRate      = 0.1
	emaAlpha         = 0.1
	minReorderQty    = 10
	paymentTermsDays = 30
)

// Options configures the offline service
type Options struct {
	// AutoApproveLimit is the largest order total placed without approval.
	AutoApproveLimit decimal.Decimal
	// DayLength is the wall time of one simulated day while the clock runs.
	DayLength time.Duration
	StartDate time.Time
	// DocumentBaseURL prefixes report and order document links.
	DocumentBaseURL string
}

func DefaultOptions() Options {
	return Options{
		AutoApproveLimit: decimal.NewFromInt(1000),
		DayLength:        time.Second,
		StartDate:        time.Now().Truncate(24 * time.Hour),
		DocumentBaseURL:  "offline://",
	}
}

// SeedProduct is a catalog entry together with the figures only the
// service knows about.
type SeedProduct struct {
	Product  entities.Product
	BurnRate float64
	UnitCost decimal.Decimal
}

type stockItem struct {
	product  entities.Product
	burnRate float64
	unitCost decimal.Decimal
}

// Service is an in-process stand-in for the procurement backend. Order
// status and forecasts are decided here, as the backend would, and every
// rule is deterministic.
type Service struct {
	mu      sync.RWMutex
	options Options
	logger  *zap.Logger

	items    []*stockItem
	byID     map[entities.ProductID]*stockItem
	nextID   entities.ProductID
	orders   []*entities.Order
	history  []entities.HistoryPoint
	log      []entities.SimulationEvent
	contract int64

	clock   entities.SimulationClock
	stopRun chan struct{}
	running sync.WaitGroup
}

// Verify interface compliance
var _ repositories.ProcurementService = (*Service)(nil)

func NewService(options Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.DayLength <= 0 {
		options.DayLength = time.Second
	}
	if options.StartDate.IsZero() {
		options.StartDate = time.Now().Truncate(24 * time.Hour)
	}
	return &Service{
		options: options,
		logger:  logger.Named("offline"),
		byID:    make(map[entities.ProductID]*stockItem),
		nextID:  1,
		clock:   entities.SimulationClock{CurrentDate: options.StartDate},
	}
}

// LoadProducts adds seed products to the catalog
func (s *Service) LoadProducts(seed []SeedProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sp := range seed {
		if _, exists := s.byID[sp.Product.ID]; exists {
			return fmt.Errorf("duplicate product id %d", sp.Product.ID)
		}
		burn := sp.BurnRate
		if burn <= 0 {
			burn = 1
		}
		product := copyProduct(sp.Product)
		if product.ActiveContract != nil && product.ActiveContract.ValidUntil.IsZero() {
			product.ActiveContract.ValidUntil = s.clock.CurrentDate.AddDate(1, 0, 0)
		}
		item := &stockItem{product: product, burnRate: burn, unitCost: sp.UnitCost}
		s.items = append(s.items, item)
		s.byID[sp.Product.ID] = item
		if sp.Product.ID >= s.nextID {
			s.nextID = sp.Product.ID + 1
		}
	}
	return nil
}

// Close stops the clock if it runs
func (s *Service) Close() {
	_ = s.StopClock(context.Background())
}

func (s *Service) record(kind, message string) {
	s.log = append(s.log, entities.SimulationEvent{
		Sequence: len(s.log) + 1,
		Date:     s.clock.CurrentDate,
		Kind:     kind,
		Message:  message,
	})
}

func checkContext(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewRemoteCallError(op, err)
	}
	return nil
}

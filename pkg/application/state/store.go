// Package state holds the client's view of remote state.
//
// Every resource is replaced whole. Each fetch takes a sequence number from
// Begin and hands it back to Apply; a response older than the last applied
// one for the same resource is discarded, so completion order never matters.
package state

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/domain/errors"
	"github.com/vsinha/procurement/pkg/domain/services"
)

// Alternatives is the suggestion list for one product
type Alternatives struct {
	Product entities.ProductID
	Items   []entities.Alternative
}

type Store struct {
	mu sync.RWMutex

	issued  map[Resource]uint64
	applied map[Resource]uint64

	clock        *entities.SimulationClock
	clockEvents  []entities.SimulationEvent
	products     []entities.Product
	orders       []entities.Order
	dashboard    *entities.DashboardSnapshot
	history      []entities.HistoryPoint
	forecast     []entities.ForecastEntry
	scenario     *entities.ScenarioProjection
	alternatives *Alternatives

	classifiedForecast []entities.ClassifiedForecast
	classifiedScenario []entities.ClassifiedForecast

	scenarioParams     entities.ScenarioParameters
	search             string
	role               entities.Role
	alternativesTarget *entities.ProductID
}

func NewStore(role entities.Role, scenario entities.ScenarioParameters) *Store {
	return &Store{
		issued:         make(map[Resource]uint64),
		applied:        make(map[Resource]uint64),
		role:           role,
		scenarioParams: scenario,
	}
}

// Begin issues the next sequence number for r.
func (s *Store) Begin(r Resource) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[r]++
	return s.issued[r]
}

// Apply replaces the snapshot of r with value when seq is newer than the
// last applied response. It reports whether the value was applied.
func (s *Store) Apply(r Resource, seq uint64, value any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied[r] {
		return false, nil
	}

	switch r {
	case ResourceClock:
		v, ok := value.(*entities.SimulationClock)
		if !ok {
			return false, typeMismatch(r, value)
		}
		s.clock = cloneClock(v)
	case ResourceClockEvents:
		v, ok := value.([]entities.SimulationEvent)
		if !ok {
			return false, typeMismatch(r, value)
		}
		s.clockEvents = append([]entities.SimulationEvent(nil), v...)
	case ResourceProducts:
		v, ok := value.([]entities.Product)
		if !ok {
			return false, typeMismatch(r, value)
		}
		s.products = append([]entities.Product(nil), v...)
		s.reclassify()
	case ResourceOrders:
		v, ok := value.([]entities.Order)
		if !ok {
			return false, typeMismatch(r, value)
		}
		s.orders = append([]entities.Order(nil), v...)
	case ResourceDashboard:
		v, ok := value.(*entities.DashboardSnapshot)
		if !ok {
			return false, typeMismatch(r, value)
		}
		if v != nil {
			copied := *v
			v = &copied
		}
		s.dashboard = v
	case ResourceHistory:
		v, ok := value.([]entities.HistoryPoint)
		if !ok {
			return false, typeMismatch(r, value)
		}
		s.history = append([]entities.HistoryPoint(nil), v...)
	case ResourceForecast:
		v, ok := value.([]entities.ForecastEntry)
		if !ok {
			return false, typeMismatch(r, value)
		}
		s.forecast = append([]entities.ForecastEntry(nil), v...)
		s.reclassify()
	case ResourceScenario:
		v, ok := value.(*entities.ScenarioProjection)
		if !ok {
			return false, typeMismatch(r, value)
		}
		// a projection for parameters the user already moved away from is stale
		if v == nil || v.Parameters != s.scenarioParams {
			return false, nil
		}
		s.scenario = &entities.ScenarioProjection{
			Parameters: v.Parameters,
			Entries:    append([]entities.ForecastEntry(nil), v.Entries...),
		}
		s.reclassify()
	case ResourceAlternatives:
		v, ok := value.(*Alternatives)
		if !ok {
			return false, typeMismatch(r, value)
		}
		if v != nil {
			v = &Alternatives{Product: v.Product, Items: append([]entities.Alternative(nil), v.Items...)}
		}
		s.alternatives = v
	default:
		return false, fmt.Errorf("unknown resource: %q", r)
	}

	s.applied[r] = seq
	return true, nil
}

func typeMismatch(r Resource, value any) error {
	return fmt.Errorf("resource %s cannot hold %T", r, value)
}

// reclassify must be called with the write lock held
func (s *Store) reclassify() {
	lookup := s.leadTimeLookup()
	s.classifiedForecast = services.ClassifyForecast(s.forecast, lookup)
	if s.scenario != nil {
		s.classifiedScenario = services.ClassifyForecast(s.scenario.Entries, lookup)
	} else {
		s.classifiedScenario = nil
	}
}

func (s *Store) leadTimeLookup() services.LeadTimeLookup {
	leadTimes := make(map[entities.ProductID]int, len(s.products))
	for _, p := range s.products {
		if p.LeadTimeDays > 0 {
			leadTimes[p.ID] = p.LeadTimeDays
		}
	}
	return func(id entities.ProductID) (int, bool) {
		days, ok := leadTimes[id]
		return days, ok
	}
}

// Sequence returns the last issued and last applied sequence numbers of r.
func (s *Store) Sequence(r Resource) (issued, applied uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.issued[r], s.applied[r]
}

// ResetScenario records the parameters the next projection must match and
// drops the current projection.
func (s *Store) ResetScenario(p entities.ScenarioParameters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenarioParams = p
	s.scenario = nil
	s.classifiedScenario = nil
}

func (s *Store) ScenarioParameters() entities.ScenarioParameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scenarioParams
}

func (s *Store) SetSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = strings.TrimSpace(query)
}

func (s *Store) Search() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search
}

// SetAlternativesTarget selects the product whose alternatives are fetched
func (s *Store) SetAlternativesTarget(id entities.ProductID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alternativesTarget = &id
}

func (s *Store) AlternativesTarget() (entities.ProductID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.alternativesTarget == nil {
		return 0, false
	}
	return *s.alternativesTarget, true
}

func (s *Store) SetRole(role entities.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = role
}

func (s *Store) Role() entities.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *Store) Clock() (entities.SimulationClock, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.clock == nil {
		return entities.SimulationClock{}, false
	}
	return *s.clock, true
}

func (s *Store) ClockEvents() []entities.SimulationEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.SimulationEvent(nil), s.clockEvents...)
}

func (s *Store) Products() []entities.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Product(nil), s.products...)
}

func (s *Store) Orders() []entities.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Order(nil), s.orders...)
}

// Order looks up an order in the last loaded snapshot
func (s *Store) Order(id entities.OrderID) (entities.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return entities.Order{}, false
}

func (s *Store) Dashboard() (entities.DashboardSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dashboard == nil {
		return entities.DashboardSnapshot{}, false
	}
	return *s.dashboard, true
}

func (s *Store) History() []entities.HistoryPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.HistoryPoint(nil), s.history...)
}

// Forecast returns the classified forecast rows
func (s *Store) Forecast() []entities.ClassifiedForecast {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.ClassifiedForecast(nil), s.classifiedForecast...)
}

// Scenario returns the classified what-if projection. The second result
// is false while no projection for the current parameters has arrived.
func (s *Store) Scenario() ([]entities.ClassifiedForecast, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.scenario == nil {
		return nil, false
	}
	return append([]entities.ClassifiedForecast(nil), s.classifiedScenario...), true
}

func (s *Store) Alternatives() (Alternatives, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.alternatives == nil {
		return Alternatives{}, false
	}
	return Alternatives{
		Product: s.alternatives.Product,
		Items:   append([]entities.Alternative(nil), s.alternatives.Items...),
	}, true
}

// ResolveProduct maps a product reference to an id. An explicit id wins;
// otherwise the name must exactly match a product in the last loaded list.
func (s *Store) ResolveProduct(ref entities.ProductRef) (entities.ProductID, error) {
	if ref.ID != nil {
		return *ref.ID, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.Name == ref.Name {
			return p.ID, nil
		}
	}
	return 0, errors.NewResolutionError(ref.Name)
}

func cloneClock(c *entities.SimulationClock) *entities.SimulationClock {
	if c == nil {
		return nil
	}
	copied := *c
	return &copied
}

package state

import (
	"testing"

	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/domain/errors"
)

func intPtr(v int) *int { return &v }

func TestStore_ApplyDiscardsOlderResponses(t *testing.T) {
	store := NewStore(entities.RoleEmployee, entities.ScenarioParameters{})

	first := store.Begin(ResourceOrders)
	second := store.Begin(ResourceOrders)
	if second <= first {
		t.Fatalf("Expected increasing sequence numbers, got %d then %d", first, second)
	}

	newer := []entities.Order{{ID: "2", Status: entities.StatusOrdered}}
	older := []entities.Order{{ID: "1", Status: entities.StatusPendingApproval}}

	applied, err := store.Apply(ResourceOrders, second, newer)
	if err != nil || !applied {
		t.Fatalf("Expected newer response to apply, got applied=%v err=%v", applied, err)
	}

	applied, err = store.Apply(ResourceOrders, first, older)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if applied {
		t.Error("Expected older response to be discarded")
	}

	orders := store.Orders()
	if len(orders) != 1 || orders[0].ID != "2" {
		t.Errorf("Expected snapshot of newer response, got %+v", orders)
	}

	issued, last := store.Sequence(ResourceOrders)
	if issued != 2 || last != 2 {
		t.Errorf("Expected issued=2 applied=2, got %d and %d", issued, last)
	}
}

func TestStore_SequencesArePerResource(t *testing.T) {
	store := NewStore(entities.RoleEmployee, entities.ScenarioParameters{})

	store.Begin(ResourceOrders)
	store.Begin(ResourceOrders)
	productSeq := store.Begin(ResourceProducts)

	applied, err := store.Apply(ResourceProducts, productSeq, []entities.Product{{ID: 1, Name: "Pens"}})
	if err != nil || !applied {
		t.Fatalf("Expected products to apply independently, got applied=%v err=%v", applied, err)
	}
}

func TestStore_ApplyRejectsWrongType(t *testing.T) {
	store := NewStore(entities.RoleEmployee, entities.ScenarioParameters{})
	seq := store.Begin(ResourceProducts)

	if _, err := store.Apply(ResourceProducts, seq, []entities.Order{}); err == nil {
		t.Error("Expected error for mismatched value type")
	}
	if _, last := store.Sequence(ResourceProducts); last != 0 {
		t.Errorf("Expected nothing applied, got seq %d", last)
	}
}

func TestStore_ReadersReceiveCopies(t *testing.T) {
	store := NewStore(entities.RoleEmployee, entities.ScenarioParameters{})
	seq := store.Begin(ResourceProducts)
	input := []entities.Product{{ID: 1, Name: "Pens"}}
	_, _ = store.Apply(ResourceProducts, seq, input)

	input[0].Name = "mutated input"
	got := store.Products()
	got[0].Name = "mutated output"

	if store.Products()[0].Name != "Pens" {
		t.Errorf("Expected snapshot to be isolated, got %q", store.Products()[0].Name)
	}
}

func TestStore_ForecastReclassifiedOnProducts(t *testing.T) {
	store := NewStore(entities.RoleEmployee, entities.ScenarioParameters{})

	_, _ = store.Apply(ResourceForecast, store.Begin(ResourceForecast), []entities.ForecastEntry{
		{ProductID: 1, ProductName: "Toner", DaysLeft: 8},
	})

	rows := store.Forecast()
	if len(rows) != 1 {
		t.Fatalf("Expected 1 classified row, got %d", len(rows))
	}
	if rows[0].Decision.LeadTimeDays != entities.DefaultLeadTimeDays || rows[0].Decision.Tier != entities.TierWarning {
		t.Errorf("Expected default lead time warning, got %+v", rows[0].Decision)
	}

	_, _ = store.Apply(ResourceProducts, store.Begin(ResourceProducts), []entities.Product{
		{ID: 1, Name: "Toner", LeadTimeDays: 2},
	})

	rows = store.Forecast()
	if rows[0].Decision.LeadTimeDays != 2 || rows[0].Decision.Tier != entities.TierSafe {
		t.Errorf("Expected catalog lead time to reclassify as safe, got %+v", rows[0].Decision)
	}
}

func TestStore_ScenarioProjectionMustMatchParameters(t *testing.T) {
	initial := entities.ScenarioParameters{}
	store := NewStore(entities.RoleEmployee, initial)

	staleSeq := store.Begin(ResourceScenario)
	next := entities.ScenarioParameters{DelayDays: 3}
	store.ResetScenario(next)
	freshSeq := store.Begin(ResourceScenario)

	applied, err := store.Apply(ResourceScenario, staleSeq, &entities.ScenarioProjection{Parameters: initial})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if applied {
		t.Error("Expected projection for old parameters to be discarded")
	}
	if _, ok := store.Scenario(); ok {
		t.Error("Expected no projection while waiting for current parameters")
	}

	applied, _ = store.Apply(ResourceScenario, freshSeq, &entities.ScenarioProjection{
		Parameters: next,
		Entries:    []entities.ForecastEntry{{ProductID: 4, DaysLeft: 9, LeadTimeDays: intPtr(10)}},
	})
	if !applied {
		t.Fatal("Expected projection for current parameters to apply")
	}
	rows, ok := store.Scenario()
	if !ok || len(rows) != 1 || rows[0].Decision.Tier != entities.TierCritical {
		t.Errorf("Expected one critical scenario row, got %+v", rows)
	}

	store.ResetScenario(entities.ScenarioParameters{DelayDays: 5})
	if _, ok := store.Scenario(); ok {
		t.Error("Expected reset to drop the stale projection")
	}
}

func TestStore_ResolveProduct(t *testing.T) {
	store := NewStore(entities.RoleEmployee, entities.ScenarioParameters{})
	_, _ = store.Apply(ResourceProducts, store.Begin(ResourceProducts), []entities.Product{
		{ID: 7, Name: "Copy paper A4"},
		{ID: 8, Name: "Blue pens"},
	})

	id, err := store.ResolveProduct(entities.ProductRefByName("Blue pens"))
	if err != nil || id != 8 {
		t.Errorf("Expected id 8, got %d (err %v)", id, err)
	}

	id, err = store.ResolveProduct(entities.ProductRefByID(42))
	if err != nil || id != 42 {
		t.Errorf("Expected explicit id to win, got %d (err %v)", id, err)
	}

	_, err = store.ResolveProduct(entities.ProductRefByName("blue pens"))
	if !errors.Is(err, errors.ErrUnresolvable) {
		t.Errorf("Expected ErrUnresolvable for inexact name, got %v", err)
	}
}

func TestStore_SearchAndRole(t *testing.T) {
	store := NewStore(entities.RoleEmployee, entities.ScenarioParameters{})

	store.SetSearch("  toner ")
	if store.Search() != "toner" {
		t.Errorf("Expected trimmed search, got %q", store.Search())
	}

	store.SetRole(entities.RoleManager)
	if store.Role() != entities.RoleManager {
		t.Errorf("Expected manager role, got %s", store.Role())
	}
}

func TestParseResource(t *testing.T) {
	if r, err := ParseResource("clock_events"); err != nil || r != ResourceClockEvents {
		t.Errorf("Expected clock_events, got %s (err %v)", r, err)
	}
	if _, err := ParseResource("weather"); err == nil {
		t.Error("Expected error for unknown resource")
	}
	if len(AllResources()) != 9 {
		t.Errorf("Expected 9 resources, got %d", len(AllResources()))
	}
}

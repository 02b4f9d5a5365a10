package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/domain/errors"
)

var testStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, seed ...SeedProduct) *Service {
	t.Helper()
	options := DefaultOptions()
	options.StartDate = testStart
	options.DayLength = 5 * time.Millisecond
	svc := NewService(options, nil)
	if len(seed) == 0 {
		seed = DefaultCatalog()
	}
	if err := svc.LoadProducts(seed); err != nil {
		t.Fatalf("Failed to load products: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

func seedProduct(id int64, name string, stock, min float64, lead int, burn float64, cost string) SeedProduct {
	return SeedProduct{
		Product: entities.Product{
			ID:            entities.ProductID(id),
			Name:          name,
			Category:      "Office",
			Unit:          "pcs",
			CurrentStock:  stock,
			MinStockLevel: min,
			LeadTimeDays:  lead,
		},
		BurnRate: burn,
		UnitCost: decimal.RequireFromString(cost),
	}
}

func TestService_ListProductsSearch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	all, err := svc.ListProducts(ctx, "")
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(all) != len(DefaultCatalog()) {
		t.Errorf("Expected %d products, got %d", len(DefaultCatalog()), len(all))
	}

	it, _ := svc.ListProducts(ctx, " it ")
	if len(it) != 2 {
		t.Errorf("Expected 2 IT products, got %d", len(it))
	}

	pens, _ := svc.ListProducts(ctx, "PENS")
	if len(pens) != 1 || pens[0].Name != "Blue pens" {
		t.Errorf("Expected case-insensitive name match, got %+v", pens)
	}
}

func TestService_CreateOrderAutoApproveLimit(t *testing.T) {
	svc := newTestService(t, seedProduct(1, "Copy paper A4", 100, 20, 3, 5, "18.50"))
	ctx := context.Background()

	testCases := []struct {
		name     string
		quantity float64
		status   entities.OrderStatus
		total    string
	}{
		{"under limit", 20, entities.StatusOrdered, "370.00"},
		{"at limit", 1000 / 18.5, entities.StatusOrdered, "1000.00"},
		{"over limit", 60, entities.StatusPendingApproval, "1110.00"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order, err := svc.CreateOrder(ctx, entities.OrderDraft{ProductID: 1, Quantity: tc.quantity})
			if err != nil {
				t.Fatalf("CreateOrder failed: %v", err)
			}
			if order.Status != tc.status {
				t.Errorf("Expected status %s, got %s", tc.status, order.Status)
			}
			if order.TotalPrice.StringFixed(2) != tc.total {
				t.Errorf("Expected total %s, got %s", tc.total, order.TotalPrice.StringFixed(2))
			}
			if !strings.HasPrefix(string(order.ID), "ORD-") || order.ID.IsAutomatic() {
				t.Errorf("Unexpected order id %s", order.ID)
			}
			if order.OrderType != entities.OrderTypeStandard {
				t.Errorf("Expected standard order type, got %s", order.OrderType)
			}
			if !order.EstimatedDelivery.Equal(testStart.AddDate(0, 0, 3)) {
				t.Errorf("Expected delivery after lead time, got %v", order.EstimatedDelivery)
			}
		})
	}
}

func TestService_CreateOrderUnknownProduct(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateOrder(context.Background(), entities.OrderDraft{ProductID: 404, Quantity: 1})
	var remote *errors.RemoteCallError
	if !errors.As(err, &remote) {
		t.Fatalf("Expected RemoteCallError, got %v", err)
	}
	if remote.StatusCode != 404 || remote.Detail != "Product with ID 404 not found" {
		t.Errorf("Unexpected error %+v", remote)
	}
}

func TestService_ContractPriceWins(t *testing.T) {
	svc := newTestService(t, seedProduct(1, "Toner", 10, 2, 5, 1, "300.00"))
	ctx := context.Background()

	if _, err := svc.ConfirmContract(ctx, entities.ContractDraft{
		SupplierName: "Acme",
		ProductName:  "Toner",
		Price:        decimal.RequireFromString("250.00"),
	}); err != nil {
		t.Fatalf("ConfirmContract failed: %v", err)
	}

	order, err := svc.CreateOrder(ctx, entities.OrderDraft{ProductID: 1, Quantity: 4})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.TotalPrice.StringFixed(2) != "1000.00" || order.Status != entities.StatusOrdered {
		t.Errorf("Expected contract pricing at the limit, got %s (%s)", order.TotalPrice, order.Status)
	}

	products, _ := svc.ListProducts(ctx, "toner")
	if !products[0].HasContract() || products[0].ActiveContract.SupplierName != "Acme" {
		t.Errorf("Expected active contract on product, got %+v", products[0].ActiveContract)
	}
}

func TestService_DecisionsFollowLifecycle(t *testing.T) {
	svc := newTestService(t, seedProduct(1, "Laptop", 5, 1, 10, 0.1, "4000.00"))
	ctx := context.Background()

	first, _ := svc.CreateOrder(ctx, entities.OrderDraft{ProductID: 1, Quantity: 1})
	second, _ := svc.CreateOrder(ctx, entities.OrderDraft{ProductID: 1, Quantity: 2})
	if first.Status != entities.StatusPendingApproval || second.Status != entities.StatusPendingApproval {
		t.Fatalf("Expected both orders pending, got %s and %s", first.Status, second.Status)
	}

	if err := svc.ApproveOrder(ctx, first.ID); err != nil {
		t.Fatalf("ApproveOrder failed: %v", err)
	}
	if err := svc.RejectOrder(ctx, second.ID); err != nil {
		t.Fatalf("RejectOrder failed: %v", err)
	}

	approved, _ := svc.GetOrder(ctx, first.ID)
	rejected, _ := svc.GetOrder(ctx, second.ID)
	if approved.Status != entities.StatusOrdered {
		t.Errorf("Expected ordered, got %s", approved.Status)
	}
	if rejected.Status != entities.StatusCancelled {
		t.Errorf("Expected cancelled, got %s", rejected.Status)
	}

	for _, err := range []error{
		svc.ApproveOrder(ctx, second.ID),
		svc.RejectOrder(ctx, first.ID),
	} {
		if !errors.IsRemote(err) {
			t.Errorf("Expected service to refuse a decision outside pending, got %v", err)
		}
	}

	if err := svc.ApproveOrder(ctx, "ORD-MISSING"); !errors.IsRemote(err) {
		t.Errorf("Expected not found for unknown order, got %v", err)
	}
}

func TestService_ListOrdersNewestFirst(t *testing.T) {
	svc := newTestService(t, seedProduct(1, "Pens", 100, 1, 2, 1, "1.00"))
	ctx := context.Background()

	first, _ := svc.CreateOrder(ctx, entities.OrderDraft{ProductID: 1, Quantity: 1})
	second, _ := svc.CreateOrder(ctx, entities.OrderDraft{ProductID: 1, Quantity: 2})

	orders, err := svc.ListOrders(ctx)
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != second.ID || orders[1].ID != first.ID {
		t.Errorf("Expected newest first, got %v", orders)
	}
	if orders[0].ProductName() != "Pens" {
		t.Errorf("Expected embedded product name, got %q", orders[0].ProductName())
	}
}

func TestService_AdvanceDay(t *testing.T) {
	svc := newTestService(t,
		seedProduct(1, "Paper", 12, 10, 2, 4, "10.00"),
		seedProduct(2, "Pens", 50, 5, 3, 1, "2.00"),
	)
	ctx := context.Background()

	delivery, _ := svc.CreateOrder(ctx, entities.OrderDraft{ProductID: 2, Quantity: 10})

	svc.AdvanceDay()

	products, _ := svc.ListProducts(ctx, "")
	if products[0].CurrentStock != 8 {
		t.Errorf("Expected paper stock 8 after one day, got %v", products[0].CurrentStock)
	}

	orders, _ := svc.ListOrders(ctx)
	var auto []entities.Order
	for _, o := range orders {
		if o.ID.IsAutomatic() {
			auto = append(auto, o)
		}
	}
	if len(auto) != 1 {
		t.Fatalf("Expected one automatic order for low paper, got %d", len(auto))
	}
	if auto[0].Quantity != 12 || auto[0].OrderType != entities.OrderTypeAutomatic || auto[0].Status != entities.StatusOrdered {
		t.Errorf("Unexpected automatic order %+v", auto[0])
	}

	svc.AdvanceDay()
	orders, _ = svc.ListOrders(ctx)
	autoCount := 0
	for _, o := range orders {
		if o.ID.IsAutomatic() {
			autoCount++
		}
	}
	if autoCount != 1 {
		t.Errorf("Expected no duplicate replenishment while one is open, got %d", autoCount)
	}

	svc.AdvanceDay()
	got, _ := svc.GetOrder(ctx, delivery.ID)
	if got.Status != entities.StatusDelivered {
		t.Errorf("Expected order delivered after lead time, got %s", got.Status)
	}

	history, _ := svc.GetHistory(ctx)
	if len(history) != 3 {
		t.Errorf("Expected one history point per day, got %d", len(history))
	}
	clock, _ := svc.GetClock(ctx)
	if !clock.CurrentDate.Equal(testStart.AddDate(0, 0, 3)) {
		t.Errorf("Expected clock three days ahead, got %v", clock.CurrentDate)
	}

	events, _ := svc.ListClockEvents(ctx)
	if len(events) == 0 || events[0].Sequence != len(events) {
		t.Errorf("Expected newest event first, got %+v", events)
	}
}

func TestService_ForecastAndScenario(t *testing.T) {
	svc := newTestService(t,
		seedProduct(1, "Slow", 100, 1, 5, 0.01, "1.00"),
		seedProduct(2, "Fast", 20, 1, 5, 4, "1.00"),
	)
	ctx := context.Background()

	forecast, err := svc.GetForecast(ctx)
	if err != nil {
		t.Fatalf("GetForecast failed: %v", err)
	}
	if forecast[0].ProductName != "Fast" || forecast[0].DaysLeft != 5 {
		t.Errorf("Expected shortest runway first, got %+v", forecast[0])
	}
	if forecast[1].DaysLeft != 1000 {
		t.Errorf("Expected burn rate floor of 0.1, got %v days", forecast[1].DaysLeft)
	}
	if forecast[0].LeadTimeDays == nil || *forecast[0].LeadTimeDays != 5 {
		t.Errorf("Expected lead time on entry, got %v", forecast[0].LeadTimeDays)
	}

	params := entities.ScenarioParameters{DelayDays: 2, DemandSpikePct: 100}
	projection, err := svc.GetScenario(ctx, params)
	if err != nil {
		t.Fatalf("GetScenario failed: %v", err)
	}
	if projection.Parameters != params {
		t.Errorf("Expected projection tagged with its parameters, got %+v", projection.Parameters)
	}
	fast := projection.Entries[0]
	if fast.DaysLeft != 2.5 || *fast.LeadTimeDays != 7 || fast.ServerStatus != "critical" {
		t.Errorf("Unexpected scenario entry %+v", fast)
	}
}

func TestService_ClockStartStop(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.StartClock(ctx); err != nil {
		t.Fatalf("StartClock failed: %v", err)
	}
	if err := svc.StartClock(ctx); err != nil {
		t.Fatalf("Second StartClock failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		clock, _ := svc.GetClock(ctx)
		if clock.CurrentDate.After(testStart) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Clock did not advance")
		}
		time.Sleep(time.Millisecond)
	}

	if err := svc.StopClock(ctx); err != nil {
		t.Fatalf("StopClock failed: %v", err)
	}
	stopped, _ := svc.GetClock(ctx)
	if stopped.IsRunning {
		t.Error("Expected clock stopped")
	}
	time.Sleep(20 * time.Millisecond)
	after, _ := svc.GetClock(ctx)
	if !after.CurrentDate.Equal(stopped.CurrentDate) {
		t.Error("Expected no days to pass while stopped")
	}
}

func TestService_UploadContract(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doc := "Framework agreement\nSupplier: Acme Office\nProduct: Copy paper A4\nPrice: 15,90\nValid until: 2027-01-31\n"
	draft, err := svc.UploadContract(ctx, "acme.txt", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("UploadContract failed: %v", err)
	}
	if draft.SupplierName != "Acme Office" || draft.ProductName != "Copy paper A4" {
		t.Errorf("Unexpected draft %+v", draft)
	}
	if draft.Price.StringFixed(2) != "15.90" {
		t.Errorf("Expected price 15.90, got %s", draft.Price)
	}
	if draft.ValidUntil == nil || draft.ValidUntil.Year() != 2027 {
		t.Errorf("Expected validity date, got %v", draft.ValidUntil)
	}

	_, err = svc.UploadContract(ctx, "empty.txt", strings.NewReader("nothing here"))
	if !errors.IsRemote(err) {
		t.Errorf("Expected extraction failure, got %v", err)
	}

	confirmation, err := svc.ConfirmContract(ctx, entities.ContractDraft{SupplierName: "New Co", ProductName: "Label printer", Price: decimal.NewFromInt(99)})
	if err != nil {
		t.Fatalf("ConfirmContract failed: %v", err)
	}
	if confirmation.ContractID != 1 {
		t.Errorf("Expected first contract id 1, got %d", confirmation.ContractID)
	}
	added, _ := svc.ListProducts(ctx, "label printer")
	if len(added) != 1 || added[0].Category != contractCategory || added[0].ID != entities.ProductID(len(DefaultCatalog())+1) {
		t.Errorf("Expected contract to add the product to the catalog, got %+v", added)
	}
}

func TestService_AssistantAndDocuments(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	reply, err := svc.SendMessage(ctx, "Please prepare the monthly report")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply.Action == nil || reply.Action.Kind != entities.AssistantOpenReport {
		t.Errorf("Expected open_report action, got %+v", reply.Action)
	}

	if svc.ReportURL() != "offline://analytics/report/pdf" {
		t.Errorf("Unexpected report URL %s", svc.ReportURL())
	}
	if svc.OrderDocumentURL("ORD-1") != "offline://orders/ORD-1/pdf" {
		t.Errorf("Unexpected order document URL %s", svc.OrderDocumentURL("ORD-1"))
	}
}

func TestService_Alternatives(t *testing.T) {
	svc := newTestService(t)

	alternatives, err := svc.ListAlternatives(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListAlternatives failed: %v", err)
	}
	if len(alternatives) != 1 || alternatives[0].Name != "Blue pens" {
		t.Errorf("Expected the other office product, got %+v", alternatives)
	}

	if _, err := svc.ListAlternatives(context.Background(), 999); !errors.IsRemote(err) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestService_CancelledContext(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.ListOrders(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vsinha/procurement/pkg/domain/entities"
	"github.com/vsinha/procurement/pkg/domain/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL + "/"}, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClient_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		baseURL string
	}{
		{"empty", ""},
		{"no scheme", "localhost:8000"},
		{"wrong scheme", "ftp://example.com"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewClient(Config{BaseURL: tc.baseURL}, nil); err == nil {
				t.Errorf("Expected error for base URL %q", tc.baseURL)
			}
		})
	}
}

func TestClient_ListProducts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "100" {
			t.Errorf("Expected limit 100, got %q", r.URL.Query().Get("limit"))
		}
		if r.URL.Query().Get("search") != "paper" {
			t.Errorf("Expected search query, got %q", r.URL.Query().Get("search"))
		}
		_, _ = io.WriteString(w, `[
			{"id": 1, "name": "Copy paper A4", "category": "Office", "unit": "ream",
			 "current_stock": 40, "min_stock_level": 20, "lead_time_days": 3,
			 "active_contract": {"supplier_name": "Acme", "price": 15.9, "valid_until": "2027-01-31T00:00:00"}},
			{"id": 2, "name": "Paper towels", "category": "Hygiene", "unit": "pack",
			 "current_stock": 10, "min_stock_level": 5}
		]`)
	})

	products, err := client.ListProducts(context.Background(), "paper")
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(products))
	}
	if !products[0].HasContract() || products[0].ActiveContract.Price.String() != "15.9" {
		t.Errorf("Expected contract with price 15.9, got %+v", products[0].ActiveContract)
	}
	if products[0].ActiveContract.ValidUntil.Year() != 2027 {
		t.Errorf("Expected zone-less timestamp to parse, got %v", products[0].ActiveContract.ValidUntil)
	}
	if products[1].LeadTimeDays != 0 || products[1].EffectiveLeadTime() != entities.DefaultLeadTimeDays {
		t.Errorf("Expected missing lead time to fall back to default, got %d", products[1].LeadTimeDays)
	}
}

func TestClient_ListProductsWithoutSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.URL.Query()["search"]; ok {
			t.Error("Expected no search parameter for an empty query")
		}
		_, _ = io.WriteString(w, `[]`)
	})

	products, err := client.ListProducts(context.Background(), "")
	if err != nil || len(products) != 0 {
		t.Errorf("Expected empty list, got %v (err %v)", products, err)
	}
}

func TestClient_OrdersOptionalFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "50" {
			t.Errorf("Expected limit 50, got %q", r.URL.Query().Get("limit"))
		}
		_, _ = io.WriteString(w, `[
			{"id": "ORD-1", "product_id": 3, "quantity": 20, "total_price": 370.5, "status": "pending_approval",
			 "created_at": "2026-03-02T10:00:00", "estimated_delivery": "2026-03-05T10:00:00",
			 "product": {"id": 3, "name": "Copy paper A4"}},
			{"id": "AUTO-ABC123", "quantity": 12, "total_price": 120, "status": "ordered",
			 "order_type": "automatic", "product": {"id": 4, "name": "Toner"}},
			{"id": "ORD-2", "quantity": 1, "total_price": 10, "status": "on_hold"}
		]`)
	})

	orders, err := client.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("Expected 3 orders, got %d", len(orders))
	}

	first := orders[0]
	if first.ProductID == nil || *first.ProductID != 3 || first.ProductName() != "Copy paper A4" {
		t.Errorf("Unexpected product reference %+v", first)
	}
	if first.TotalPrice.StringFixed(2) != "370.50" || first.OrderType != entities.OrderTypeStandard {
		t.Errorf("Unexpected totals %s / %s", first.TotalPrice, first.OrderType)
	}

	auto := orders[1]
	if auto.ProductID == nil || *auto.ProductID != 4 {
		t.Errorf("Expected product id from embedded product, got %v", auto.ProductID)
	}
	if !auto.ID.IsAutomatic() || auto.OrderType != entities.OrderTypeAutomatic {
		t.Errorf("Expected automatic order, got %+v", auto)
	}

	unknown := orders[2]
	if unknown.ProductID != nil || unknown.Product != nil {
		t.Errorf("Expected no product reference, got %+v", unknown)
	}
	if unknown.Status != "on_hold" || unknown.IsPending() {
		t.Errorf("Expected status kept verbatim, got %s", unknown.Status)
	}
}

func TestClient_CreateOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode body: %v", err)
			return
		}
		if body["product_id"] != float64(3) || body["quantity"] != float64(20) || body["order_type"] != "standard" {
			t.Errorf("Unexpected body %v", body)
		}
		_, _ = io.WriteString(w, `{"id": "ORD-9", "product_id": 3, "quantity": 20, "total_price": 1200, "status": "pending_approval"}`)
	})

	order, err := client.CreateOrder(context.Background(), entities.OrderDraft{ProductID: 3, Quantity: 20, OrderType: entities.OrderTypeStandard})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.Status != entities.StatusPendingApproval {
		t.Errorf("Expected status from response, got %s", order.Status)
	}
}

func TestClient_ErrorDetail(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{"string detail", http.StatusNotFound, `{"detail": "Product with ID 9 not found"}`, "Product with ID 9 not found"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail": [{"loc": ["body", "quantity"], "msg": "field required"}]}`, "quantity: field required"},
		{"plain text", http.StatusBadGateway, "upstream down\n", "upstream down"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			err := client.ApproveOrder(context.Background(), "ORD-1")
			var remote *errors.RemoteCallError
			if !errors.As(err, &remote) {
				t.Fatalf("Expected RemoteCallError, got %v", err)
			}
			if remote.StatusCode != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, remote.StatusCode)
			}
			if remote.Detail != tc.detail {
				t.Errorf("Expected detail %q, got %q", tc.detail, remote.Detail)
			}
			if remote.Op != "approve order" {
				t.Errorf("Expected op 'approve order', got %q", remote.Op)
			}
		})
	}
}

func TestClient_DecisionPaths(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		_, _ = io.WriteString(w, `{"status": "ok"}`)
	})
	ctx := context.Background()

	_ = client.ApproveOrder(ctx, "ORD-1")
	_ = client.RejectOrder(ctx, "ORD-2")
	_ = client.StartClock(ctx)
	_ = client.StopClock(ctx)

	expected := []string{
		"PUT /orders/ORD-1/approve",
		"PUT /orders/ORD-2/reject",
		"POST /simulation/start",
		"POST /simulation/stop",
	}
	mu.Lock()
	defer mu.Unlock()
	if strings.Join(seen, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected %v, got %v", expected, seen)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, _ := NewClient(Config{BaseURL: url}, nil)
	_, err := client.GetClock(context.Background())
	var remote *errors.RemoteCallError
	if !errors.As(err, &remote) {
		t.Fatalf("Expected RemoteCallError, got %v", err)
	}
	if remote.StatusCode != 0 || remote.Err == nil {
		t.Errorf("Expected transport error without status, got %+v", remote)
	}
}

func TestClient_ForecastAndScenario(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analytics/predictions":
			_, _ = io.WriteString(w, `[{"id": 1, "product_name": "Toner", "current_stock": 6, "burn_rate": 0.8,
				"days_left": 7.5, "status": "warning", "restock_recommended": true,
				"incoming_stock": 10, "next_delivery_date": "2026-03-09"}]`)
		case "/analytics/scenario":
			q := r.URL.Query()
			if q.Get("delay_days") != "3" || q.Get("demand_spike_pct") != "20" {
				t.Errorf("Unexpected scenario query %s", r.URL.RawQuery)
			}
			_, _ = io.WriteString(w, `{"items": [{"id": 1, "product_name": "Toner", "days_left": 6.2, "lead_time_days": 13}]}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	forecast, err := client.GetForecast(ctx)
	if err != nil {
		t.Fatalf("GetForecast failed: %v", err)
	}
	entry := forecast[0]
	if entry.LeadTimeDays != nil {
		t.Errorf("Expected missing lead time to stay unknown, got %v", *entry.LeadTimeDays)
	}
	if entry.IncomingStock == nil || *entry.IncomingStock != 10 || entry.NextDeliveryDate == nil {
		t.Errorf("Expected incoming stock and delivery date, got %+v", entry)
	}
	if entry.ServerStatus != "warning" {
		t.Errorf("Expected server status kept, got %s", entry.ServerStatus)
	}

	params := entities.ScenarioParameters{DelayDays: 3, DemandSpikePct: 20}
	projection, err := client.GetScenario(ctx, params)
	if err != nil {
		t.Fatalf("GetScenario failed: %v", err)
	}
	if projection.Parameters != params || len(projection.Entries) != 1 || *projection.Entries[0].LeadTimeDays != 13 {
		t.Errorf("Unexpected projection %+v", projection)
	}
}

func TestClient_Clock(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/simulation/status":
			_, _ = io.WriteString(w, `{"current_date": "2026-03-02", "is_running": true}`)
		case "/simulation/events":
			_, _ = io.WriteString(w, `[{"id": 4, "date": "2026-03-02T00:00:00", "type": "delivery", "message": "Received 10"}]`)
		}
	})
	ctx := context.Background()

	clock, err := client.GetClock(ctx)
	if err != nil {
		t.Fatalf("GetClock failed: %v", err)
	}
	if !clock.IsRunning || !clock.CurrentDate.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected clock %+v", clock)
	}

	events, err := client.ListClockEvents(ctx)
	if err != nil {
		t.Fatalf("ListClockEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].Sequence != 4 || events[0].Kind != "delivery" {
		t.Errorf("Unexpected events %+v", events)
	}
}

func TestClient_UploadContract(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Expected multipart file: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		if header.Filename != "acme.pdf" || string(content) != "%PDF-1.4" {
			t.Errorf("Unexpected upload %s (%q)", header.Filename, content)
		}
		_, _ = io.WriteString(w, `{"supplier_name": "Acme", "product_name": "Toner", "price": 250.5, "valid_until": "2027-01-31T00:00:00"}`)
	})

	draft, err := client.UploadContract(context.Background(), "/tmp/contracts/acme.pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("UploadContract failed: %v", err)
	}
	if draft.SupplierName != "Acme" || draft.Price.StringFixed(2) != "250.50" || draft.ValidUntil == nil {
		t.Errorf("Unexpected draft %+v", draft)
	}
}

func TestClient_ConfirmContract(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["price"] != 250.5 || body["valid_until"] != "2027-01-31T00:00:00" {
			t.Errorf("Unexpected body %v", body)
		}
		_, _ = io.WriteString(w, `{"message": "saved", "contract_id": 7}`)
	})

	valid := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)
	draft, _ := (wireContractDraft{SupplierName: "Acme", ProductName: "Toner", Price: "250.5"}).toEntity()
	draft.ValidUntil = &valid

	confirmation, err := client.ConfirmContract(context.Background(), *draft)
	if err != nil {
		t.Fatalf("ConfirmContract failed: %v", err)
	}
	if confirmation.ContractID != 7 {
		t.Errorf("Expected contract id 7, got %d", confirmation.ContractID)
	}
}

func TestClient_SendMessageActions(t *testing.T) {
	testCases := []struct {
		name   string
		body   string
		kind   entities.AssistantAction
		target string
	}{
		{"no action", `{"reply": "hi"}`, "", ""},
		{"bare action", `{"reply": "here", "action": "open_report"}`, entities.AssistantOpenReport, ""},
		{"object action", `{"reply": "look", "action": {"type": "open_view", "target": "orders"}}`, entities.AssistantOpenView, "orders"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tc.body)
			})

			reply, err := client.SendMessage(context.Background(), "hello")
			if err != nil {
				t.Fatalf("SendMessage failed: %v", err)
			}
			if tc.kind == "" {
				if reply.Action != nil {
					t.Errorf("Expected no action, got %+v", reply.Action)
				}
				return
			}
			if reply.Action == nil || reply.Action.Kind != tc.kind || reply.Action.Target != tc.target {
				t.Errorf("Expected %s/%s, got %+v", tc.kind, tc.target, reply.Action)
			}
		})
	}
}

func TestClient_DocumentURLs(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://127.0.0.1:8000/"}, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.ReportURL() != "http://127.0.0.1:8000/analytics/report/pdf" {
		t.Errorf("Unexpected report URL %s", client.ReportURL())
	}
	if client.OrderDocumentURL("ORD-1") != "http://127.0.0.1:8000/orders/ORD-1/pdf" {
		t.Errorf("Unexpected order URL %s", client.OrderDocumentURL("ORD-1"))
	}
}

package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/appetiteclub/apt"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestRouter(s *Session) http.Handler {
	h := NewHandler(HandlerDeps{Session: s}, apt.NewNoopLogger())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()

	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("cannot decode response %s: %v", w.Body.String(), err)
	}
	if err := json.Unmarshal(resp.Data, target); err != nil {
		t.Fatalf("cannot decode data %s: %v", resp.Data, err)
	}
}

func TestNewHandler(t *testing.T) {
	tests := []struct {
		name   string
		deps   HandlerDeps
		logger apt.Logger
	}{
		{
			name: "withAllDependencies",
			deps: HandlerDeps{
				Session:  newTestSession(NewMockGateway(), nil, newFakeClock(sessionStart)),
				Gatherer: prometheus.NewRegistry(),
			},
			logger: apt.NewNoopLogger(),
		},
		{
			name:   "withNilLogger",
			deps:   HandlerDeps{},
			logger: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if h := NewHandler(tt.deps, tt.logger); h == nil {
				t.Error("NewHandler() returned nil")
			}
		})
	}
}

func TestHandlerRegisterRoutes(t *testing.T) {
	h := NewHandler(HandlerDeps{Gatherer: prometheus.NewRegistry()}, apt.NewNoopLogger())
	r := chi.NewRouter()

	// Should not panic
	h.RegisterRoutes(r)
}

func TestHandlerListCatalog(t *testing.T) {
	router := newTestRouter(newTestSession(NewMockGateway(), nil, newFakeClock(sessionStart)))

	w := doRequest(t, router, http.MethodGet, "/catalog", "")
	if w.Code != http.StatusOK {
		t.Fatalf("ListCatalog() status = %d, want %d", w.Code, http.StatusOK)
	}

	var items []CatalogItem
	decodeData(t, w, &items)
	if len(items) != 8 {
		t.Errorf("ListCatalog() returned %d items, want 8", len(items))
	}
}

func TestHandlerDraftFlow(t *testing.T) {
	s := newTestSession(NewMockGateway(), nil, newFakeClock(sessionStart))
	router := newTestRouter(s)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{name: "addItem", method: http.MethodPost, path: "/draft/items", body: `{"catalog_item_id": 2}`, expectedStatus: http.StatusOK},
		{name: "addUnknownItem", method: http.MethodPost, path: "/draft/items", body: `{"catalog_item_id": 99}`, expectedStatus: http.StatusBadRequest},
		{name: "addInvalidJSON", method: http.MethodPost, path: "/draft/items", body: `{`, expectedStatus: http.StatusBadRequest},
		{name: "parkWithoutLocation", method: http.MethodPost, path: "/draft/park", expectedStatus: http.StatusBadRequest},
		{name: "blankLocation", method: http.MethodPut, path: "/draft/location", body: `{"location": " "}`, expectedStatus: http.StatusBadRequest},
		{name: "setLocation", method: http.MethodPut, path: "/draft/location", body: `{"location": "Mesa 1"}`, expectedStatus: http.StatusOK},
		{name: "quoteDraft", method: http.MethodGet, path: "/draft/change?tendered=20", expectedStatus: http.StatusOK},
		{name: "quoteDraftInvalid", method: http.MethodGet, path: "/draft/change?tendered=abc", expectedStatus: http.StatusBadRequest},
		{name: "getDraft", method: http.MethodGet, path: "/draft", expectedStatus: http.StatusOK},
		{name: "park", method: http.MethodPost, path: "/draft/park", expectedStatus: http.StatusCreated},
		{name: "listOrders", method: http.MethodGet, path: "/orders", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, tt.method, tt.path, tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("%s %s status = %d, want %d: %s", tt.method, tt.path, w.Code, tt.expectedStatus, w.Body.String())
			}
		})
	}

	if got := len(s.State().Queue); got != 1 {
		t.Errorf("queue len = %d, want 1", got)
	}
}

func TestHandlerQuoteDraft(t *testing.T) {
	s := newTestSession(NewMockGateway(), nil, newFakeClock(sessionStart))
	_, _ = s.AddItem(2)
	router := newTestRouter(s)

	w := doRequest(t, router, http.MethodGet, "/draft/change?tendered=20", "")
	if w.Code != http.StatusOK {
		t.Fatalf("QuoteDraft() status = %d", w.Code)
	}

	var c Change
	decodeData(t, w, &c)
	if !c.ChangeDue.Equal(dec("7")) || c.Count(dec("5")) != 1 || c.Count(dec("2")) != 1 {
		t.Errorf("QuoteDraft() = %+v", c)
	}
}

func TestHandlerClearDraft(t *testing.T) {
	s := newTestSession(NewMockGateway(), nil, newFakeClock(sessionStart))
	_, _ = s.AddItem(2)
	router := newTestRouter(s)

	w := doRequest(t, router, http.MethodDelete, "/draft", "")
	if w.Code != http.StatusOK {
		t.Fatalf("ClearDraft() status = %d", w.Code)
	}
	if len(s.State().Draft.Items) != 0 {
		t.Error("ClearDraft() kept the items")
	}
}

func TestHandlerOrderEndpoints(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           func(id int64) string
		body           string
		expectedStatus int
	}{
		{name: "getOrder", method: http.MethodGet, path: orderPath(""), expectedStatus: http.StatusOK},
		{name: "getUnknown", method: http.MethodGet, path: fixedPath("/orders/1"), expectedStatus: http.StatusNotFound},
		{name: "getInvalidID", method: http.MethodGet, path: fixedPath("/orders/abc"), expectedStatus: http.StatusBadRequest},
		{name: "quote", method: http.MethodGet, path: orderPath("/change?tendered=100"), expectedStatus: http.StatusOK},
		{name: "quoteUnknown", method: http.MethodGet, path: fixedPath("/orders/1/change?tendered=100"), expectedStatus: http.StatusNotFound},
		{name: "payShort", method: http.MethodPost, path: orderPath("/pay"), body: `{"tendered": "10"}`, expectedStatus: http.StatusUnprocessableEntity},
		{name: "payInvalidJSON", method: http.MethodPost, path: orderPath("/pay"), body: `tendered=100`, expectedStatus: http.StatusBadRequest},
		{name: "pay", method: http.MethodPost, path: orderPath("/pay"), body: `{"tendered": 100}`, expectedStatus: http.StatusCreated},
		{name: "payUnknown", method: http.MethodPost, path: fixedPath("/orders/1/pay"), body: `{"tendered": 100}`, expectedStatus: http.StatusNotFound},
		{name: "resume", method: http.MethodPost, path: orderPath("/resume"), expectedStatus: http.StatusOK},
		{name: "resumeUnknown", method: http.MethodPost, path: fixedPath("/orders/1/resume"), expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(NewMockGateway(), nil, newFakeClock(sessionStart))
			o := parkOrder(t, s, "Mesa 1", 2, 2, 2, 6, 6)
			router := newTestRouter(s)

			path := tt.path(o.ID)
			w := doRequest(t, router, tt.method, path, tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("%s %s status = %d, want %d: %s", tt.method, path, w.Code, tt.expectedStatus, w.Body.String())
			}
		})
	}
}

func orderPath(suffix string) func(int64) string {
	return func(id int64) string {
		return "/orders/" + strconv.FormatInt(id, 10) + suffix
	}
}

func fixedPath(path string) func(int64) string {
	return func(int64) string {
		return path
	}
}

func TestHandlerPayOrderResponse(t *testing.T) {
	s := newTestSession(NewMockGateway(), nil, newFakeClock(sessionStart))
	o := parkOrder(t, s, "Mesa 1", 2, 2, 2, 6, 6)
	router := newTestRouter(s)

	w := doRequest(t, router, http.MethodPost, "/orders/"+strconv.FormatInt(o.ID, 10)+"/pay", `{"tendered": "100"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("PayOrder() status = %d: %s", w.Code, w.Body.String())
	}

	var resp PayResponse
	decodeData(t, w, &resp)
	if resp.Sale.ID != o.ID || !resp.Sale.Change.Equal(dec("21")) {
		t.Errorf("PayOrder() sale = %+v", resp.Sale)
	}
	if resp.Change.Count(dec("20")) != 1 || resp.Change.Count(dec("1")) != 1 {
		t.Errorf("PayOrder() breakdown = %+v", resp.Change.Breakdown)
	}
}

func TestHandlerGetOrderWithRouteContext(t *testing.T) {
	s := newTestSession(NewMockGateway(), nil, newFakeClock(sessionStart))
	o := parkOrder(t, s, "Barra", 1)
	h := NewHandler(HandlerDeps{Session: s}, apt.NewNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/orders/"+strconv.FormatInt(o.ID, 10), nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", strconv.FormatInt(o.ID, 10))
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	h.GetOrder(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GetOrder() status = %d, want %d", w.Code, http.StatusOK)
	}
	var got Order
	decodeData(t, w, &got)
	if got.ID != o.ID || got.Location != "Barra" {
		t.Errorf("GetOrder() = %+v", got)
	}
}

func TestHandlerSales(t *testing.T) {
	s := newTestSession(NewMockGateway(), nil, newFakeClock(sessionStart))
	router := newTestRouter(s)

	w := doRequest(t, router, http.MethodGet, "/sales/export", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("ExportSales() with no sales status = %d, want %d", w.Code, http.StatusNotFound)
	}

	o := parkOrder(t, s, "Mesa 1", 1)
	if _, _, err := s.Pay(context.Background(), o.ID, dec("10")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{name: "listAll", path: "/sales", expectedStatus: http.StatusOK},
		{name: "listDay", path: "/sales?date=2024-05-01", expectedStatus: http.StatusOK},
		{name: "listInvalidDate", path: "/sales?date=01-05-2024", expectedStatus: http.StatusBadRequest},
		{name: "exportEmptyDay", path: "/sales/export?date=2023-01-01", expectedStatus: http.StatusNotFound},
		{name: "exportInvalidDate", path: "/sales/export?date=yesterday", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodGet, tt.path, "")
			if w.Code != tt.expectedStatus {
				t.Errorf("GET %s status = %d, want %d", tt.path, w.Code, tt.expectedStatus)
			}
		})
	}

	w = doRequest(t, router, http.MethodGet, "/sales/export?date=2024-05-01", "")
	if w.Code != http.StatusOK {
		t.Fatalf("ExportSales() status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("ExportSales() Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "historial_tacos_2024-05-01.csv") {
		t.Errorf("ExportSales() Content-Disposition = %q", cd)
	}
	if !strings.HasPrefix(w.Body.String(), exportHeader) {
		t.Errorf("ExportSales() body = %q", w.Body.String())
	}
}

func TestHandlerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewSession(context.Background(), SessionDeps{
		Gateway: NewMockGateway(),
		Metrics: NewMetrics(reg),
		Clock:   newFakeClock(sessionStart).Now,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	parkOrder(t, s, "Mesa 1", 1)

	h := NewHandler(HandlerDeps{Session: s, Gatherer: reg}, apt.NewNoopLogger())
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	w := doRequest(t, r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "tacopos_orders_parked_total 1") {
		t.Errorf("metrics output missing parked counter:\n%s", w.Body.String())
	}
}

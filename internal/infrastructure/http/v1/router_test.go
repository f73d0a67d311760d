package v1_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/audit"
	"storefront/internal/domain/catalog/product"
	"storefront/internal/domain/inventory"
	"storefront/internal/domain/orders"
	v1 "storefront/internal/infrastructure/http/v1"
	"storefront/internal/infrastructure/storage/memory"
	"storefront/pkg/logger"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := memory.NewStore()
	txManager := memory.NewTxManager(store)
	productRepo := memory.NewProductRepo(store)
	orderRepo := memory.NewOrderRepo(store)
	auditor := audit.Nop{}

	log, err := logger.New(logger.Config{Level: "error", Development: false})
	require.NoError(t, err)

	return v1.NewRouter(v1.RouterConfig{
		Logger:           log,
		ProductService:   product.NewService(productRepo, txManager, auditor),
		OrderService:     orders.NewService(orderRepo, productRepo, txManager, auditor),
		InventoryService: inventory.NewService(productRepo, txManager, auditor),
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createProduct(t *testing.T, router http.Handler, name string, price string, stock int64) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/products", map[string]any{
		"name":     name,
		"price":    price,
		"category": "test",
		"stock":    stock,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, ok := decode(t, w)["id"].(string)
	require.True(t, ok, "create response must carry id")
	return id
}

func TestProductLifecycle(t *testing.T) {
	router := newTestRouter(t)

	productID := createProduct(t, router, "widget", "10.00", 5)

	// Read back
	w := doJSON(t, router, http.MethodGet, "/api/v1/products/"+productID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Equal(t, "widget", got["name"])
	assert.Equal(t, float64(5), got["stock"])

	// Update
	w = doJSON(t, router, http.MethodPut, "/api/v1/products/"+productID, map[string]any{
		"name":    "widget mk2",
		"version": 1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "widget mk2", decode(t, w)["name"])

	// List with category filter
	w = doJSON(t, router, http.MethodGet, "/api/v1/products?category=test", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["totalCount"])

	// Delete
	w = doJSON(t, router, http.MethodDelete, "/api/v1/products/"+productID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/products/"+productID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w)["code"])
}

func TestPlaceOrderEndpoint(t *testing.T) {
	router := newTestRouter(t)

	productID := createProduct(t, router, "widget", "10.00", 3)

	// Duplicate ids are one line with quantity 2.
	w := doJSON(t, router, http.MethodPost, "/api/v1/orders", map[string]any{
		"customerId": "cust-1",
		"productIds": []string{productID, productID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode(t, w)
	assert.Equal(t, "Pending", order["status"])
	items := order["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(2), items[0].(map[string]any)["quantity"])

	// Stock consumed by admission.
	w = doJSON(t, router, http.MethodGet, "/api/v1/products/"+productID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["stock"])

	// Second order over remaining stock is rejected as a whole.
	w = doJSON(t, router, http.MethodPost, "/api/v1/orders", map[string]any{
		"customerId": "cust-1",
		"productIds": []string{productID, productID},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, float64(2), details["requested"])
	assert.Equal(t, float64(1), details["available"])

	// Customer history
	w = doJSON(t, router, http.MethodGet, "/api/v1/customers/cust-1/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["totalCount"])
}

func TestPlaceOrderEndpoint_Validation(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing customer", map[string]any{"productIds": []string{}}},
		{"empty products", map[string]any{"customerId": "c", "productIds": []string{}}},
		{"malformed product id", map[string]any{"customerId": "c", "productIds": []string{"not-a-uuid"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/v1/orders", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["code"])
		})
	}
}

func TestAdjustStockEndpoint(t *testing.T) {
	router := newTestRouter(t)

	productID := createProduct(t, router, "widget", "10.00", 2)
	path := fmt.Sprintf("/api/v1/products/%s/inventory", productID)

	// Restock
	w := doJSON(t, router, http.MethodPost, path, map[string]any{"delta": 10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(12), decode(t, w)["stock"])

	// Rejected drain below zero
	w = doJSON(t, router, http.MethodPost, path, map[string]any{"delta": -20})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "INVALID_ADJUSTMENT", body["code"])

	// Stock unchanged after rejection
	w = doJSON(t, router, http.MethodGet, "/api/v1/products/"+productID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(12), decode(t, w)["stock"])

	// Missing delta field
	w = doJSON(t, router, http.MethodPost, path, map[string]any{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["code"])
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health/live", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestTraceHeadersPropagated(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "req-123")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

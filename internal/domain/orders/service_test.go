package orders_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"storefront/internal/core/apperror"
	"storefront/internal/core/id"
	"storefront/internal/domain/audit"
	"storefront/internal/domain/catalog/product"
	"storefront/internal/domain/orders"
	"storefront/internal/infrastructure/storage/memory"
)

type testEnv struct {
	products *memory.ProductRepo
	orders   *memory.OrderRepo
	service  *orders.Service
}

func newTestEnv() *testEnv {
	store := memory.NewStore()
	txManager := memory.NewTxManager(store)
	productRepo := memory.NewProductRepo(store)
	orderRepo := memory.NewOrderRepo(store)

	return &testEnv{
		products: productRepo,
		orders:   orderRepo,
		service:  orders.NewService(orderRepo, productRepo, txManager, audit.Nop{}),
	}
}

func (e *testEnv) seedProduct(t *testing.T, name string, price string, stock int64) *product.Product {
	t.Helper()
	p := product.New(name, decimal.RequireFromString(price), "test", stock)
	if err := e.products.Create(context.Background(), p); err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return p
}

func (e *testEnv) stockOf(t *testing.T, productID id.ID) int64 {
	t.Helper()
	p, err := e.products.GetByID(context.Background(), productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	return p.Stock
}

func TestPlaceOrder_AggregatesDuplicateLines(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	a := env.seedProduct(t, "widget", "10.00", 5)
	b := env.seedProduct(t, "gadget", "20.00", 5)

	// a appears twice: one line with quantity 2, availability checked once
	// against the combined quantity.
	order, err := env.service.PlaceOrder(ctx, "cust-1", []id.ID{a.ID, b.ID, a.ID})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if len(order.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(order.Items))
	}
	if order.Items[0].ProductID != a.ID || order.Items[0].Quantity != 2 {
		t.Errorf("line 0: want product %s qty 2, got %s qty %d",
			a.ID, order.Items[0].ProductID, order.Items[0].Quantity)
	}
	if order.Items[1].ProductID != b.ID || order.Items[1].Quantity != 1 {
		t.Errorf("line 1: want product %s qty 1, got %s qty %d",
			b.ID, order.Items[1].ProductID, order.Items[1].Quantity)
	}
	if order.Status != orders.StatusPending {
		t.Errorf("expected status Pending, got %s", order.Status)
	}

	if got := env.stockOf(t, a.ID); got != 3 {
		t.Errorf("product a stock: want 3, got %d", got)
	}
	if got := env.stockOf(t, b.ID); got != 4 {
		t.Errorf("product b stock: want 4, got %d", got)
	}
}

func TestPlaceOrder_DuplicateExceedsStock(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Stock 1, requested twice: the combined quantity 2 must be rejected even
	// though each occurrence alone would fit.
	a := env.seedProduct(t, "widget", "10.00", 1)

	_, err := env.service.PlaceOrder(ctx, "cust-1", []id.ID{a.ID, a.ID})
	if !apperror.IsCode(err, apperror.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}

	if got := env.stockOf(t, a.ID); got != 1 {
		t.Errorf("stock must be unchanged, got %d", got)
	}
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	a := env.seedProduct(t, "widget", "10.00", 5)

	_, err := env.service.PlaceOrder(ctx, "cust-1", []id.ID{a.ID, id.New()})
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}

	// Nothing admitted, nothing consumed.
	if got := env.stockOf(t, a.ID); got != 5 {
		t.Errorf("stock must be unchanged, got %d", got)
	}
	result, err := env.service.ListByCustomer(ctx, "cust-1")
	if err != nil {
		t.Fatalf("ListByCustomer failed: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("expected no orders, got %d", len(result))
	}
}

func TestPlaceOrder_InsufficientLineLeavesOtherLinesUntouched(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	a := env.seedProduct(t, "widget", "10.00", 5)
	b := env.seedProduct(t, "gadget", "20.00", 0)

	_, err := env.service.PlaceOrder(ctx, "cust-1", []id.ID{a.ID, b.ID})
	if !apperror.IsCode(err, apperror.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}

	if got := env.stockOf(t, a.ID); got != 5 {
		t.Errorf("product a stock must be unchanged, got %d", got)
	}
	if got := env.stockOf(t, b.ID); got != 0 {
		t.Errorf("product b stock must be unchanged, got %d", got)
	}
}

func TestPlaceOrder_Validation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	a := env.seedProduct(t, "widget", "10.00", 5)

	tests := []struct {
		name       string
		customerID string
		productIDs []id.ID
	}{
		{"empty customer", "", []id.ID{a.ID}},
		{"no products", "cust-1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.PlaceOrder(ctx, tt.customerID, tt.productIDs)
			if !apperror.IsCode(err, apperror.CodeValidation) {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestPlaceOrder_ConcurrentNoOversell(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	const stock = 5
	const attempts = 20
	a := env.seedProduct(t, "widget", "10.00", stock)

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.service.PlaceOrder(ctx, "cust-1", []id.ID{a.ID})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperror.IsCode(err, apperror.CodeInsufficientStock):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != stock {
		t.Errorf("expected exactly %d admissions, got %d", stock, succeeded)
	}
	if got := env.stockOf(t, a.ID); got != 0 {
		t.Errorf("expected stock 0, got %d", got)
	}
}

func TestOrderSnapshotSurvivesProductChanges(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	a := env.seedProduct(t, "widget", "10.00", 5)

	order, err := env.service.PlaceOrder(ctx, "cust-1", []id.ID{a.ID})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if err := env.products.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	got, err := env.service.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Items[0].Name != "widget" {
		t.Errorf("snapshot name lost: %q", got.Items[0].Name)
	}
	if !got.Items[0].Price.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("snapshot price lost: %s", got.Items[0].Price)
	}
}

func TestListByCustomer_NewestFirst(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	a := env.seedProduct(t, "widget", "10.00", 10)

	first, err := env.service.PlaceOrder(ctx, "cust-1", []id.ID{a.ID})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	second, err := env.service.PlaceOrder(ctx, "cust-1", []id.ID{a.ID})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if _, err := env.service.PlaceOrder(ctx, "cust-2", []id.ID{a.ID}); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	result, err := env.service.ListByCustomer(ctx, "cust-1")
	if err != nil {
		t.Fatalf("ListByCustomer failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(result))
	}
	if result[0].ID != second.ID || result[1].ID != first.ID {
		t.Errorf("expected newest first: got %s, %s", result[0].ID, result[1].ID)
	}
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	a := env.seedProduct(t, "widget", "10.00", 5)
	order, err := env.service.PlaceOrder(ctx, "cust-1", []id.ID{a.ID})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	updated, err := env.service.UpdateStatus(ctx, order.ID, "Shipped")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != "Shipped" {
		t.Errorf("expected status Shipped, got %s", updated.Status)
	}

	if _, err := env.service.UpdateStatus(ctx, order.ID, ""); !apperror.IsCode(err, apperror.CodeValidation) {
		t.Errorf("empty status: expected VALIDATION_ERROR, got %v", err)
	}
	if _, err := env.service.UpdateStatus(ctx, id.New(), "Shipped"); !apperror.IsNotFound(err) {
		t.Errorf("unknown order: expected NOT_FOUND, got %v", err)
	}
}

func TestDeleteOrder_StockNotRestored(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	a := env.seedProduct(t, "widget", "10.00", 5)
	order, err := env.service.PlaceOrder(ctx, "cust-1", []id.ID{a.ID})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if err := env.service.Delete(ctx, order.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := env.service.GetByID(ctx, order.ID); !apperror.IsNotFound(err) {
		t.Errorf("expected NOT_FOUND after delete, got %v", err)
	}
	if got := env.stockOf(t, a.ID); got != 4 {
		t.Errorf("stock must stay consumed, got %d", got)
	}
}

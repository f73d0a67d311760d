package orders

import (
	"context"
	"fmt"
	"sort"

	"storefront/internal/core/apperror"
	"storefront/internal/core/id"
	"storefront/internal/core/tx"
	"storefront/internal/domain/audit"
	"storefront/internal/domain/catalog/product"
	"storefront/pkg/logger"
)

// Service is the order admission engine. Admission validates every requested
// product, consumes its stock and creates the order as one transaction:
// either the order exists and every line's stock was decremented, or nothing
// changed.
type Service struct {
	repo      Repository
	products  product.Repository
	txManager tx.Manager
	auditor   audit.Recorder
}

// NewService creates a new order admission service.
func NewService(repo Repository, products product.Repository, txManager tx.Manager, auditor audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		txManager: txManager,
		auditor:   auditor,
	}
}

// requestedLine is an aggregated admission line: the same product id
// requested N times becomes one line with quantity N, so availability is
// checked against the combined quantity, not per occurrence.
type requestedLine struct {
	productID id.ID
	quantity  int64
}

// aggregate collapses duplicate product ids preserving first-seen order.
func aggregate(productIDs []id.ID) []requestedLine {
	index := make(map[id.ID]int, len(productIDs))
	lines := make([]requestedLine, 0, len(productIDs))

	for _, pid := range productIDs {
		if i, ok := index[pid]; ok {
			lines[i].quantity++
			continue
		}
		index[pid] = len(lines)
		lines = append(lines, requestedLine{productID: pid, quantity: 1})
	}

	return lines
}

// PlaceOrder admits an order for the requested products.
//
// Every product must resolve and have stock for its combined requested
// quantity. Validation and the stock decrement happen under per-product
// locks inside a single transaction, so two concurrent admissions cannot
// both consume the last unit. A failed admission changes nothing.
func (s *Service) PlaceOrder(ctx context.Context, customerID string, productIDs []id.ID) (*Order, error) {
	if customerID == "" {
		return nil, apperror.NewValidation("customerId is required").
			WithDetail("field", "customerId")
	}
	if len(productIDs) == 0 {
		return nil, apperror.NewValidation("productIds must not be empty").
			WithDetail("field", "productIds")
	}

	lines := aggregate(productIDs)

	// Lock products in a stable order so concurrent admissions over
	// overlapping product sets cannot deadlock.
	lockOrder := make([]requestedLine, len(lines))
	copy(lockOrder, lines)
	sort.Slice(lockOrder, func(i, j int) bool {
		a, b := lockOrder[i].productID, lockOrder[j].productID
		return a.String() < b.String()
	})

	var order *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		snapshots := make(map[id.ID]*product.Product, len(lockOrder))

		// Phase 1: resolve and lock every product, checking availability
		// against the aggregated quantity. No mutation yet.
		for _, line := range lockOrder {
			p, err := s.products.GetForUpdate(ctx, line.productID)
			if err != nil {
				return err
			}
			if p.Stock < line.quantity {
				return apperror.NewInsufficientStock(p.ID.String(), line.quantity, p.Stock)
			}
			snapshots[p.ID] = p
		}

		// Phase 2: all lines are satisfiable and locked, consume stock.
		for _, line := range lockOrder {
			if _, err := s.products.ApplyStockDelta(ctx, line.productID, -line.quantity); err != nil {
				return fmt.Errorf("consume stock for %s: %w", line.productID, err)
			}
		}

		items := make([]OrderItem, len(lines))
		for i, line := range lines {
			p := snapshots[line.productID]
			items[i] = OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				Price:     p.Price,
				Quantity:  line.quantity,
			}
		}

		order = New(customerID, items)
		if err := order.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		return s.auditor.Record(ctx, "order", order.ID, audit.ActionAdmit, map[string]any{
			"customer_id": customerID,
			"lines":       len(items),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order admitted",
		"id", order.ID,
		"customer_id", customerID,
		"lines", len(order.Items),
	)
	return order, nil
}

// GetByID retrieves an order with its item snapshots.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// ListByCustomer retrieves all orders placed by a customer.
func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]*Order, error) {
	if customerID == "" {
		return nil, apperror.NewValidation("customerId is required")
	}
	return s.repo.ListByCustomer(ctx, customerID)
}

// UpdateStatus sets the order's status label. Any non-empty value is
// accepted; there is no state machine over statuses.
func (s *Service) UpdateStatus(ctx context.Context, orderID id.ID, status Status) (*Order, error) {
	if status == "" {
		return nil, apperror.NewValidation("status is required").
			WithDetail("field", "status")
	}

	var updated *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.UpdateStatus(ctx, orderID, status)
		if err != nil {
			return err
		}
		updated = o
		return s.auditor.Record(ctx, "order", orderID, audit.ActionUpdate, map[string]any{
			"status": string(status),
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an order. Stock consumed at admission is not restored.
func (s *Service) Delete(ctx context.Context, orderID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, orderID); err != nil {
			return err
		}
		return s.auditor.Record(ctx, "order", orderID, audit.ActionDelete, nil)
	})
}

package orders

import (
	"context"

	"storefront/internal/core/id"
)

// Repository is the order store contract.
type Repository interface {
	// Create persists the order together with its item snapshots.
	Create(ctx context.Context, o *Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)

	// ListByCustomer retrieves all orders for a customer, newest first.
	ListByCustomer(ctx context.Context, customerID string) ([]*Order, error)

	// UpdateStatus sets the status label of an existing order.
	UpdateStatus(ctx context.Context, orderID id.ID, status Status) (*Order, error)

	// Delete removes the order and its items. Product stock is not restored.
	Delete(ctx context.Context, orderID id.ID) error
}

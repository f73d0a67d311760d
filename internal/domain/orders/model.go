// Package orders provides order records and the admission engine that
// creates them against product availability.
package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/core/apperror"
	"storefront/internal/core/id"
)

// Status is an order lifecycle label. It is an open value: callers may set
// any non-empty string, there is no state machine.
type Status string

// StatusPending is assigned to every newly admitted order.
const StatusPending Status = "Pending"

// OrderItem is a snapshot of a product line taken at admission time.
// It stays valid even if the referenced product is later changed or deleted.
type OrderItem struct {
	ProductID id.ID           `db:"product_id" json:"productId"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Quantity  int64           `db:"quantity" json:"quantity"`
}

// Order is an admitted customer order.
type Order struct {
	// ID is the primary key (UUIDv7), assigned at admission, immutable.
	ID id.ID `db:"id" json:"id"`

	// CustomerID identifies the ordering customer. Customers are not
	// modeled, so the value is not validated against a registry.
	CustomerID string `db:"customer_id" json:"customerId"`

	// Items is the product snapshot captured at admission, in request order.
	Items []OrderItem `db:"-" json:"items"`

	// Status is the current lifecycle label.
	Status Status `db:"status" json:"status"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates an Order in Pending status with a generated ID.
func New(customerID string, items []OrderItem) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:         id.New(),
		CustomerID: customerID,
		Items:      items,
		Status:     StatusPending,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks order invariants.
func (o *Order) Validate(ctx context.Context) error {
	if o.CustomerID == "" {
		return apperror.NewValidation("customerId is required").
			WithDetail("field", "customerId")
	}

	if len(o.Items) == 0 {
		return apperror.NewValidation("order must contain at least one item").
			WithDetail("field", "items")
	}

	for i, item := range o.Items {
		if item.Quantity <= 0 {
			return apperror.NewValidation("item quantity must be positive").
				WithDetail("field", "items").
				WithDetail("index", i)
		}
	}

	return nil
}

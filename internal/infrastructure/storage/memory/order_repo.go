package memory

import (
	"context"
	"sort"
	"time"

	"storefront/internal/core/apperror"
	"storefront/internal/core/id"
	"storefront/internal/domain/orders"
)

// OrderRepo implements orders.Repository over the in-memory store.
type OrderRepo struct {
	store *Store
}

var _ orders.Repository = (*OrderRepo)(nil)

// NewOrderRepo creates an order repository over the store.
func NewOrderRepo(store *Store) *OrderRepo {
	return &OrderRepo{store: store}
}

func (r *OrderRepo) Create(ctx context.Context, o *orders.Order) error {
	defer r.store.acquire(ctx)()

	if _, exists := r.store.orders[o.ID]; exists {
		return apperror.NewConflict("order already exists").
			WithDetail("id", o.ID.String())
	}

	r.store.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	defer r.store.acquire(ctx)()

	o, ok := r.store.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID.String())
	}
	return cloneOrder(o), nil
}

func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID string) ([]*orders.Order, error) {
	defer r.store.acquire(ctx)()

	var result []*orders.Order
	for _, o := range r.store.orders {
		if o.CustomerID == customerID {
			result = append(result, cloneOrder(o))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID id.ID, status orders.Status) (*orders.Order, error) {
	defer r.store.acquire(ctx)()

	o, ok := r.store.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID.String())
	}

	o.Status = status
	o.Version++
	o.UpdatedAt = time.Now().UTC()
	return cloneOrder(o), nil
}

func (r *OrderRepo) Delete(ctx context.Context, orderID id.ID) error {
	defer r.store.acquire(ctx)()

	if _, ok := r.store.orders[orderID]; !ok {
		return apperror.NewNotFound("order", orderID.String())
	}
	delete(r.store.orders, orderID)
	return nil
}

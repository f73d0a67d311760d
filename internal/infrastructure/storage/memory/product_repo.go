package memory

import (
	"context"
	"sort"

	"storefront/internal/core/apperror"
	"storefront/internal/core/id"
	"storefront/internal/domain/catalog/product"
)

// ProductRepo implements product.Repository over the in-memory store.
// The transaction mutex doubles as the per-product lock: while a
// transaction holds the store, no other goroutine can observe or change
// any product, which is strictly stronger than row locking.
type ProductRepo struct {
	store *Store
}

var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a product repository over the store.
func NewProductRepo(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	defer r.store.acquire(ctx)()

	if _, exists := r.store.products[p.ID]; exists {
		return apperror.NewConflict("product already exists").
			WithDetail("id", p.ID.String())
	}

	r.store.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	defer r.store.acquire(ctx)()

	p, ok := r.store.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return cloneProduct(p), nil
}

// GetForUpdate behaves like GetByID; exclusivity comes from the enclosing
// transaction holding the store mutex.
func (r *ProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	return r.GetByID(ctx, productID)
}

func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	defer r.store.acquire(ctx)()

	result := make([]*product.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		if filter.Category != nil && p.Category != *filter.Category {
			continue
		}
		if filter.MinPrice != nil && p.Price.LessThan(*filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && p.Price.GreaterThan(*filter.MaxPrice) {
			continue
		}
		result = append(result, cloneProduct(p))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.String() < result[j].ID.String()
	})

	return result, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	defer r.store.acquire(ctx)()

	current, ok := r.store.products[p.ID]
	if !ok {
		return apperror.NewNotFound("product", p.ID.String())
	}
	if current.Version != p.Version {
		return apperror.NewConcurrentModification("product", p.ID.String())
	}

	updated := cloneProduct(p)
	updated.Stock = current.Stock // stock changes go through ApplyStockDelta only
	updated.Version = current.Version + 1
	r.store.products[p.ID] = updated
	p.Version = updated.Version
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	defer r.store.acquire(ctx)()

	if _, ok := r.store.products[productID]; !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	delete(r.store.products, productID)
	return nil
}

func (r *ProductRepo) ApplyStockDelta(ctx context.Context, productID id.ID, delta int64) (*product.Product, error) {
	defer r.store.acquire(ctx)()

	p, ok := r.store.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}

	if p.Stock+delta < 0 {
		return nil, apperror.NewInvalidAdjustment(productID.String(), delta, p.Stock)
	}

	p.Stock += delta
	p.Touch()
	return cloneProduct(p), nil
}

package product

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/core/id"
)

// ListFilter narrows catalog listing. Empty fields are ignored.
type ListFilter struct {
	Category *string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Repository is the product store contract.
//
// GetForUpdate and ApplyStockDelta are the only paths that may participate
// in a stock mutation: both must hold a per-product lock for the duration of
// the enclosing transaction so that check-then-mutate sequences cannot
// interleave on the same product.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)

	// GetForUpdate retrieves the product with a per-product lock held until
	// the enclosing transaction ends.
	GetForUpdate(ctx context.Context, productID id.ID) (*Product, error)

	List(ctx context.Context, filter ListFilter) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, productID id.ID) error

	// ApplyStockDelta atomically adds delta to the product's stock and
	// returns the updated record. Fails with InvalidAdjustment if the result
	// would be negative, leaving stock unchanged.
	ApplyStockDelta(ctx context.Context, productID id.ID, delta int64) (*Product, error)
}

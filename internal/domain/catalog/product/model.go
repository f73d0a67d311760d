// Package product provides the product catalog: the records that order
// admission and inventory adjustment read and mutate.
package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/core/apperror"
	"storefront/internal/core/id"
)

// Product is a catalog record with an available stock counter.
//
// Stock is mutated only through Repository.ApplyStockDelta and the order
// admission path; it must never be observable below zero.
type Product struct {
	// ID is the primary key (UUIDv7), assigned at creation, immutable.
	ID id.ID `db:"id" json:"id"`

	// Name is the display name, required.
	Name string `db:"name" json:"name"`

	// Price is the unit price, must be positive.
	Price decimal.Decimal `db:"price" json:"price"`

	// Description is optional free text.
	Description *string `db:"description" json:"description,omitempty"`

	// Category groups products for catalog filtering, required.
	Category string `db:"category" json:"category"`

	// Stock is the count of available units, never negative.
	Stock int64 `db:"stock" json:"stock"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a Product with a generated ID and timestamps.
func New(name string, price decimal.Decimal, category string, stock int64) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:        id.New(),
		Name:      name,
		Price:     price,
		Category:  category,
		Stock:     stock,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp and increments version.
func (p *Product) Touch() {
	p.UpdatedAt = time.Now().UTC()
	p.Version++
}

// Validate checks product invariants.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	if p.Category == "" {
		return apperror.NewValidation("category is required").
			WithDetail("field", "category")
	}

	if !p.Price.IsPositive() {
		return apperror.NewValidation("price must be positive").
			WithDetail("field", "price").
			WithDetail("value", p.Price.String())
	}

	if p.Stock < 0 {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "stock").
			WithDetail("value", p.Stock)
	}

	return nil
}

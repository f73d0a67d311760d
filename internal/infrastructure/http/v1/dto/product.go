package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/catalog/product"
)

// ProductResponse contains product fields.
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category"`
	Stock       int64           `json:"stock"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// FromProduct creates ProductResponse from a product record.
func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
		Stock:       p.Stock,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ProductListResponse wraps a catalog listing.
type ProductListResponse struct {
	Items      []ProductResponse `json:"items"`
	TotalCount int               `json:"totalCount"`
}

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Description *string         `json:"description"`
	Category    string          `json:"category" binding:"required"`
	Stock       int64           `json:"stock" binding:"min=0"`
}

// UpdateProductRequest for partial product updates. Nil fields are left
// unchanged. Stock is absent: stock changes go through the inventory
// endpoint.
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Version     int              `json:"version" binding:"required,min=1"`
}

// ApplyTo copies the provided fields onto the product record.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
	p.Version = r.Version
}

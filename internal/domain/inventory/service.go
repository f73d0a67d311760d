// Package inventory provides stock adjustment outside of order admission:
// restocking and manual corrections.
package inventory

import (
	"context"

	"storefront/internal/core/id"
	"storefront/internal/core/tx"
	"storefront/internal/domain/audit"
	"storefront/internal/domain/catalog/product"
	"storefront/pkg/logger"
)

// Service applies signed stock deltas to products.
type Service struct {
	products  product.Repository
	txManager tx.Manager
	auditor   audit.Recorder
}

// NewService creates a new inventory adjustment service.
func NewService(products product.Repository, txManager tx.Manager, auditor audit.Recorder) *Service {
	return &Service{
		products:  products,
		txManager: txManager,
		auditor:   auditor,
	}
}

// AdjustStock adds delta (positive or negative) to the product's stock and
// returns the updated record. An adjustment that would make stock negative
// fails with InvalidAdjustment and leaves stock unchanged. The read and the
// write are one atomic unit per product; adjustments on different products
// do not contend.
func (s *Service) AdjustStock(ctx context.Context, productID id.ID, delta int64) (*product.Product, error) {
	var updated *product.Product
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.ApplyStockDelta(ctx, productID, delta)
		if err != nil {
			return err
		}
		updated = p
		return s.auditor.Record(ctx, "product", productID, audit.ActionAdjust, map[string]any{
			"delta": delta,
			"stock": p.Stock,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjusted",
		"product_id", productID,
		"delta", delta,
		"stock", updated.Stock,
	)
	return updated, nil
}

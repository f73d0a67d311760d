package product

import (
	"context"
	"fmt"

	"storefront/internal/core/id"
	"storefront/internal/core/tx"
	"storefront/internal/domain/audit"
	"storefront/pkg/logger"
)

// Service provides catalog CRUD for products. Stock mutations are not done
// here: they go through the inventory and orders services.
type Service struct {
	repo      Repository
	txManager tx.Manager
	auditor   audit.Recorder
}

// NewService creates a new product catalog service.
func NewService(repo Repository, txManager tx.Manager, auditor audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		auditor:   auditor,
	}
}

// Create validates and persists a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		return s.auditor.Record(ctx, "product", p.ID, audit.ActionCreate, map[string]any{
			"name":     p.Name,
			"category": p.Category,
			"price":    p.Price.String(),
			"stock":    p.Stock,
		})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "product created", "id", p.ID, "name", p.Name)
	return nil
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// List retrieves products matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	return s.repo.List(ctx, filter)
}

// Update validates and persists field changes to an existing product.
// Stock is carried through unchanged by callers; see inventory.Service.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		return s.auditor.Record(ctx, "product", p.ID, audit.ActionUpdate, map[string]any{
			"name":     p.Name,
			"category": p.Category,
			"price":    p.Price.String(),
		})
	})
}

// Delete removes a product. Orders that reference it keep their item
// snapshots; there is no cascading deletion.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, productID); err != nil {
			return err
		}
		return s.auditor.Record(ctx, "product", productID, audit.ActionDelete, nil)
	})
}

package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"storefront/internal/core/apperror"
	"storefront/internal/core/id"
	"storefront/internal/domain/catalog/product"
)

const productsTable = "products"

var productColumns = []string{
	"id", "name", "price", "description", "category", "stock",
	"version", "created_at", "updated_at",
}

// ProductRepo implements product.Repository on PostgreSQL.
//
// Stock atomicity relies on row-level locks: GetForUpdate takes FOR UPDATE,
// and ApplyStockDelta is a single conditional UPDATE, so the check and the
// mutation can never interleave on the same row.
type ProductRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *TxManager) *ProductRepo {
	return &ProductRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new product.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder.Insert(productsTable).
		Columns(productColumns...).
		Values(
			p.ID, p.Name, p.Price, p.Description, p.Category, p.Stock,
			p.Version, p.CreatedAt, p.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by ID.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &p, nil
}

// GetForUpdate retrieves a product with a row lock held until the enclosing
// transaction ends.
func (r *ProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	return &p, nil
}

// buildListQuery constructs the filtered catalog listing query.
func (r *ProductRepo) buildListQuery(filter product.ListFilter) squirrel.SelectBuilder {
	q := r.builder.Select(productColumns...).
		From(productsTable)

	if filter.Category != nil {
		q = q.Where(squirrel.Eq{"category": *filter.Category})
	}
	if filter.MinPrice != nil {
		q = q.Where(squirrel.GtOrEq{"price": *filter.MinPrice})
	}
	if filter.MaxPrice != nil {
		q = q.Where(squirrel.LtOrEq{"price": *filter.MaxPrice})
	}

	return q.OrderBy("id")
}

// List retrieves products matching the filter.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	sql, args, err := r.buildListQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []*product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return products, nil
}

// Update modifies an existing product with optimistic locking.
// Stock is intentionally not part of the update set: stock changes go
// through ApplyStockDelta only.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	q := r.builder.Update(productsTable).
		Set("name", p.Name).
		Set("price", p.Price).
		Set("description", p.Description).
		Set("category", p.Category).
		Set("updated_at", p.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": p.ID}).
		Where(squirrel.Eq{"version": p.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the row is gone or the version moved under us.
		if _, getErr := r.GetByID(ctx, p.ID); apperror.IsNotFound(getErr) {
			return getErr
		}
		return apperror.NewConcurrentModification("product", p.ID.String())
	}

	p.Version++
	return nil
}

// Delete removes a product. Existing orders keep their item snapshots.
func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	q := r.builder.Delete(productsTable).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}

	return nil
}

// ApplyStockDelta atomically adds delta to stock. The WHERE clause rejects
// any result below zero in the same statement, so no separate read is
// needed and no race window exists.
func (r *ProductRepo) ApplyStockDelta(ctx context.Context, productID id.ID, delta int64) (*product.Product, error) {
	sql := `
		UPDATE products
		SET stock = stock + $2,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING id, name, price, description, category, stock,
		          version, created_at, updated_at
	`

	var p product.Product
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &p, sql, productID, delta)
	if err == nil {
		return &p, nil
	}
	if !pgxscan.NotFound(err) {
		return nil, fmt.Errorf("apply stock delta: %w", err)
	}

	// No row matched: distinguish a missing product from a rejected delta.
	current, getErr := r.GetByID(ctx, productID)
	if getErr != nil {
		return nil, getErr
	}
	return nil, apperror.NewInvalidAdjustment(productID.String(), delta, current.Stock)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"storefront/internal/core/apperror"
	"storefront/internal/core/id"
	"storefront/internal/domain/orders"
)

const (
	ordersTable     = "orders"
	orderItemsTable = "order_items"
)

var orderColumns = []string{
	"id", "customer_id", "status", "version", "created_at", "updated_at",
}

// OrderRepo implements orders.Repository on PostgreSQL. Items live in a
// separate order_items table, written in the same transaction as the order
// row.
type OrderRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

var _ orders.Repository = (*OrderRepo)(nil)

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txManager *TxManager) *OrderRepo {
	return &OrderRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create persists the order and its item snapshots.
func (r *OrderRepo) Create(ctx context.Context, o *orders.Order) error {
	q := r.builder.Insert(ordersTable).
		Columns(orderColumns...).
		Values(o.ID, o.CustomerID, o.Status, o.Version, o.CreatedAt, o.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if len(o.Items) == 0 {
		return nil
	}

	itemsQ := r.builder.Insert(orderItemsTable).
		Columns("order_id", "line_no", "product_id", "name", "price", "quantity")
	for i, item := range o.Items {
		itemsQ = itemsQ.Values(o.ID, i, item.ProductID, item.Name, item.Price, item.Quantity)
	}

	sql, args, err = itemsQ.ToSql()
	if err != nil {
		return fmt.Errorf("build items insert: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}

	return nil
}

// GetByID retrieves an order with its items.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"id": orderID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var o orders.Order
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID.String())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.loadItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// loadItems fetches item snapshots in their original line order.
func (r *OrderRepo) loadItems(ctx context.Context, orderID id.ID) ([]orders.OrderItem, error) {
	q := r.builder.Select("product_id", "name", "price", "quantity").
		From(orderItemsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	var items []orders.OrderItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}

	return items, nil
}

// ListByCustomer retrieves all orders for a customer, newest first.
func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID string) ([]*orders.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var result []*orders.Order
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &result, sql, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	for _, o := range result {
		items, err := r.loadItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
	}

	return result, nil
}

// UpdateStatus sets the status label of an existing order.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID id.ID, status orders.Status) (*orders.Order, error) {
	sql := `
		UPDATE orders
		SET status = $2,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, customer_id, status, version, created_at, updated_at
	`

	var o orders.Order
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &o, sql, orderID, status); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID.String())
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	items, err := r.loadItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// Delete removes the order and its items.
func (r *OrderRepo) Delete(ctx context.Context, orderID id.ID) error {
	querier := r.txManager.GetQuerier(ctx)

	itemsSQL, itemsArgs, err := r.builder.Delete(orderItemsTable).
		Where(squirrel.Eq{"order_id": orderID}).ToSql()
	if err != nil {
		return fmt.Errorf("build items delete: %w", err)
	}
	if _, err := querier.Exec(ctx, itemsSQL, itemsArgs...); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}

	sql, args, err := r.builder.Delete(ordersTable).
		Where(squirrel.Eq{"id": orderID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("order", orderID.String())
	}

	return nil
}

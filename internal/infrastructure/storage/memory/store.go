// Package memory provides an in-memory storage backend. It is used for
// tests and for running the server without PostgreSQL.
package memory

import (
	"context"
	"sync"

	"storefront/internal/core/id"
	"storefront/internal/core/tx"
	"storefront/internal/domain/catalog/product"
	"storefront/internal/domain/orders"
)

// Store holds all in-memory state behind a single mutex. The transaction
// manager takes the mutex for the duration of a transaction, so a
// multi-step operation such as order admission observes and mutates a
// consistent snapshot.
//
// There is no rollback machinery: callers validate before they mutate, so
// a failed operation has nothing to undo. ApplyStockDelta keeps that
// property on its own (check, then write).
type Store struct {
	mu       sync.Mutex
	products map[id.ID]*product.Product
	orders   map[id.ID]*orders.Order
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		products: make(map[id.ID]*product.Product),
		orders:   make(map[id.ID]*orders.Order),
	}
}

// txKey marks a context as running inside a transaction (mutex held).
type txKey struct{}

// acquire locks the store unless the context already runs inside a
// transaction, and returns the matching release func.
func (s *Store) acquire(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// TxManager implements tx.Manager with a store-wide critical section.
type TxManager struct {
	store *Store
}

var _ tx.Manager = (*TxManager)(nil)

// NewTxManager creates a transaction manager over the store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// RunInTransaction executes fn while holding the store mutex. Nested calls
// reuse the outer critical section.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}

func cloneProduct(p *product.Product) *product.Product {
	c := *p
	if p.Description != nil {
		desc := *p.Description
		c.Description = &desc
	}
	return &c
}

func cloneOrder(o *orders.Order) *orders.Order {
	c := *o
	c.Items = make([]orders.OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	return &c
}

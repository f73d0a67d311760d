// Package audit defines the change-history contract consumed by domain services.
// The PostgreSQL implementation lives in infrastructure/storage/postgres.
package audit

import (
	"context"

	"storefront/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionAdjust Action = "adjust"
	ActionAdmit  Action = "admit"
)

// Recorder records entity changes. Implementations must be safe to call
// inside a transaction so the audit row commits or rolls back with the change.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
}

// Nop is a Recorder that discards all entries. Used with the in-memory
// storage driver and in tests.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, string, id.ID, Action, map[string]any) error {
	return nil
}

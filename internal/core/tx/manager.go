// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces; the implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SerializableManager can run fn at serializable isolation.
type SerializableManager interface {
	Manager
	RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// RunSerializable uses m's serializable mode when available and falls back to
// RunInTransaction otherwise.
func RunSerializable(ctx context.Context, m Manager, fn func(ctx context.Context) error) error {
	if s, ok := m.(SerializableManager); ok {
		return s.RunSerializable(ctx, fn)
	}
	return m.RunInTransaction(ctx, fn)
}

// Nop runs fn directly. Used by tests and in-memory wiring.
type Nop struct{}

// RunInTransaction implements Manager.
func (Nop) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

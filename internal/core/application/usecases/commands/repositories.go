// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"coldchain/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// StopRepoFactory provides access to the stop repository within a transaction.
	StopRepoFactory interface {
		StopRepository() ports.StopRepository
	}

	// SessionStoreFactory provides access to the session store within a transaction.
	SessionStoreFactory interface {
		SessionStore() ports.SessionStore
	}

	// UoW manages transactions across the stop aggregate and session records.
	// Used by commands that settle stops and persist countdown state together.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   stopRepo := uow.StopRepository()
	//   sessionStore := uow.SessionStore()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		StopRepoFactory
		SessionStoreFactory
	}

	// UoWFactory creates new unit of work instances.
	UoWFactory interface {
		Create() UoW
	}
)

package unitofwork

import (
	"context"

	"clinic-erp-be/internal/repository/contract"
)

// UnitOfWork wraps one transaction boundary per CRUD operation: resolve,
// mutate, commit. Failure aborts the whole unit, leaving no partial state.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	Records() contract.RecordRepository
}

// RepositoryFactory hands out a fresh short-lived UnitOfWork per request.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

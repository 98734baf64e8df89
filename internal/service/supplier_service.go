package service

import (
	"context"

	"clinic-erp-be/internal/crud"
	"clinic-erp-be/internal/model"
	"clinic-erp-be/internal/record"
	"clinic-erp-be/internal/repository/specification"
	"clinic-erp-be/internal/repository/unitofwork"
)

// SupplierService carries the supplier-specific pieces of the write path.
// It is registered in the override table at bootstrap; the orchestrator
// discovers its capabilities by interface, so only restore eligibility is
// overridden here and every other verb stays on the generic path.
type SupplierService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewSupplierService(uowFactory unitofwork.RepositoryFactory) *SupplierService {
	return &SupplierService{uowFactory: uowFactory}
}

// CanRestore blocks restoring a supplier whose company name has been reused
// by an active supplier in the meantime; restoring would collide with the
// tenant-scoped unique index.
func (s *SupplierService) CanRestore(ctx context.Context, rec *record.Record, args crud.OverrideArgs) (bool, string) {
	name, ok := rec.Get("company_name")
	if !ok || name == nil {
		return true, ""
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.Records().FindOne(ctx, &model.Supplier{},
		specification.TenantOwnedBy{TenantID: args.TenantID},
		specification.Filter("company_name", name),
		specification.NotDeleted{},
	)
	if err != nil {
		// Eligibility is advisory; a lookup failure must not block restore.
		return true, ""
	}
	if existing != nil {
		return false, "an active supplier with the same company name already exists"
	}
	return true, ""
}

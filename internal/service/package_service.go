package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"clinic-erp-be/internal/crud"
	"clinic-erp-be/internal/model"
	"clinic-erp-be/internal/pkg/apperrors"
	"clinic-erp-be/internal/record"
	"clinic-erp-be/internal/repository/unitofwork"
)

// PackageService overrides create for treatment packages: pricing rules are
// too entity-specific for the generic path.
type PackageService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPackageService(uowFactory unitofwork.RepositoryFactory) *PackageService {
	return &PackageService{uowFactory: uowFactory}
}

// CreateEntity implements crud.Creator.
func (s *PackageService) CreateEntity(ctx context.Context, args crud.OverrideArgs) (uuid.UUID, error) {
	name, _ := args.Payload["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, &apperrors.ValidationError{EntityType: "packages", Reason: "package name is required"}
	}

	sessions := 1
	if raw, ok := args.Payload["sessions"].(float64); ok && raw >= 1 {
		sessions = int(raw)
	}

	rec := record.New(&model.TreatmentPackage{})
	id := uuid.New()
	now := time.Now()
	_ = rec.Set("id", id)
	_ = rec.Set("tenant_id", args.TenantID)
	if args.BranchID != nil {
		_ = rec.Set("branch_id", *args.BranchID)
	}
	_ = rec.Set("name", name)
	if desc, ok := args.Payload["description"].(string); ok && desc != "" {
		_ = rec.Set("description", desc)
	}
	if price, ok := args.Payload["price"].(float64); ok {
		_ = rec.Set("price", price)
	}
	_ = rec.Set("sessions", sessions)
	if inclusions, ok := args.Payload["inclusions"].(map[string]interface{}); ok {
		_ = rec.Set("inclusions", datatypes.JSONMap(inclusions))
	}
	_ = rec.Set("status", "active")
	_ = rec.Set("created_at", now)
	_ = rec.Set("updated_at", now)
	_ = rec.Set("created_by", args.CallerID)
	_ = rec.Set("updated_by", args.CallerID)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return uuid.Nil, err
	}
	if err := uow.Records().Insert(ctx, rec); err != nil {
		_ = uow.Rollback()
		return uuid.Nil, err
	}
	if err := uow.Commit(); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

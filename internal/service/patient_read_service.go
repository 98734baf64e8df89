package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"clinic-erp-be/internal/resolver"
)

// PatientReadService replaces the generic read fallback for patients:
// reception searches by name, code or any phone number stored inside the
// contact_info container.
type PatientReadService struct {
	db *gorm.DB
}

func NewPatientReadService(db *gorm.DB) *PatientReadService {
	return &PatientReadService{db: db}
}

// SearchEntityData implements resolver.EntitySearcher.
func (s *PatientReadService) SearchEntityData(ctx context.Context, req resolver.SearchRequest) (*resolver.SearchResult, error) {
	query := s.db.WithContext(ctx).Table("patients").
		Where("tenant_id = ?", req.TenantID).
		Where("deleted_at IS NULL")

	if term, ok := req.Filters["q"].(string); ok && term != "" {
		like := "%" + term + "%"
		query = query.Where(
			"full_name ILIKE ? OR patient_code ILIKE ? OR contact_info->>'phone' LIKE ? OR contact_info->>'mobile' LIKE ?",
			like, like, like, like,
		)
	}
	if status, ok := req.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	var items []map[string]interface{}
	err := query.Order("full_name ASC").Limit(limit).Offset(req.Offset).Find(&items).Error
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []map[string]interface{}{}
	}
	return &resolver.SearchResult{Items: items, Total: total}, nil
}

// GetItemData implements resolver.ItemGetter.
func (s *PatientReadService) GetItemData(ctx context.Context, tenantID, id uuid.UUID) (map[string]interface{}, error) {
	var item map[string]interface{}
	err := s.db.WithContext(ctx).Table("patients").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

package locality

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"clinic-erp-be/internal/model"
)

// Resolver picks a default branch (locality) for a caller within a tenant.
// The orchestrator consults it only when the target model actually carries a
// branch_id column and neither the payload nor the request context named one.
type Resolver struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{
		db:    db,
		cache: cache.New(10*time.Minute, 30*time.Minute),
	}
}

// DefaultBranch resolves the caller's primary branch assignment, falling
// back to the tenant's default branch. Returns nil when the tenant has no
// branches at all, which is a legal single-site setup.
func (r *Resolver) DefaultBranch(ctx context.Context, callerID, tenantID uuid.UUID) (*uuid.UUID, error) {
	key := fmt.Sprintf("%s:%s", tenantID, callerID)
	if x, found := r.cache.Get(key); found {
		return x.(*uuid.UUID), nil
	}

	var assignment model.UserBranch
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, callerID).
		Order("is_primary DESC").
		First(&assignment).Error
	if err == nil {
		id := assignment.BranchId
		r.cache.Set(key, &id, cache.DefaultExpiration)
		return &id, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var branch model.Branch
	err = r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("is_default DESC, created_at ASC").
		First(&branch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.cache.Set(key, (*uuid.UUID)(nil), cache.DefaultExpiration)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	id := branch.Id
	r.cache.Set(key, &id, cache.DefaultExpiration)
	return &id, nil
}

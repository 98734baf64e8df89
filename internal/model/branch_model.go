package model

import (
	"time"

	"github.com/google/uuid"
)

// Branch is a clinic locality. Records carrying a branch_id column are
// scoped to one of these.
type Branch struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantId  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(255);not null"`
	IsDefault bool      `gorm:"not null;default:false"`
	Status    string    `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Branch) TableName() string {
	return "branches"
}

// UserBranch assigns a user to a branch within a tenant. The locality
// resolver walks this to pick a caller's default branch.
type UserBranch struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantId  uuid.UUID `gorm:"type:uuid;not null;index"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	BranchId  uuid.UUID `gorm:"type:uuid;not null"`
	IsPrimary bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (UserBranch) TableName() string {
	return "user_branches"
}

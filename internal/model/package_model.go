package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TreatmentPackage is a sellable bundle of clinic services.
type TreatmentPackage struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	BranchId    *uuid.UUID `gorm:"type:uuid;index"`
	Name        string     `gorm:"type:varchar(255);not null"`
	Description *string    `gorm:"type:text"`
	Price       float64    `gorm:"type:numeric(12,2);not null"`
	Sessions    int        `gorm:"not null;default:1"`
	Inclusions  datatypes.JSONMap `gorm:"type:jsonb"`
	Status      string            `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
	UpdatedBy   *uuid.UUID `gorm:"type:uuid"`
	DeletedAt   *time.Time `gorm:"index"`
	DeletedBy   *uuid.UUID `gorm:"type:uuid"`
}

func (TreatmentPackage) TableName() string {
	return "packages"
}

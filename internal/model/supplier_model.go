package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Supplier struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantId      uuid.UUID  `gorm:"type:uuid;not null;index"`
	BranchId      *uuid.UUID `gorm:"type:uuid;index"`
	SupplierCode  *string    `gorm:"type:varchar(50);index"`
	CompanyName   string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_suppliers_tenant_company"`
	ContactPerson *string    `gorm:"type:varchar(255)"`
	// Legacy contact fields are multiplexed into this container.
	ContactInfo datatypes.JSONMap `gorm:"type:jsonb"`
	BankInfo    datatypes.JSONMap `gorm:"type:jsonb"`
	TaxNumber   *string           `gorm:"type:varchar(100)"`
	Status      string            `gorm:"type:varchar(20);not null;default:'active'"`
	Notes       *string           `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
	UpdatedBy   *uuid.UUID `gorm:"type:uuid"`
	DeletedAt   *time.Time `gorm:"index"`
	DeletedBy   *uuid.UUID `gorm:"type:uuid"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

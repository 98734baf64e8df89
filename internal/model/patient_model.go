package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Patient struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	BranchId    *uuid.UUID `gorm:"type:uuid;index"`
	PatientCode *string    `gorm:"type:varchar(50);index"`
	FullName    string     `gorm:"type:varchar(255);not null"`
	Gender      *string    `gorm:"type:varchar(10)"`
	DateOfBirth *time.Time
	ContactInfo datatypes.JSONMap `gorm:"type:jsonb"`
	MedicalInfo datatypes.JSONMap `gorm:"type:jsonb"`
	Status      string            `gorm:"type:varchar(20);not null;default:'active'"`
	Notes       *string           `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
	UpdatedBy   *uuid.UUID `gorm:"type:uuid"`
	DeletedAt   *time.Time `gorm:"index"`
	DeletedBy   *uuid.UUID `gorm:"type:uuid"`
}

func (Patient) TableName() string {
	return "patients"
}

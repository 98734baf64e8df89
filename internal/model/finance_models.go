package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SupplierPayment is an append-mostly business event: written only by the
// purchasing flow, never through the generic write path.
type SupplierPayment struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantId      uuid.UUID  `gorm:"type:uuid;not null;index"`
	BranchId      *uuid.UUID `gorm:"type:uuid;index"`
	SupplierId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	PaymentDate   time.Time  `gorm:"not null"`
	Amount        float64    `gorm:"type:numeric(12,2);not null"`
	// Per-method amount split (cash, card, transfer, ...).
	MethodAmounts datatypes.JSONMap `gorm:"type:jsonb"`
	ReferenceNo   *string           `gorm:"type:varchar(100)"`
	Notes         *string           `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CreatedBy     *uuid.UUID `gorm:"type:uuid"`
	UpdatedBy     *uuid.UUID `gorm:"type:uuid"`
}

func (SupplierPayment) TableName() string {
	return "supplier_payments"
}

type Invoice struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	BranchId    *uuid.UUID `gorm:"type:uuid;index"`
	PatientId   uuid.UUID  `gorm:"type:uuid;not null;index"`
	InvoiceNo   string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_tenant_no"`
	InvoiceDate time.Time  `gorm:"not null"`
	Subtotal    float64    `gorm:"type:numeric(12,2);not null"`
	Discount    float64    `gorm:"type:numeric(12,2);not null;default:0"`
	Tax         float64    `gorm:"type:numeric(12,2);not null;default:0"`
	Total       float64    `gorm:"type:numeric(12,2);not null"`
	Status      string     `gorm:"type:varchar(20);not null;default:'draft'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
	UpdatedBy   *uuid.UUID `gorm:"type:uuid"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// ExpenseCategory is reference lookup data: readable everywhere, written
// only by an administrator seed.
type ExpenseCategory struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantId  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Code      *string   `gorm:"type:varchar(50)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ExpenseCategory) TableName() string {
	return "expense_categories"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BillModel struct {
	BillID uuid.UUID `gorm:"column:bill_id;type:uuid;default:gen_random_uuid();primaryKey" json:"bill_id"`

	BillChildID  uuid.UUID `gorm:"column:bill_child_id;type:uuid;not null;index" json:"bill_child_id"`
	BillParentID uuid.UUID `gorm:"column:bill_parent_id;type:uuid;not null;index" json:"bill_parent_id"`

	BillAmount      float64    `gorm:"column:bill_amount;type:numeric(12,2);not null" json:"bill_amount"`
	BillDueDate     time.Time  `gorm:"column:bill_due_date;type:date;not null" json:"bill_due_date"`
	BillStatus      string     `gorm:"column:bill_status;type:varchar(16);not null;default:'unpaid';index" json:"bill_status"`
	BillPaidAt      *time.Time `gorm:"column:bill_paid_at" json:"bill_paid_at,omitempty"`
	BillDescription *string    `gorm:"column:bill_description;type:text" json:"bill_description,omitempty"`

	// Midtrans
	BillOrderID    *string `gorm:"column:bill_order_id;type:varchar(64);uniqueIndex" json:"bill_order_id,omitempty"`
	BillPaymentURL *string `gorm:"column:bill_payment_url;type:text" json:"bill_payment_url,omitempty"`

	BillCreatedAt time.Time      `gorm:"column:bill_created_at;autoCreateTime" json:"bill_created_at"`
	BillUpdatedAt time.Time      `gorm:"column:bill_updated_at;autoUpdateTime" json:"bill_updated_at"`
	BillDeletedAt gorm.DeletedAt `gorm:"column:bill_deleted_at;index" json:"-"`
}

func (BillModel) TableName() string { return "bills" }

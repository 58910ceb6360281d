package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportModel struct {
	ReportID uuid.UUID `gorm:"column:report_id;type:uuid;default:gen_random_uuid();primaryKey" json:"report_id"`

	ReportChildID  uuid.UUID  `gorm:"column:report_child_id;type:uuid;not null;index" json:"report_child_id"`
	ReportDate     time.Time  `gorm:"column:report_date;type:date;not null" json:"report_date"`
	ReportType     string     `gorm:"column:report_type;type:varchar(16);not null" json:"report_type"` // daily|weekly|monthly
	ReportContent  string     `gorm:"column:report_content;type:text;not null" json:"report_content"`
	ReportAuthorID *uuid.UUID `gorm:"column:report_author_id;type:uuid" json:"report_author_id,omitempty"`

	ReportCreatedAt time.Time      `gorm:"column:report_created_at;autoCreateTime" json:"report_created_at"`
	ReportUpdatedAt time.Time      `gorm:"column:report_updated_at;autoUpdateTime" json:"report_updated_at"`
	ReportDeletedAt gorm.DeletedAt `gorm:"column:report_deleted_at;index" json:"-"`
}

func (ReportModel) TableName() string { return "reports" }

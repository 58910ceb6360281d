package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ChildModel struct {
	ChildID uuid.UUID `gorm:"column:child_id;type:uuid;default:gen_random_uuid();primaryKey" json:"child_id"`

	ChildName string `gorm:"column:child_name;type:text;not null;index" json:"child_name"`
	ChildAge  int    `gorm:"column:child_age;type:smallint;not null" json:"child_age"`

	// kosong = belum punya kelas
	ChildClassID   *uuid.UUID     `gorm:"column:child_class_id;type:uuid;index" json:"child_class_id,omitempty"`
	ChildParentIDs pq.StringArray `gorm:"column:child_parent_ids;type:text[];not null;default:'{}'" json:"child_parent_ids"`

	ChildImage             *string `gorm:"column:child_image;type:text" json:"child_image,omitempty"`
	ChildHealth            *string `gorm:"column:child_health;type:text" json:"child_health,omitempty"`
	ChildHealthRecordImage *string `gorm:"column:child_health_record_image;type:text" json:"child_health_record_image,omitempty"`
	ChildGuardianAuthImage *string `gorm:"column:child_guardian_auth_image;type:text" json:"child_guardian_auth_image,omitempty"`

	ChildCreatedAt time.Time      `gorm:"column:child_created_at;autoCreateTime" json:"child_created_at"`
	ChildUpdatedAt time.Time      `gorm:"column:child_updated_at;autoUpdateTime" json:"child_updated_at"`
	ChildDeletedAt gorm.DeletedAt `gorm:"column:child_deleted_at;index" json:"-"`
}

func (ChildModel) TableName() string { return "children" }

// HasParent reports whether parentID is listed on the child.
func (m ChildModel) HasParent(parentID string) bool {
	for _, p := range m.ChildParentIDs {
		if p == parentID {
			return true
		}
	}
	return false
}

// ImageURLs returns every stored image URL of the child.
func (m ChildModel) ImageURLs() []string {
	out := make([]string, 0, 3)
	for _, u := range []*string{m.ChildImage, m.ChildHealthRecordImage, m.ChildGuardianAuthImage} {
		if u != nil && *u != "" {
			out = append(out, *u)
		}
	}
	return out
}

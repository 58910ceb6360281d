package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type ClassModel struct {
	ClassID uuid.UUID `gorm:"column:class_id;type:uuid;default:gen_random_uuid();primaryKey" json:"class_id"`

	ClassName        string  `gorm:"column:class_name;type:text;not null" json:"class_name"`
	ClassDescription *string `gorm:"column:class_description;type:text" json:"class_description,omitempty"`
	// guru utama (legacy, satu nama/ID)
	ClassTeacher *string `gorm:"column:class_teacher;type:text" json:"class_teacher,omitempty"`

	ClassChildrenIDs pq.StringArray `gorm:"column:class_children_ids;type:text[];not null;default:'{}'" json:"class_children_ids"`
	ClassTeacherIDs  pq.StringArray `gorm:"column:class_teacher_ids;type:text[];not null;default:'{}'" json:"class_teacher_ids"`

	ClassCreatedAt time.Time      `gorm:"column:class_created_at;autoCreateTime" json:"class_created_at"`
	ClassUpdatedAt time.Time      `gorm:"column:class_updated_at;autoUpdateTime" json:"class_updated_at"`
	ClassDeletedAt gorm.DeletedAt `gorm:"column:class_deleted_at;index" json:"-"`
}

func (ClassModel) TableName() string { return "classes" }

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel merepresentasikan tabel users di database
type UserModel struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name     string    `gorm:"size:120;not null" json:"name"`
	Email    string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"type:varchar(20);not null;default:'parent';index" json:"role"`
	Phone    *string   `gorm:"size:32" json:"phone,omitempty"`
	IDImage  *string   `gorm:"column:id_image" json:"idImage,omitempty"`
	FCMToken *string   `gorm:"column:fcm_token" json:"fcmToken,omitempty"`
	GoogleID *string   `gorm:"size:255;uniqueIndex" json:"-"`
	IsActive bool      `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName memastikan nama tabel sesuai dengan skema database
func (UserModel) TableName() string {
	return "users"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type NotificationModel struct {
	NotificationID uuid.UUID `gorm:"column:notification_id;type:uuid;default:gen_random_uuid();primaryKey" json:"notification_id"`

	NotificationTitle  string         `gorm:"column:notification_title;type:text;not null" json:"notification_title"`
	NotificationBody   string         `gorm:"column:notification_body;type:text;not null" json:"notification_body"`
	NotificationTokens pq.StringArray `gorm:"column:notification_tokens;type:text[];not null;default:'{}'" json:"notification_tokens"`

	// hasil kirim FCM: {successCount, failureCount, errors:[...]} atau {error}
	NotificationResponse datatypes.JSON `gorm:"column:notification_response;type:jsonb" json:"notification_response"`

	NotificationSenderID *uuid.UUID `gorm:"column:notification_sender_id;type:uuid" json:"notification_sender_id,omitempty"`
	NotificationSentAt   time.Time  `gorm:"column:notification_sent_at;not null;index" json:"notification_sent_at"`
}

func (NotificationModel) TableName() string { return "notifications" }

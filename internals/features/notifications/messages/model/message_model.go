package model

import (
	"time"

	"github.com/google/uuid"
)

type MessageModel struct {
	MessageID uuid.UUID `gorm:"column:message_id;type:uuid;default:gen_random_uuid();primaryKey" json:"message_id"`

	MessageSenderID uuid.UUID `gorm:"column:message_sender_id;type:uuid;not null;index" json:"message_sender_id"`
	// role penerima (teacher|parent|staff|admin)
	MessageRole string `gorm:"column:message_role;type:varchar(20);not null" json:"message_role"`
	// user id penerima atau "all"
	MessageRecipient string `gorm:"column:message_recipient;type:text;not null;index" json:"message_recipient"`
	MessageBody      string `gorm:"column:message_body;type:text;not null" json:"message_body"`

	MessageCreatedAt time.Time `gorm:"column:message_created_at;autoCreateTime;index" json:"message_created_at"`
}

func (MessageModel) TableName() string { return "messages" }

package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"kindergarten_backend/internals/constants"
	msgModel "kindergarten_backend/internals/features/notifications/messages/model"
)

type CreateMessageRequest struct {
	Role      string `json:"role" validate:"required,oneof=admin staff teacher parent"`
	Recipient string `json:"recipient" validate:"required"`
	Message   string `json:"message" validate:"required,max=5000"`
}

func (r *CreateMessageRequest) Normalize() {
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.Recipient = strings.TrimSpace(r.Recipient)
	if strings.EqualFold(r.Recipient, constants.RecipientAll) {
		r.Recipient = constants.RecipientAll
	}
	r.Message = strings.TrimSpace(r.Message)
}

// IsBroadcast: dikirim ke semua user dengan role tsb.
func (r *CreateMessageRequest) IsBroadcast() bool {
	return r.Recipient == constants.RecipientAll
}

func (r *CreateMessageRequest) ToModel(sender uuid.UUID) *msgModel.MessageModel {
	return &msgModel.MessageModel{
		MessageID:        uuid.New(),
		MessageSenderID:  sender,
		MessageRole:      r.Role,
		MessageRecipient: r.Recipient,
		MessageBody:      r.Message,
	}
}

type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	SenderID  uuid.UUID `json:"senderId"`
	Role      string    `json:"role"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromModel(m *msgModel.MessageModel) MessageResponse {
	return MessageResponse{
		ID:        m.MessageID,
		SenderID:  m.MessageSenderID,
		Role:      m.MessageRole,
		Recipient: m.MessageRecipient,
		Message:   m.MessageBody,
		CreatedAt: m.MessageCreatedAt,
	}
}

func FromModels(list []msgModel.MessageModel) []MessageResponse {
	out := make([]MessageResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}

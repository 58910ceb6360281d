package dto

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	notifModel "kindergarten_backend/internals/features/notifications/notifications/model"
	helper "kindergarten_backend/internals/helpers"
)

// TokenList menerima array atau satu string token.
type TokenList []string

func (t *TokenList) UnmarshalJSON(b []byte) error {
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*t = arr
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*t = TokenList{one}
		return nil
	}
	return errors.New("tokens must be an array or a string")
}

type SendNotificationRequest struct {
	Title  string    `json:"title" validate:"required"`
	Body   string    `json:"body" validate:"required"`
	Tokens TokenList `json:"tokens" validate:"required,min=1"`
}

func (r *SendNotificationRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Body = strings.TrimSpace(r.Body)
	clean := make([]string, 0, len(r.Tokens))
	for _, tok := range r.Tokens {
		if tok = strings.TrimSpace(tok); tok != "" {
			clean = append(clean, tok)
		}
	}
	r.Tokens = helper.UniqueStrings(clean)
}

type BroadcastRequest struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
	Role  string `json:"role" validate:"required,oneof=admin staff teacher parent"`
}

func (r *BroadcastRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Body = strings.TrimSpace(r.Body)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
}

type NotificationResponse struct {
	ID       uuid.UUID      `json:"id"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Tokens   []string       `json:"tokens"`
	Response datatypes.JSON `json:"response"`
	SenderID *uuid.UUID     `json:"senderId,omitempty"`
	SentAt   time.Time      `json:"sentAt"`
}

func FromModel(m *notifModel.NotificationModel) NotificationResponse {
	tokens := []string(m.NotificationTokens)
	if tokens == nil {
		tokens = []string{}
	}
	return NotificationResponse{
		ID:       m.NotificationID,
		Title:    m.NotificationTitle,
		Body:     m.NotificationBody,
		Tokens:   tokens,
		Response: m.NotificationResponse,
		SenderID: m.NotificationSenderID,
		SentAt:   m.NotificationSentAt,
	}
}

func FromModels(list []notifModel.NotificationModel) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}

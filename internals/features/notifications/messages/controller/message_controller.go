package controller

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kindergarten_backend/internals/constants"
	msgDTO "kindergarten_backend/internals/features/notifications/messages/dto"
	msgModel "kindergarten_backend/internals/features/notifications/messages/model"
	msgRepo "kindergarten_backend/internals/features/notifications/messages/repository"
	uModel "kindergarten_backend/internals/features/users/user/model"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/helpers/export"
	"kindergarten_backend/internals/helpers/push"
	"kindergarten_backend/internals/logger"
	"kindergarten_backend/internals/metrics"
	"kindergarten_backend/internals/realtime"
)

type Directory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*uModel.UserModel, error)
	FindByIDs(ctx context.Context, ids []string) ([]uModel.UserModel, error)
	FCMTokensByRole(ctx context.Context, role string) ([]string, error)
	FCMTokensByIDs(ctx context.Context, ids []string) ([]string, error)
}

type MessageController struct {
	Repo   msgRepo.MessageRepository
	Users  Directory
	Push   push.Sender
	Events realtime.Publisher
}

func NewMessageController(repo msgRepo.MessageRepository, users Directory, sender push.Sender, events realtime.Publisher) *MessageController {
	if sender == nil {
		sender = push.Noop{}
	}
	if events == nil {
		events = realtime.Nop{}
	}
	return &MessageController{Repo: repo, Users: users, Push: sender, Events: events}
}

func (mc *MessageController) filterFor(c *fiber.Ctx) (msgRepo.MessageFilter, error) {
	var f msgRepo.MessageFilter
	if helper.IsManagerRequest(c) {
		return f, nil
	}
	uid, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return f, err
	}
	f.Viewer = &msgRepo.Viewer{UserID: uid, Role: helper.GetRoleFromToken(c)}
	return f, nil
}

// GET /api/messages
func (mc *MessageController) GetMessages(c *fiber.Ctx) error {
	f, err := mc.filterFor(c)
	if err != nil {
		return err
	}
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)
	f.Offset, f.Limit = p.Offset, p.Limit

	list, total, err := mc.Repo.List(c.UserContext(), f)
	if err != nil {
		logger.FromCtx(c).Error("list messages", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch messages")
	}
	pg := helper.BuildPagination(total, p)
	return helper.JsonList(c, "ok", msgDTO.FromModels(list), &pg)
}

// POST /api/messages
func (mc *MessageController) CreateMessage(c *fiber.Ctx) error {
	sender, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	var req msgDTO.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}

	ctx := c.UserContext()
	if !req.IsBroadcast() {
		rid, err := helper.ParseUUIDParam(req.Recipient, "recipient")
		if err != nil {
			return err
		}
		if _, err := mc.Users.FindByID(ctx, rid); err != nil {
			if helper.IsNotFound(err) {
				return fiber.NewError(fiber.StatusNotFound, "Recipient not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch recipient")
		}
	}

	m := req.ToModel(sender)
	if err := mc.Repo.Create(ctx, m); err != nil {
		logger.FromCtx(c).Error("create message", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to send message")
	}
	mc.Events.Publish(messageEvent(m))
	mc.notify(c, &req)

	return helper.JsonCreated(c, "Message sent", msgDTO.FromModel(m))
}

// messageEvent: broadcast ke role parent terlihat oleh semua parent, pesan langsung hanya oleh pengirim dan penerima.
func messageEvent(m *msgModel.MessageModel) realtime.Event {
	ev := realtime.Event{Topic: constants.TopicMessages, Action: realtime.ActionCreated, ID: m.MessageID.String()}
	if m.MessageRecipient == constants.RecipientAll {
		ev.Public = m.MessageRole == constants.RoleParent
		ev.Audience = []string{m.MessageSenderID.String()}
		return ev
	}
	ev.Audience = []string{m.MessageSenderID.String(), m.MessageRecipient}
	return ev
}

// notify: push ke penerima yang punya fcm token. Gagal push tidak membatalkan pesan.
func (mc *MessageController) notify(c *fiber.Ctx, req *msgDTO.CreateMessageRequest) {
	ctx := c.UserContext()
	log := logger.FromCtx(c)

	var (
		tokens []string
		err    error
	)
	if req.IsBroadcast() {
		tokens, err = mc.Users.FCMTokensByRole(ctx, req.Role)
	} else {
		tokens, err = mc.Users.FCMTokensByIDs(ctx, []string{req.Recipient})
	}
	if err != nil {
		log.Warn("message push: token lookup failed", zap.Error(err))
		return
	}
	tokens = helper.UniqueStrings(tokens)
	if len(tokens) == 0 {
		return
	}

	res, err := mc.Push.Send(ctx, tokens, push.Notification{
		Title: "Nouveau message",
		Body:  preview(req.Message, 120),
		Data:  map[string]string{"type": "message", "role": req.Role},
	})
	if res != nil {
		metrics.RecordPush(res.SuccessCount, res.FailureCount)
	}
	if err != nil && !errors.Is(err, push.ErrNotConfigured) {
		log.Warn("message push failed", zap.Error(err))
	}
}

func preview(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// GET /api/messages/export?format=xlsx|pdf
func (mc *MessageController) ExportMessages(c *fiber.Ctx) error {
	f, err := mc.filterFor(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	list, _, err := mc.Repo.List(ctx, f)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch messages")
	}

	ids := make([]string, 0, len(list)*2)
	for _, m := range list {
		ids = append(ids, m.MessageSenderID.String())
		if m.MessageRecipient != constants.RecipientAll {
			ids = append(ids, m.MessageRecipient)
		}
	}
	names := map[string]string{}
	if users, err := mc.Users.FindByIDs(ctx, helper.UniqueStrings(ids)); err == nil {
		for _, u := range users {
			names[u.ID.String()] = u.Name
		}
	}
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	t := export.Table{
		Title: "Messages",
		Columns: []export.Column{
			{Header: "Date", Width: 2.5}, {Header: "From", Width: 2.5}, {Header: "Role", Width: 1.5},
			{Header: "To", Width: 2.5}, {Header: "Message", Width: 6},
		},
	}
	for _, m := range list {
		t.Rows = append(t.Rows, []string{
			m.MessageCreatedAt.Format(time.RFC3339),
			name(m.MessageSenderID.String()),
			m.MessageRole,
			name(m.MessageRecipient),
			m.MessageBody,
		})
	}
	return export.Send(c, t, "messages")
}

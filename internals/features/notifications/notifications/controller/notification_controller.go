package controller

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"kindergarten_backend/internals/constants"
	notifDTO "kindergarten_backend/internals/features/notifications/notifications/dto"
	notifModel "kindergarten_backend/internals/features/notifications/notifications/model"
	notifRepo "kindergarten_backend/internals/features/notifications/notifications/repository"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/helpers/export"
	"kindergarten_backend/internals/helpers/push"
	"kindergarten_backend/internals/logger"
	"kindergarten_backend/internals/metrics"
	"kindergarten_backend/internals/realtime"
)

type TokenSource interface {
	FCMTokensByRole(ctx context.Context, role string) ([]string, error)
}

type NotificationController struct {
	Repo   notifRepo.NotificationRepository
	Users  TokenSource
	Push   push.Sender
	Events realtime.Publisher
	Now    func() time.Time
}

func NewNotificationController(repo notifRepo.NotificationRepository, users TokenSource, sender push.Sender, events realtime.Publisher) *NotificationController {
	if sender == nil {
		sender = push.Noop{}
	}
	if events == nil {
		events = realtime.Nop{}
	}
	return &NotificationController{Repo: repo, Users: users, Push: sender, Events: events, Now: time.Now}
}

// deliver mengirim lewat FCM lalu mencatat hasilnya, termasuk saat gagal.
func (nc *NotificationController) deliver(c *fiber.Ctx, title, body string, tokens []string) error {
	ctx := c.UserContext()
	log := logger.FromCtx(c).With(zap.String("title", title), zap.Int("tokens", len(tokens)))

	res, sendErr := nc.Push.Send(ctx, tokens, push.Notification{Title: title, Body: body})
	if res != nil {
		metrics.RecordPush(res.SuccessCount, res.FailureCount)
	}

	var doc any = res
	if sendErr != nil {
		failed := fiber.Map{"error": sendErr.Error()}
		if res != nil {
			failed["successCount"], failed["failureCount"], failed["errors"] = res.SuccessCount, res.FailureCount, res.Errors
		}
		doc = failed
		log.Warn("push send failed", zap.Error(sendErr))
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to encode push response")
	}

	m := &notifModel.NotificationModel{
		NotificationID:       uuid.New(),
		NotificationTitle:    title,
		NotificationBody:     body,
		NotificationTokens:   tokens,
		NotificationResponse: datatypes.JSON(raw),
		NotificationSentAt:   nc.Now().UTC(),
	}
	if uid, err := helper.GetUserIDFromToken(c); err == nil {
		m.NotificationSenderID = &uid
	}
	if err := nc.Repo.Create(ctx, m); err != nil {
		log.Error("store notification", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to store notification")
	}
	nc.Events.Publish(realtime.Event{Topic: constants.TopicNotifications, Action: realtime.ActionCreated, ID: m.NotificationID.String(), Public: true})

	switch {
	case errors.Is(sendErr, push.ErrNotConfigured):
		return fiber.NewError(fiber.StatusServiceUnavailable, "Push notifications not configured")
	case sendErr != nil:
		return fiber.NewError(fiber.StatusBadGateway, "Failed to send notification")
	}
	if res != nil {
		log.Info("push sent", zap.Int("success", res.SuccessCount), zap.Int("failure", res.FailureCount))
	}
	return helper.JsonOK(c, "Notification sent", notifDTO.FromModel(m))
}

// POST /api/notifications/send
func (nc *NotificationController) SendNotification(c *fiber.Ctx) error {
	var req notifDTO.SendNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if req.Title == "" || req.Body == "" || len(req.Tokens) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "title, body, and tokens are required")
	}
	return nc.deliver(c, req.Title, req.Body, req.Tokens)
}

// POST /api/notifications/broadcast
func (nc *NotificationController) Broadcast(c *fiber.Ctx) error {
	var req notifDTO.BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}
	tokens, err := nc.Users.FCMTokensByRole(c.UserContext(), req.Role)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch device tokens")
	}
	tokens = helper.UniqueStrings(tokens)
	if len(tokens) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No registered devices for role "+req.Role)
	}
	return nc.deliver(c, req.Title, req.Body, tokens)
}

// GET /api/notifications
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)
	list, total, err := nc.Repo.List(c.UserContext(), p.Offset, p.Limit)
	if err != nil {
		logger.FromCtx(c).Error("list notifications", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch notifications")
	}
	pg := helper.BuildPagination(total, p)
	return helper.JsonList(c, "ok", notifDTO.FromModels(list), &pg)
}

// GET /api/notifications/export?format=xlsx|pdf
func (nc *NotificationController) ExportNotifications(c *fiber.Ctx) error {
	list, _, err := nc.Repo.List(c.UserContext(), 0, 0)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch notifications")
	}
	t := export.Table{
		Title: "Notifications",
		Columns: []export.Column{
			{Header: "Sent At", Width: 2.5}, {Header: "Title", Width: 3}, {Header: "Body", Width: 5},
			{Header: "Tokens", Width: 1}, {Header: "Result", Width: 3},
		},
	}
	for _, m := range list {
		t.Rows = append(t.Rows, []string{
			m.NotificationSentAt.Format(time.RFC3339),
			m.NotificationTitle,
			m.NotificationBody,
			strconv.Itoa(len(m.NotificationTokens)),
			summarize(m.NotificationResponse),
		})
	}
	return export.Send(c, t, "notifications")
}

func summarize(raw datatypes.JSON) string {
	var doc struct {
		SuccessCount int    `json:"successCount"`
		FailureCount int    `json:"failureCount"`
		Error        string `json:"error"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil {
		return ""
	}
	if strings.TrimSpace(doc.Error) != "" {
		return "error: " + doc.Error
	}
	return strconv.Itoa(doc.SuccessCount) + " ok / " + strconv.Itoa(doc.FailureCount) + " failed"
}

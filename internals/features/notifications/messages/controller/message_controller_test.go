package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindergarten_backend/internals/constants"
	msgDTO "kindergarten_backend/internals/features/notifications/messages/dto"
	msgModel "kindergarten_backend/internals/features/notifications/messages/model"
	msgRepo "kindergarten_backend/internals/features/notifications/messages/repository"
	uModel "kindergarten_backend/internals/features/users/user/model"
	userRepo "kindergarten_backend/internals/features/users/user/repository"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/helpers/push"
)

type recordingSender struct {
	sent [][]string
}

func (r *recordingSender) Send(_ context.Context, tokens []string, _ push.Notification) (*push.Result, error) {
	r.sent = append(r.sent, tokens)
	return &push.Result{SuccessCount: len(tokens)}, nil
}

type people struct {
	admin, teacher, parentA, parentB uModel.UserModel
}

func setup(t *testing.T) (*fiber.App, *recordingSender, people) {
	t.Helper()
	tok := func(s string) *string { return &s }
	p := people{
		admin:   uModel.UserModel{ID: uuid.New(), Name: "Admin", Email: "admin@test.io", Role: constants.RoleAdmin, IsActive: true},
		teacher: uModel.UserModel{ID: uuid.New(), Name: "Bu Sari", Email: "sari@test.io", Role: constants.RoleTeacher, IsActive: true, FCMToken: tok("tok-sari")},
		parentA: uModel.UserModel{ID: uuid.New(), Name: "Pak Budi", Email: "budi@test.io", Role: constants.RoleParent, IsActive: true, FCMToken: tok("tok-budi")},
		parentB: uModel.UserModel{ID: uuid.New(), Name: "Bu Ani", Email: "ani@test.io", Role: constants.RoleParent, IsActive: true, FCMToken: tok("tok-ani")},
	}
	users := userRepo.NewMemoryUserRepository(p.admin, p.teacher, p.parentA, p.parentB)
	sender := &recordingSender{}
	ctrl := NewMessageController(msgRepo.NewMemoryMessageRepository(), users, sender, nil)

	byID := map[string]uModel.UserModel{}
	for _, u := range []uModel.UserModel{p.admin, p.teacher, p.parentA, p.parentB} {
		byID[u.ID.String()] = u
	}

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		code, msg := helper.FromFiberError(err)
		return helper.JsonError(c, code, msg)
	}})
	// X-Test-User: id user yang "login"
	app.Use(func(c *fiber.Ctx) error {
		u := byID[c.Get("X-Test-User")]
		c.Locals(helper.LocUserID, u.ID.String())
		c.Locals(helper.LocUserRole, u.Role)
		return c.Next()
	})
	app.Get("/api/messages", ctrl.GetMessages)
	app.Get("/api/messages/export", ctrl.ExportMessages)
	app.Post("/api/messages", ctrl.CreateMessage)
	return app, sender, p
}

func send(t *testing.T, app *fiber.App, as uModel.UserModel, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", as.ID.String())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(raw)
}

func inbox(t *testing.T, app *fiber.App, as uModel.UserModel) []msgDTO.MessageResponse {
	t.Helper()
	req := httptest.NewRequest("GET", "/api/messages", nil)
	req.Header.Set("X-Test-User", as.ID.String())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Data []msgDTO.MessageResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Data
}

func TestMessageVisibility(t *testing.T) {
	app, sender, p := setup(t)

	code, raw := send(t, app, p.teacher, `{"role":"parent","recipient":"`+p.parentA.ID.String()+`","message":"Budi demam hari ini"}`)
	require.Equal(t, fiber.StatusCreated, code, raw)
	assert.Contains(t, raw, `"success":true`)

	code, raw = send(t, app, p.admin, `{"role":"parent","recipient":"ALL","message":"Libur nasional"}`)
	require.Equal(t, fiber.StatusCreated, code, raw)

	code, raw = send(t, app, p.admin, `{"role":"teacher","recipient":"all","message":"Rapat guru"}`)
	require.Equal(t, fiber.StatusCreated, code, raw)

	assert.Len(t, inbox(t, app, p.admin), 3)

	a := inbox(t, app, p.parentA)
	require.Len(t, a, 2)
	assert.Equal(t, "Libur nasional", a[0].Message, "newest first")
	assert.Equal(t, "Budi demam hari ini", a[1].Message)

	b := inbox(t, app, p.parentB)
	require.Len(t, b, 1)
	assert.Equal(t, constants.RecipientAll, b[0].Recipient)

	tch := inbox(t, app, p.teacher)
	assert.Len(t, tch, 2, "own message plus teacher broadcast")

	assert.Equal(t, [][]string{{"tok-budi"}, {"tok-ani", "tok-budi"}, {"tok-sari"}}, sender.sent)
}

func TestCreateMessageErrors(t *testing.T) {
	app, _, p := setup(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing message", `{"role":"parent","recipient":"all"}`, fiber.StatusUnprocessableEntity},
		{"bad role", `{"role":"cook","recipient":"all","message":"x"}`, fiber.StatusUnprocessableEntity},
		{"bad recipient", `{"role":"parent","recipient":"budi","message":"x"}`, fiber.StatusBadRequest},
		{"unknown recipient", `{"role":"parent","recipient":"` + uuid.NewString() + `","message":"x"}`, fiber.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := send(t, app, p.teacher, tt.body)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestExportMessagesUsesNames(t *testing.T) {
	app, _, p := setup(t)
	send(t, app, p.teacher, `{"role":"parent","recipient":"`+p.parentA.ID.String()+`","message":"Halo"}`)

	req := httptest.NewRequest("GET", "/api/messages/export", nil)
	req.Header.Set("X-Test-User", p.parentA.ID.String())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "messages-")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "abcd…", preview("abcdefgh", 5))
}

func TestMessageEventAudience(t *testing.T) {
	sender, recipient := uuid.New(), uuid.New()

	direct := messageEvent(&msgModel.MessageModel{
		MessageID: uuid.New(), MessageSenderID: sender, MessageRole: constants.RoleParent, MessageRecipient: recipient.String(),
	})
	assert.False(t, direct.Public)
	assert.ElementsMatch(t, []string{sender.String(), recipient.String()}, direct.Audience)

	toParents := messageEvent(&msgModel.MessageModel{
		MessageID: uuid.New(), MessageSenderID: sender, MessageRole: constants.RoleParent, MessageRecipient: constants.RecipientAll,
	})
	assert.True(t, toParents.Public)

	toTeachers := messageEvent(&msgModel.MessageModel{
		MessageID: uuid.New(), MessageSenderID: sender, MessageRole: constants.RoleTeacher, MessageRecipient: constants.RecipientAll,
	})
	assert.False(t, toTeachers.Public)
	assert.Equal(t, []string{sender.String()}, toTeachers.Audience)
}

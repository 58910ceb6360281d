package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindergarten_backend/internals/constants"
	authDTO "kindergarten_backend/internals/features/users/auth/dto"
	"kindergarten_backend/internals/features/users/auth/service"
	userDTO "kindergarten_backend/internals/features/users/user/dto"
	uModel "kindergarten_backend/internals/features/users/user/model"
	userRepo "kindergarten_backend/internals/features/users/user/repository"
	helper "kindergarten_backend/internals/helpers"
	helperauth "kindergarten_backend/internals/helpers/auth"
	"kindergarten_backend/internals/helpers/mailer"
	authMiddleware "kindergarten_backend/internals/middlewares/auth"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type captureMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *captureMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type fixture struct {
	app   *fiber.App
	svc   *service.AuthService
	users *userRepo.MemoryUserRepository
	mail  *captureMailer
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{users: userRepo.NewMemoryUserRepository(), mail: &captureMailer{}}
	f.svc = &service.AuthService{
		Users:       f.users,
		Tokens:      service.NewTokenService("test-secret", time.Hour),
		Resets:      service.NewResetTokens("test-secret", 3*24*time.Hour),
		Blacklist:   helperauth.NewMemoryBlacklist(),
		Mailer:      f.mail,
		FrontendURL: "http://front.test",
	}
	ctrl := NewAuthController(f.svc, nil)

	f.app = fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		code, msg := helper.FromFiberError(err)
		return helper.JsonError(c, code, msg)
	}})
	requireAuth := authMiddleware.AuthMiddleware(f.svc)
	optionalAuth := authMiddleware.OptionalAuth(f.svc)

	g := f.app.Group("/api/auth")
	g.Post("/login", ctrl.Login)
	g.Post("/signup", optionalAuth, ctrl.Signup)
	g.Post("/login-google", ctrl.LoginGoogle)
	g.Post("/forgot-password", ctrl.ForgotPassword)
	g.Post("/reset-password", ctrl.ResetPassword)
	g.Get("/me", requireAuth, ctrl.Me)
	g.Post("/logout", requireAuth, ctrl.Logout)
	g.Post("/change-password", requireAuth, ctrl.ChangePassword)
	g.Put("/fcm-token", requireAuth, ctrl.UpdateFCMToken)
	return f
}

func (f *fixture) seed(t *testing.T, email, password, role string, active bool) *uModel.UserModel {
	t.Helper()
	hash, err := service.HashPassword(password)
	require.NoError(t, err)
	u := &uModel.UserModel{Name: "User " + role, Email: email, Password: hash, Role: role, IsActive: active}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) do(t *testing.T, method, path, token, body string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func (f *fixture) login(t *testing.T, email, password string) string {
	t.Helper()
	code, env := f.do(t, "POST", "/api/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	var out authDTO.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestLogin(t *testing.T) {
	f := setup(t)
	f.seed(t, "teacher@test.io", "secret1", constants.RoleTeacher, true)
	f.seed(t, "off@test.io", "secret1", constants.RoleParent, false)

	tests := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{name: "ok, email case-insensitive", body: `{"email":" Teacher@Test.io ","password":"secret1"}`, status: 200, msg: "Login successful"},
		{name: "wrong password", body: `{"email":"teacher@test.io","password":"nope"}`, status: 401, msg: "Invalid email or password"},
		{name: "unknown email", body: `{"email":"ghost@test.io","password":"secret1"}`, status: 401, msg: "Invalid email or password"},
		{name: "disabled", body: `{"email":"off@test.io","password":"secret1"}`, status: 403},
		{name: "missing password", body: `{"email":"teacher@test.io"}`, status: 422},
		{name: "bad json", body: `{`, status: 400, msg: "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := f.do(t, "POST", "/api/auth/login", "", tt.body)
			assert.Equal(t, tt.status, code, env.Message)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, env.Message)
			}
			if tt.status == 200 {
				var out authDTO.AuthResponse
				require.NoError(t, json.Unmarshal(env.Data, &out))
				assert.Equal(t, "teacher@test.io", out.User.Email)
				assert.Equal(t, constants.RoleTeacher, out.User.Role)
				assert.NotContains(t, string(env.Data), "password")
			}
		})
	}
}

func TestSignupRoles(t *testing.T) {
	f := setup(t)
	f.seed(t, "admin@test.io", "secret1", constants.RoleAdmin, true)
	adminToken := f.login(t, "admin@test.io", "secret1")

	signup := func(token, email, extra string) (int, envelope) {
		body := `{"name":"Nadia","email":"` + email + `","password":"secret1","confirmPassword":"secret1"` + extra + `}`
		return f.do(t, "POST", "/api/auth/signup", token, body)
	}

	code, env := signup("", "p@test.io", "")
	require.Equal(t, fiber.StatusCreated, code, env.Message)
	var out authDTO.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, constants.RoleParent, out.User.Role)
	assert.NotEmpty(t, out.Token)

	code, env = signup("", "sneaky@test.io", `,"role":"admin"`)
	require.Equal(t, fiber.StatusCreated, code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, constants.RoleParent, out.User.Role, "anonymous caller cannot create admins")

	code, env = signup(adminToken, "boss@test.io", `,"role":"admin"`)
	require.Equal(t, fiber.StatusCreated, code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, constants.RoleAdmin, out.User.Role)

	code, env = signup("", "t@test.io", `,"fromTeachersPage":true`)
	require.Equal(t, fiber.StatusCreated, code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, constants.RoleTeacher, out.User.Role)

	code, env = signup("", "P@Test.io", "")
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Email already in use", env.Message)

	code, env = f.do(t, "POST", "/api/auth/signup", "", `{"name":"Nadia","email":"x@test.io","password":"secret1","confirmPassword":"other1"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Passwords do not match", env.Message)
}

func TestMeAndLogout(t *testing.T) {
	f := setup(t)
	u := f.seed(t, "parent@test.io", "secret1", constants.RoleParent, true)
	token := f.login(t, "parent@test.io", "secret1")

	code, _ := f.do(t, "GET", "/api/auth/me", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, env := f.do(t, "GET", "/api/auth/me", "not-a-jwt", "")
	assert.Equal(t, fiber.StatusForbidden, code)

	code, env = f.do(t, "GET", "/api/auth/me", token, "")
	require.Equal(t, fiber.StatusOK, code, env.Message)
	var me userDTO.UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, u.ID, me.ID)
	assert.Equal(t, "parent@test.io", me.Email)

	code, env = f.do(t, "POST", "/api/auth/logout", token, "")
	require.Equal(t, fiber.StatusOK, code, env.Message)

	code, env = f.do(t, "GET", "/api/auth/me", token, "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "Token has been revoked", env.Message)
}

func TestDisabledAccountLosesSession(t *testing.T) {
	f := setup(t)
	u := f.seed(t, "parent@test.io", "secret1", constants.RoleParent, true)
	token := f.login(t, "parent@test.io", "secret1")

	require.NoError(t, f.users.Update(context.Background(), u.ID, map[string]any{"is_active": false}))
	code, _ := f.do(t, "GET", "/api/auth/me", token, "")
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestForgotAndResetPassword(t *testing.T) {
	f := setup(t)
	u := f.seed(t, "parent@test.io", "secret1", constants.RoleParent, true)

	code, env := f.do(t, "POST", "/api/auth/forgot-password", "", `{"email":"ghost@test.io"}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, f.mail.sent, "unknown emails get the same answer and no mail")

	code, env = f.do(t, "POST", "/api/auth/forgot-password", "", `{"email":"parent@test.io"}`)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "If the email is registered, a reset link has been sent", env.Message)
	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "parent@test.io", f.mail.sent[0].To)
	assert.Contains(t, f.mail.sent[0].Body, "http://front.test/reset-password?uid=")

	tok, err := f.svc.Resets.Make(u)
	require.NoError(t, err)
	uid := service.EncodeUID(u)
	reset := func(token, password, confirm string) (int, envelope) {
		body := `{"uid":"` + uid + `","token":"` + token + `","password":"` + password + `","confirmPassword":"` + confirm + `"}`
		return f.do(t, "POST", "/api/auth/reset-password", "", body)
	}

	code, _ = reset(tok, "newpass1", "different")
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)

	code, env = reset("bogus-token", "newpass1", "newpass1")
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Invalid reset link", env.Message)

	code, env = reset(tok, "newpass1", "newpass1")
	require.Equal(t, fiber.StatusOK, code, env.Message)
	assert.Equal(t, "Password has been reset", env.Message)

	// token terikat hash password lama
	code, _ = reset(tok, "another1", "another1")
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = f.do(t, "POST", "/api/auth/login", "", `{"email":"parent@test.io","password":"secret1"}`)
	assert.Equal(t, fiber.StatusUnauthorized, code)
	f.login(t, "parent@test.io", "newpass1")
}

func TestChangePasswordAndFCMToken(t *testing.T) {
	f := setup(t)
	u := f.seed(t, "teacher@test.io", "secret1", constants.RoleTeacher, true)
	token := f.login(t, "teacher@test.io", "secret1")

	code, env := f.do(t, "POST", "/api/auth/change-password", token, `{"oldPassword":"wrong","newPassword":"secret2"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Old password is incorrect", env.Message)

	code, env = f.do(t, "POST", "/api/auth/change-password", token, `{"oldPassword":"secret1","newPassword":"secret2"}`)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	f.login(t, "teacher@test.io", "secret2")

	code, env = f.do(t, "PUT", "/api/auth/fcm-token", token, `{"fcmToken":"  device-1  "}`)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	stored, err := f.users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.FCMToken)
	assert.Equal(t, "device-1", *stored.FCMToken)

	code, _ = f.do(t, "PUT", "/api/auth/fcm-token", token, `{}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
}

func TestLoginGoogleNotConfigured(t *testing.T) {
	f := setup(t)
	code, env := f.do(t, "POST", "/api/auth/login-google", "", `{"id_token":"abc"}`)
	assert.Equal(t, fiber.StatusServiceUnavailable, code)
	assert.Equal(t, "Google login not configured", env.Message)

	code, _ = f.do(t, "POST", "/api/auth/login-google", "", `{}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
}

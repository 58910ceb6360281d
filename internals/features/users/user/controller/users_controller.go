package controller

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kindergarten_backend/internals/constants"
	userDTO "kindergarten_backend/internals/features/users/user/dto"
	uModel "kindergarten_backend/internals/features/users/user/model"
	userRepo "kindergarten_backend/internals/features/users/user/repository"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/logger"
	"kindergarten_backend/internals/realtime"
)

// ResetLinkSender mails a password reset link (implemented by the auth service).
type ResetLinkSender interface {
	SendResetLink(ctx context.Context, u *uModel.UserModel) error
}

type UserController struct {
	Repo   userRepo.UserRepository
	Resets ResetLinkSender
	Events realtime.Publisher
}

func NewUserController(repo userRepo.UserRepository, resets ResetLinkSender, events realtime.Publisher) *UserController {
	if events == nil {
		events = realtime.Nop{}
	}
	return &UserController{Repo: repo, Resets: resets, Events: events}
}

func (uc *UserController) publish(action string, id uuid.UUID) {
	uc.Events.Publish(realtime.Event{Topic: constants.TopicUsers, Action: action, ID: id.String(), Audience: []string{id.String()}})
}

func (uc *UserController) load(c *fiber.Ctx) (*uModel.UserModel, error) {
	id, err := helper.ParseUUIDParam(c.Params("id"), "id")
	if err != nil {
		return nil, err
	}
	u, err := uc.Repo.FindByID(c.UserContext(), id)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch user")
	}
	return u, nil
}

// GET /api/users?role=&name=&email=&active=&page=&per_page=
// Admin/staff melihat semua; role lain hanya boleh role=teacher|parent.
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	f := userRepo.UserFilter{
		Role:  strings.ToLower(strings.TrimSpace(c.Query("role"))),
		Name:  strings.TrimSpace(c.Query("name")),
		Email: strings.TrimSpace(c.Query("email")),
	}
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "active must be true or false")
		}
		f.Active = &b
	}
	if !helper.IsManagerRequest(c) && f.Role != constants.RoleTeacher && f.Role != constants.RoleParent {
		return fiber.NewError(fiber.StatusForbidden, "You may only list teachers or parents")
	}

	p := helper.ResolvePaging(c, helper.DefaultPerPage, helper.MaxPerPage)
	f.Offset, f.Limit = p.Offset, p.Limit

	users, total, err := uc.Repo.List(c.UserContext(), f)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch users")
	}
	pg := helper.BuildPagination(total, p)
	return helper.JsonList(c, "ok", userDTO.FromModels(users), &pg)
}

// GET /api/users/:id
func (uc *UserController) GetUser(c *fiber.Ctx) error {
	u, err := uc.load(c)
	if err != nil {
		return err
	}
	if !canView(c, u) {
		return fiber.NewError(fiber.StatusForbidden, "You may not view this user")
	}
	return helper.JsonOK(c, "", userDTO.FromModel(u))
}

// canView: admin/staff semua, diri sendiri selalu; guru boleh guru dan parent, parent hanya guru.
func canView(c *fiber.Ctx, u *uModel.UserModel) bool {
	if helper.IsManagerRequest(c) {
		return true
	}
	if uid, err := helper.GetUserIDFromToken(c); err == nil && uid == u.ID {
		return true
	}
	switch helper.GetRoleFromToken(c) {
	case constants.RoleTeacher:
		return u.Role == constants.RoleTeacher || u.Role == constants.RoleParent
	case constants.RoleParent:
		return u.Role == constants.RoleTeacher
	}
	return false
}

// GET /api/users/me
func (uc *UserController) GetMe(c *fiber.Ctx) error {
	id, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	u, err := uc.Repo.FindByID(c.UserContext(), id)
	if err != nil {
		if helper.IsNotFound(err) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch user")
	}
	return helper.JsonOK(c, "", userDTO.FromModel(u))
}

// POST /api/users (admin)
func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	var req userDTO.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}

	taken, err := uc.Repo.EmailTaken(c.UserContext(), req.Email, uuid.Nil)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to check email")
	}
	if taken {
		return fiber.NewError(fiber.StatusBadRequest, "Email already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to hash password")
	}
	u := req.ToModel(string(hash))
	if err := uc.Repo.Create(c.UserContext(), u); err != nil {
		if helper.IsUniqueViolation(err) {
			return fiber.NewError(fiber.StatusBadRequest, "Email already in use")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create user")
	}
	uc.publish(realtime.ActionCreated, u.ID)
	return helper.JsonCreated(c, "User created", userDTO.FromModel(u))
}

// PUT /api/users/:id (admin, partial)
func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	u, err := uc.load(c)
	if err != nil {
		return err
	}
	var req userDTO.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}

	updates := req.ToUpdates()
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No data to update")
	}
	if req.Email != nil && *req.Email != u.Email {
		taken, err := uc.Repo.EmailTaken(c.UserContext(), *req.Email, u.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to check email")
		}
		if taken {
			return fiber.NewError(fiber.StatusBadRequest, "Email already in use")
		}
	}

	if err := uc.Repo.Update(c.UserContext(), u.ID, updates); err != nil {
		if helper.IsUniqueViolation(err) {
			return fiber.NewError(fiber.StatusBadRequest, "Email already in use")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update user")
	}
	fresh, err := uc.Repo.FindByID(c.UserContext(), u.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch user")
	}
	uc.publish(realtime.ActionUpdated, u.ID)
	return helper.JsonUpdated(c, "User updated", userDTO.FromModel(fresh))
}

// PATCH /api/users/:id/status (admin)
func (uc *UserController) UpdateStatus(c *fiber.Ctx) error {
	u, err := uc.load(c)
	if err != nil {
		return err
	}
	var req userDTO.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}
	if err := uc.Repo.Update(c.UserContext(), u.ID, map[string]any{"is_active": *req.Active}); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update status")
	}
	u.IsActive = *req.Active
	uc.publish(realtime.ActionUpdated, u.ID)
	return helper.JsonUpdated(c, "User status updated", userDTO.FromModel(u))
}

// DELETE /api/users/:id (admin, tidak boleh hapus diri sendiri)
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c.Params("id"), "id")
	if err != nil {
		return err
	}
	if me, err := helper.GetUserIDFromToken(c); err == nil && me == id {
		return fiber.NewError(fiber.StatusBadRequest, "You cannot delete your own account")
	}
	if err := uc.Repo.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete user")
	}
	uc.publish(realtime.ActionDeleted, id)
	return helper.JsonDeleted(c, "User deleted", fiber.Map{"id": id})
}

// POST /api/users/:id/reset-password (admin)
func (uc *UserController) SendResetPassword(c *fiber.Ctx) error {
	u, err := uc.load(c)
	if err != nil {
		return err
	}
	if err := uc.Resets.SendResetLink(c.UserContext(), u); err != nil {
		logger.FromCtx(c).Error("send reset link failed", zap.String("user_id", u.ID.String()), zap.Error(err))
		return fiber.NewError(fiber.StatusBadGateway, "Failed to send reset email")
	}
	return helper.JsonOK(c, "Password reset email sent to "+u.Email, nil)
}

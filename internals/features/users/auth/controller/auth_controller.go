package controller

import (
	"github.com/gofiber/fiber/v2"

	"kindergarten_backend/internals/constants"
	authDTO "kindergarten_backend/internals/features/users/auth/dto"
	"kindergarten_backend/internals/features/users/auth/service"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/helpers/storage"
	"kindergarten_backend/internals/metrics"
)

type AuthController struct {
	Svc  *service.AuthService
	Blob storage.BlobService
}

func NewAuthController(svc *service.AuthService, blob storage.BlobService) *AuthController {
	return &AuthController{Svc: svc, Blob: blob}
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req authDTO.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}
	resp, err := ac.Svc.Login(c.UserContext(), req)
	metrics.RecordLogin("password", err == nil)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "Login successful", resp)
}

// POST /api/auth/signup (JSON atau multipart dengan file idImage)
func (ac *AuthController) Signup(c *fiber.Ctx) error {
	var req authDTO.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}
	if req.Password != req.ConfirmPassword {
		return fiber.NewError(fiber.StatusBadRequest, "Passwords do not match")
	}

	uploaded := storage.FormFile(c, "idImage") != nil
	img, err := storage.ResolveImageField(c.UserContext(), ac.Blob, c, "idImage", "users/id-images", req.IDImage)
	if err != nil {
		return err
	}
	req.IDImage = img

	// admin hanya boleh dibuat oleh admin (OptionalAuth mengisi role)
	callerIsAdmin := helper.GetRoleFromToken(c) == constants.RoleAdmin
	resp, err := ac.Svc.Signup(c.UserContext(), req, callerIsAdmin)
	if err != nil {
		if uploaded && img != nil {
			storage.DeleteQuietly(c.UserContext(), ac.Blob, *img)
		}
		return err
	}
	return helper.JsonCreated(c, "User registered successfully", resp)
}

// POST /api/auth/login-google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var req authDTO.GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}
	resp, err := ac.Svc.LoginGoogle(c.UserContext(), req.IDToken)
	metrics.RecordLogin("google", err == nil)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "Login successful", resp)
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	user, err := ac.Svc.Me(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "", user)
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if err := ac.Svc.Logout(c.UserContext(), helper.GetRawAccessToken(c)); err != nil {
		return err
	}
	c.ClearCookie("access_token")
	return helper.JsonOK(c, "Logged out", nil)
}

// POST /api/auth/forgot-password
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var req authDTO.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}
	ac.Svc.ForgotPassword(c.UserContext(), req.Email)
	return helper.JsonOK(c, "If the email is registered, a reset link has been sent", nil)
}

// POST /api/auth/reset-password
func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var req authDTO.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}
	if err := ac.Svc.ResetPassword(c.UserContext(), req); err != nil {
		return err
	}
	return helper.JsonOK(c, "Password has been reset", nil)
}

// POST /api/auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	var req authDTO.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}
	if err := ac.Svc.ChangePassword(c.UserContext(), userID, req); err != nil {
		return err
	}
	return helper.JsonOK(c, "Password changed", nil)
}

// PUT /api/auth/fcm-token
func (ac *AuthController) UpdateFCMToken(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	var req authDTO.FCMTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}
	if err := ac.Svc.UpdateFCMToken(c.UserContext(), userID, req.FCMToken); err != nil {
		return err
	}
	return helper.JsonUpdated(c, "FCM token updated", nil)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kindergarten_backend/internals/constants"
	authDTO "kindergarten_backend/internals/features/users/auth/dto"
	userDTO "kindergarten_backend/internals/features/users/user/dto"
	uModel "kindergarten_backend/internals/features/users/user/model"
	userRepo "kindergarten_backend/internals/features/users/user/repository"
	helper "kindergarten_backend/internals/helpers"
	helperauth "kindergarten_backend/internals/helpers/auth"
	"kindergarten_backend/internals/helpers/mailer"
	"kindergarten_backend/internals/logger"
)

const msgInvalidCredentials = "Invalid email or password"

/* ==========================
   Google verifier
========================== */

type GoogleIdentity struct {
	Sub   string
	Email string
	Name  string
}

type GoogleVerifier interface {
	Verify(idToken string) (*GoogleIdentity, error)
}

type googleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (g *googleVerifier) Verify(idToken string) (*GoogleIdentity, error) {
	if g.clientID == "" {
		return nil, errors.New("GOOGLE_CLIENT_ID not set")
	}
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{g.clientID}); err != nil {
		return nil, err
	}
	cs, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, err
	}
	return &GoogleIdentity{Sub: cs.Sub, Email: cs.Email, Name: cs.Name}, nil
}

/* ==========================
   Service
========================== */

type AuthService struct {
	Users       userRepo.UserRepository
	Tokens      *TokenService
	Resets      *ResetTokens
	Blacklist   helperauth.BlacklistStore
	Mailer      mailer.Mailer
	Google      GoogleVerifier
	FrontendURL string
}

// ResolveSignupRole: fromTeachersPage → teacher, admin hanya jika caller admin,
// teacher/staff diterima, sisanya parent.
func ResolveSignupRole(requested string, fromTeachersPage, callerIsAdmin bool) string {
	if fromTeachersPage {
		return constants.RoleTeacher
	}
	switch requested {
	case constants.RoleAdmin:
		if callerIsAdmin {
			return constants.RoleAdmin
		}
		return constants.RoleParent
	case constants.RoleTeacher, constants.RoleStaff:
		return requested
	default:
		return constants.RoleParent
	}
}

func (s *AuthService) issue(u *uModel.UserModel) (*authDTO.AuthResponse, error) {
	tok, _, err := s.Tokens.Issue(u)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to issue token")
	}
	return &authDTO.AuthResponse{Token: tok, User: userDTO.ToAuthUser(u)}, nil
}

func (s *AuthService) Login(ctx context.Context, req authDTO.LoginRequest) (*authDTO.AuthResponse, error) {
	req.Normalize()
	u, err := s.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, fiber.NewError(fiber.StatusUnauthorized, msgInvalidCredentials)
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load user")
	}
	if err := CheckPasswordHash(u.Password, req.Password); err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, msgInvalidCredentials)
	}
	if !u.IsActive {
		return nil, fiber.NewError(fiber.StatusForbidden, "Account is disabled. Contact an administrator.")
	}
	return s.issue(u)
}

// Signup expects IDImage to be already uploaded (URL) by the caller.
func (s *AuthService) Signup(ctx context.Context, req authDTO.SignupRequest, callerIsAdmin bool) (*authDTO.AuthResponse, error) {
	req.Normalize()
	if req.Password != req.ConfirmPassword {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Passwords do not match")
	}
	taken, err := s.Users.EmailTaken(ctx, req.Email, uuid.Nil)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to check email")
	}
	if taken {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Email already in use")
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to hash password")
	}
	u := &uModel.UserModel{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     ResolveSignupRole(req.Role, req.FromTeachersPage, callerIsAdmin),
		Phone:    req.Phone,
		IDImage:  req.IDImage,
		IsActive: true,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Email already in use")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to create user")
	}
	return s.issue(u)
}

func (s *AuthService) LoginGoogle(ctx context.Context, idToken string) (*authDTO.AuthResponse, error) {
	if s.Google == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "Google login not configured")
	}
	id, err := s.Google.Verify(strings.TrimSpace(idToken))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid Google ID Token")
	}

	u, err := s.Users.FindByGoogleID(ctx, id.Sub)
	if err != nil && !helper.IsNotFound(err) {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load user")
	}
	if u == nil {
		// akun lama (daftar pakai email) ditautkan ke google id
		email := userDTO.NormalizeEmail(id.Email)
		u, err = s.Users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			sub := id.Sub
			if err := s.Users.Update(ctx, u.ID, map[string]any{"google_id": sub}); err != nil {
				return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to link Google account")
			}
			u.GoogleID = &sub
		case helper.IsNotFound(err):
			u, err = s.createGoogleUser(ctx, id, email)
			if err != nil {
				return nil, err
			}
		default:
			return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load user")
		}
	}
	if !u.IsActive {
		return nil, fiber.NewError(fiber.StatusForbidden, "Account is disabled. Contact an administrator.")
	}
	return s.issue(u)
}

func (s *AuthService) createGoogleUser(ctx context.Context, id *GoogleIdentity, email string) (*uModel.UserModel, error) {
	hash, err := RandomPasswordHash()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to create Google user")
	}
	name := strings.TrimSpace(id.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	sub := id.Sub
	u := &uModel.UserModel{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     constants.RoleParent,
		GoogleID: &sub,
		IsActive: true,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Email already in use")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to create Google user")
	}
	return u, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*userDTO.UserResponse, error) {
	u, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load user")
	}
	resp := userDTO.FromModel(u)
	return &resp, nil
}

// Logout blacklists raw until its exp.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Access token required")
	}
	exp := s.Tokens.ExpiryOf(raw)
	if exp.IsZero() {
		exp = s.Tokens.Now().Add(s.Tokens.ttl)
	}
	if err := s.Blacklist.Add(ctx, raw, exp); err != nil {
		logger.FromContext(ctx).Error("blacklist add failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to logout")
	}
	return nil
}

// ForgotPassword never reveals whether the email exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) {
	u, err := s.Users.FindByEmail(ctx, userDTO.NormalizeEmail(email))
	if err != nil {
		if !helper.IsNotFound(err) {
			logger.FromContext(ctx).Error("forgot password lookup failed", zap.Error(err))
		}
		return
	}
	if !u.IsActive {
		return
	}
	if err := s.SendResetLink(ctx, u); err != nil {
		logger.FromContext(ctx).Error("send reset link failed", zap.String("user_id", u.ID.String()), zap.Error(err))
	}
}

// ResetLink builds FRONTEND_URL/reset-password?uid=..&token=..
func (s *AuthService) ResetLink(u *uModel.UserModel) (string, error) {
	tok, err := s.Resets.Make(u)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/reset-password?uid=%s&token=%s",
		strings.TrimRight(s.FrontendURL, "/"), EncodeUID(u), tok), nil
}

func (s *AuthService) SendResetLink(ctx context.Context, u *uModel.UserModel) error {
	link, err := s.ResetLink(u)
	if err != nil {
		return err
	}
	days := int(s.Resets.timeout / (24 * time.Hour))
	body := fmt.Sprintf("Hello %s,\n\nWe received a request to reset your password.\n\n"+
		"[Reset my password](%s)\n\nThis link expires in %d days. "+
		"If you did not ask for it, you can ignore this email.", u.Name, link, days)
	return s.Mailer.Send(ctx, mailer.Message{
		To:      u.Email,
		ToName:  u.Name,
		Subject: "Reset your password",
		Body:    body,
	})
}

func (s *AuthService) ResetPassword(ctx context.Context, req authDTO.ResetPasswordRequest) error {
	rawID, err := DecodeUID(req.UID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid reset link")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid reset link")
	}
	u, err := s.Users.FindByID(ctx, id)
	if err != nil {
		if helper.IsNotFound(err) {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid reset link")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load user")
	}
	switch err := s.Resets.Verify(u, req.Token); {
	case errors.Is(err, ErrResetTokenExpired):
		return fiber.NewError(fiber.StatusBadRequest, "Reset link has expired")
	case err != nil:
		return fiber.NewError(fiber.StatusBadRequest, "Invalid reset link")
	}
	return s.setPassword(ctx, u.ID, req.Password)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req authDTO.ChangePasswordRequest) error {
	u, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if helper.IsNotFound(err) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load user")
	}
	if err := CheckPasswordHash(u.Password, req.OldPassword); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Old password is incorrect")
	}
	return s.setPassword(ctx, u.ID, req.NewPassword)
}

func (s *AuthService) setPassword(ctx context.Context, id uuid.UUID, plain string) error {
	hash, err := HashPassword(plain)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to hash password")
	}
	if err := s.Users.Update(ctx, id, map[string]any{"password": hash}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update password")
	}
	return nil
}

func (s *AuthService) UpdateFCMToken(ctx context.Context, userID uuid.UUID, token string) error {
	token = strings.TrimSpace(token)
	if err := s.Users.Update(ctx, userID, map[string]any{"fcm_token": token}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update fcm token")
	}
	return nil
}

// Authenticate verifies raw for middleware and websocket use: signature, exp,
// blacklist and an active account.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.Tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	if s.Blacklist != nil {
		revoked, err := s.Blacklist.IsBlacklisted(ctx, raw)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	u, err := s.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}
	// role bisa berubah setelah token dibuat
	claims.Role = u.Role
	return claims, nil
}

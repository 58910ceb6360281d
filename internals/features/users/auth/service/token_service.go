// internals/features/users/auth/service/token_service.go
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	uModel "kindergarten_backend/internals/features/users/user/model"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
	ErrUserInactive = errors.New("user inactive")
)

// toleransi jam server yang sedikit berbeda
const expirySkew = 30 * time.Second

// Claims are the verified fields of an access token.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	Role      string
	ExpiresAt time.Time
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
	Now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, Now: time.Now}
}

// Issue signs an HS256 token carrying id, userId, email, role and exp.
func (s *TokenService) Issue(u *uModel.UserModel) (string, time.Time, error) {
	now := s.Now().UTC()
	exp := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"id":     u.ID.String(),
		"userId": u.ID.String(),
		"email":  u.Email,
		"role":   u.Role,
		"iat":    now.Unix(),
		"exp":    exp.Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// Parse verifies signature and exp (tanpa validate claims bawaan lib).
func (s *TokenService) Parse(raw string) (*Claims, error) {
	raw = strings.Trim(strings.TrimSpace(raw), "\"'")
	if raw == "" {
		return nil, ErrInvalidToken
	}
	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	_, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	exp, err := expiryOf(claims)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if s.Now().After(exp.Add(expirySkew)) {
		return nil, ErrTokenExpired
	}

	idRaw, _ := claims["id"].(string)
	if idRaw == "" {
		idRaw, _ = claims["userId"].(string)
	}
	uid, err := uuid.Parse(strings.TrimSpace(idRaw))
	if err != nil {
		return nil, ErrInvalidToken
	}

	out := &Claims{UserID: uid, ExpiresAt: exp}
	out.Email, _ = claims["email"].(string)
	out.Role, _ = claims["role"].(string)
	return out, nil
}

// ExpiryOf reads exp without verifying anything; zero time if absent.
func (s *TokenService) ExpiryOf(raw string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(raw, claims); err != nil {
		return time.Time{}
	}
	exp, err := expiryOf(claims)
	if err != nil {
		return time.Time{}
	}
	return exp
}

func expiryOf(claims jwt.MapClaims) (time.Time, error) {
	switch t := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(t), 0).UTC(), nil
	case int64:
		return time.Unix(t, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("token has no exp")
	}
}

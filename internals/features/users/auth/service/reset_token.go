package service

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	uModel "kindergarten_backend/internals/features/users/user/model"
)

var (
	resetSalt = []byte("kindergarten_backend.users.auth.reset_token")

	ErrInvalidResetToken = errors.New("invalid token")
	ErrResetTokenExpired = errors.New("token expired")
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// ResetTokens generates password reset tokens "<b32 day-count>-<hmac>".
// The HMAC covers the user id and the current password hash, so any
// password change invalidates outstanding tokens.
type ResetTokens struct {
	secret  []byte
	timeout time.Duration
	Now     func() time.Time
}

func NewResetTokens(secret string, timeout time.Duration) *ResetTokens {
	if timeout <= 0 {
		timeout = 3 * 24 * time.Hour
	}
	return &ResetTokens{secret: []byte(secret), timeout: timeout, Now: time.Now}
}

// EncodeUID base64 encodes the user id for the reset link.
func EncodeUID(u *uModel.UserModel) string {
	return base64.RawURLEncoding.EncodeToString([]byte(u.ID.String()))
}

func DecodeUID(uid string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(uid))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *ResetTokens) Make(u *uModel.UserModel) (string, error) {
	return r.makeWithTimestamp(u, numDaysSince2001(r.Now()))
}

func (r *ResetTokens) Verify(u *uModel.UserModel, token string) error {
	if token == "" {
		return ErrInvalidResetToken
	}
	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return ErrInvalidResetToken
	}
	data, err := b32.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidResetToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return ErrInvalidResetToken
	}

	expected, err := r.makeWithTimestamp(u, ts)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 0 {
		return ErrInvalidResetToken
	}
	if numDaysSince2001(r.Now())-ts > int(r.timeout/(24*time.Hour)) {
		return ErrResetTokenExpired
	}
	return nil
}

func (r *ResetTokens) makeWithTimestamp(u *uModel.UserModel, ts int) (string, error) {
	sig, err := r.sign(hashValue(u, ts))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", b32.EncodeToString([]byte(strconv.Itoa(ts))), sig), nil
}

func (r *ResetTokens) sign(val []byte) (string, error) {
	key := sha256.Sum256(append(append([]byte{}, resetSalt...), r.secret...))
	h := hmac.New(sha256.New, key[:])
	if _, err := h.Write(val); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}

func hashValue(u *uModel.UserModel, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(u.ID.String())
	val.WriteString(u.Password)
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}

func numDaysSince2001(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}

package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kindergarten_backend/internals/configs"
	"kindergarten_backend/internals/constants"
	"kindergarten_backend/internals/logger"
)

// IsMultipart menilai request multipart/form-data
func IsMultipart(c *fiber.Ctx) bool {
	ct := strings.ToLower(strings.TrimSpace(c.Get(fiber.HeaderContentType)))
	return strings.HasPrefix(ct, "multipart/form-data")
}

// FormFile mengembalikan (nil, nil) kalau field tidak ada.
func FormFile(c *fiber.Ctx, field string) *multipart.FileHeader {
	if !IsMultipart(c) {
		return nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}

// CheckImageUpload: hanya jpeg/jpg/png dan maksimal MAX_UPLOAD_MB.
func CheckImageUpload(fh *multipart.FileHeader) error {
	if fh == nil {
		return nil
	}
	if !constants.IsUploadImageExt(fh.Filename) {
		return fiber.NewError(fiber.StatusBadRequest, "Only .jpeg, .jpg and .png files are allowed")
	}
	limit := configs.MaxUploadSize
	if limit <= 0 {
		limit = 5 << 20
	}
	if fh.Size > limit {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("File too large (max %d MB)", limit>>20))
	}
	return nil
}

// ResolveImageField: file upload menang; kalau tidak ada, pakai string URL dari form/body.
// Return nil kalau dua-duanya kosong.
func ResolveImageField(ctx context.Context, blob BlobService, c *fiber.Ctx, field, dir string, fallback *string) (*string, error) {
	if fh := FormFile(c, field); fh != nil {
		if err := CheckImageUpload(fh); err != nil {
			return nil, err
		}
		if blob == nil {
			return nil, fiber.NewError(fiber.StatusServiceUnavailable, "File storage not configured")
		}
		url, err := blob.UploadImage(ctx, dir, fh)
		if err != nil {
			logger.GetLogger().Error("upload failed", zap.String("field", field), zap.Error(err))
			return nil, fiber.NewError(fiber.StatusBadGateway, "Failed to upload "+field)
		}
		return &url, nil
	}
	if fallback != nil && strings.TrimSpace(*fallback) != "" {
		v := strings.TrimSpace(*fallback)
		return &v, nil
	}
	return nil, nil
}

// DeleteQuietly removes managed URLs and logs failures.
func DeleteQuietly(ctx context.Context, blob BlobService, urls ...string) {
	if blob == nil {
		return
	}
	for _, u := range urls {
		if u == "" || !blob.Owns(u) {
			continue
		}
		if err := blob.DeleteByPublicURL(ctx, u); err != nil {
			logger.GetLogger().Warn("delete blob failed", zap.String("url", u), zap.Error(err))
		}
	}
}

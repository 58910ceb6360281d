package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/logger"
)

/*
BlobService adalah facade upload/hapus yang seragam untuk controller.
Gambar di-encode ulang ke WebP; file lain di-upload apa adanya.
*/
type BlobService interface {
	UploadImage(ctx context.Context, dir string, fh *multipart.FileHeader) (publicURL string, err error)
	Put(ctx context.Context, key string, r io.Reader, contentType string) (publicURL string, err error)
	DeleteByPublicURL(ctx context.Context, publicURL string) error
	Owns(publicURL string) bool
}

// FromEnv: OSS kalau ALI_OSS_* lengkap, selain itu disk lokal (UPLOAD_DIR).
func FromEnv() BlobService {
	if svc, err := NewOSSServiceFromEnv("uploads"); err == nil {
		logger.GetLogger().Info("storage: aliyun oss", zap.String("bucket", svc.BucketName))
		return svc
	} else if !errors.Is(err, ErrOSSNotConfigured) {
		logger.GetLogger().Warn("storage: oss init failed, using local disk", zap.Error(err))
	}
	l := NewLocalStorage("", "")
	logger.GetLogger().Info("storage: local disk", zap.String("dir", l.Root))
	return l
}

// uploadImage is shared by every backend: read, convert, Put.
func uploadImage(ctx context.Context, b BlobService, dir string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", fmt.Errorf("nil file header")
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	all, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	data, err := ConvertToWebP(all, fh.Filename, DefaultWebPOptions())
	if err != nil {
		return "", err
	}
	base := strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
	return b.Put(ctx, BuildObjectKey(dir, base+".webp"), bytes.NewReader(data), "image/webp")
}

// BuildObjectKey → "<dir>/<slug>_<yyyymmdd_hhmmss>_<rand6><ext>"
func BuildObjectKey(dir, filename string) string {
	rawExt := filepath.Ext(filename)
	ext := strings.ToLower(rawExt)
	base := helper.Slugify(strings.TrimSuffix(filename, rawExt), 60)
	key := fmt.Sprintf("%s_%s_%s%s", base, time.Now().Format("20060102_150405"), randHex(3), ext)
	if dir = strings.Trim(dir, "/"); dir != "" {
		key = dir + "/" + key
	}
	return key
}

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

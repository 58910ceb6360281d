package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.uber.org/zap"

	"kindergarten_backend/internals/configs"
	"kindergarten_backend/internals/logger"
)

var ErrOSSNotConfigured = errors.New("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")

const cacheForever = "public, max-age=31536000, immutable"

type OSSService struct {
	Client     *oss.Client
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	PublicBase string // ALI_OSS_PUBLIC_BASE (CDN), opsional
	Prefix     string
}

func NewOSSServiceFromEnv(prefix string) (*OSSService, error) {
	endpoint := configs.GetEnv("ALI_OSS_ENDPOINT")
	ak := configs.GetEnv("ALI_OSS_ACCESS_KEY")
	sk := configs.GetEnv("ALI_OSS_SECRET_KEY")
	sts := configs.GetEnv("ALI_OSS_SECURITY_TOKEN")
	bucketName := configs.GetEnv("ALI_OSS_BUCKET")
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, ErrOSSNotConfigured
	}

	var opts []oss.ClientOption
	if sts != "" {
		opts = append(opts, oss.SecurityToken(sts))
	}
	client, err := oss.New(endpoint, ak, sk, opts...)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	// Verifikasi ringan lokasi bucket
	if loc, err := client.GetBucketLocation(bucketName); err != nil {
		var se oss.ServiceError
		if errors.As(err, &se) && se.StatusCode == 403 {
			logger.GetLogger().Warn("oss: skip location check (AccessDenied)", zap.String("bucket", bucketName))
		} else {
			return nil, fmt.Errorf("verify bucket: %w", err)
		}
	} else {
		logger.GetLogger().Info("oss: bucket location", zap.String("bucket", bucketName), zap.String("location", loc))
	}

	return &OSSService{
		Client:     client,
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		PublicBase: strings.TrimRight(configs.GetEnv("ALI_OSS_PUBLIC_BASE"), "/"),
		Prefix:     strings.Trim(prefix, "/"),
	}, nil
}

func (s *OSSService) UploadImage(ctx context.Context, dir string, fh *multipart.FileHeader) (string, error) {
	return uploadImage(ctx, s, dir, fh)
}

func (s *OSSService) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty key")
	}
	if s.Prefix != "" {
		key = s.Prefix + "/" + strings.TrimLeft(key, "/")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	err := s.Bucket.PutObject(key, r,
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl(cacheForever),
	)
	if err != nil {
		return "", err
	}
	return s.PublicURL(key), nil
}

func (s *OSSService) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.PublicBase != "" {
		return s.PublicBase + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

func (s *OSSService) keyFromPublicURL(publicURL string) (string, error) {
	if s.PublicBase != "" && strings.HasPrefix(publicURL, s.PublicBase+"/") {
		return strings.TrimPrefix(publicURL, s.PublicBase+"/"), nil
	}
	u := publicURL
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	if i := strings.Index(u, "/"); i >= 0 && i+1 < len(u) {
		return u[i+1:], nil
	}
	return "", fmt.Errorf("cannot extract key from url: %s", publicURL)
}

func (s *OSSService) Owns(publicURL string) bool {
	if s.PublicBase != "" && strings.HasPrefix(publicURL, s.PublicBase+"/") {
		return true
	}
	return strings.Contains(publicURL, "://"+s.BucketName+".")
}

func (s *OSSService) DeleteByPublicURL(ctx context.Context, publicURL string) error {
	key, err := s.keyFromPublicURL(publicURL)
	if err != nil {
		return err
	}
	err = s.Bucket.DeleteObject(key, oss.WithContext(ctx))
	var se oss.ServiceError
	if errors.As(err, &se) && se.StatusCode == 404 {
		return nil
	}
	return err
}

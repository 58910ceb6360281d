package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"kindergarten_backend/internals/configs"
)

// URLPrefix is where main mounts the static handler for LocalStorage.
const URLPrefix = "/uploads"

// LocalStorage menyimpan file di disk dan melayaninya lewat /uploads.
type LocalStorage struct {
	Root    string
	BaseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	if root == "" {
		root = configs.GetEnv("UPLOAD_DIR", "./uploads")
	}
	if baseURL == "" {
		baseURL = configs.PublicBaseURL + URLPrefix
	}
	return &LocalStorage{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (l *LocalStorage) UploadImage(ctx context.Context, dir string, fh *multipart.FileHeader) (string, error) {
	return uploadImage(ctx, l, dir, fh)
}

func (l *LocalStorage) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	path, err := l.pathFor(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return l.BaseURL + "/" + filepath.ToSlash(key), nil
}

func (l *LocalStorage) Owns(publicURL string) bool {
	return strings.HasPrefix(publicURL, l.BaseURL+"/")
}

func (l *LocalStorage) DeleteByPublicURL(_ context.Context, publicURL string) error {
	if !l.Owns(publicURL) {
		return fmt.Errorf("url not managed by local storage: %s", publicURL)
	}
	path, err := l.pathFor(strings.TrimPrefix(publicURL, l.BaseURL+"/"))
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// pathFor keeps keys inside Root.
func (l *LocalStorage) pathFor(key string) (string, error) {
	clean := filepath.Clean("/" + strings.TrimSpace(key))
	if clean == "/" {
		return "", fmt.Errorf("empty key")
	}
	return filepath.Join(l.Root, clean), nil
}

package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/config"
	"github.com/google/uuid"
)

// Storage keeps property images.
type Storage interface {
	// Upload stores the image and returns its storage key
	Upload(ctx context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error)

	// Delete removes an image by storage key
	Delete(ctx context.Context, key string) error

	// URL is the public address of a stored key
	URL(key string) string

	// KeyFromURL reverses URL; ok is false for addresses this backend did
	// not issue.
	KeyFromURL(url string) (key string, ok bool)
}

const (
	TypeLocal = "local"
	TypeS3    = "s3"
)

// NewStorage creates the backend selected by STORAGE_TYPE.
func NewStorage(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case TypeLocal, "":
		return NewLocalStorage(cfg.LocalPath, cfg.PublicURL)
	case TypeS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageExtension maps an accepted image content type to its file extension.
func ImageExtension(contentType string) (string, bool) {
	ext, ok := imageTypes[strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))]
	return ext, ok
}

func getContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// generateStoragePath shards by the first two characters of the id.
func generateStoragePath(fileID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	id := fileID.String()
	return fmt.Sprintf("properties/%s/%s%s", id[:2], id, ext)
}

func trimKey(publicURL, url string) (string, bool) {
	prefix := publicURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

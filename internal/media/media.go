package media

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"learnhub/internal/model"
)

// Store persists encoded media objects under a public id and reports the URL
// they are served from.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Uploader turns client supplied image sources into stored media objects.
type Uploader struct {
	store Store
}

func NewUploader(store Store) *Uploader {
	return &Uploader{store: store}
}

// Upload accepts a data URI or bare base64 payload. When width is positive
// the image is re-encoded at that width, keeping its aspect ratio. Remote
// http(s) URLs are kept as-is without touching the store.
func (u *Uploader) Upload(ctx context.Context, folder string, source string, width int) (model.Image, error) {
	source = strings.TrimSpace(source)
	if isRemoteURL(source) {
		return model.Image{URL: source}, nil
	}

	if u.store == nil {
		return model.Image{}, model.ErrMediaStoreUnavailable
	}

	data, contentType, err := decodeSource(source)
	if err != nil {
		return model.Image{}, err
	}

	if width > 0 {
		data, contentType, err = resize(data, width)
		if err != nil {
			return model.Image{}, err
		}
	}

	key := fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.NewString(), extensionFor(contentType))
	url, err := u.store.Put(ctx, key, data, contentType)
	if err != nil {
		return model.Image{}, fmt.Errorf("store %s: %w", key, err)
	}

	slog.Debug("media stored", "key", key, "content_type", contentType, "bytes", len(data))
	return model.Image{PublicID: key, URL: url}, nil
}

// Destroy removes a stored object. Images without a public id were never
// stored by us and are ignored.
func (u *Uploader) Destroy(ctx context.Context, publicID string) error {
	if publicID == "" || u.store == nil {
		return nil
	}

	if err := u.store.Delete(ctx, publicID); err != nil {
		return fmt.Errorf("delete %s: %w", publicID, err)
	}
	return nil
}

func isRemoteURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		return ".jpg"
	}
}

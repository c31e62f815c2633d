package image

import (
	"context"
	"strings"

	"github.com/tagexplorer/backend/pkg/loader"
)

// DefaultMime is used when an image arrives with a non-image mime type.
const DefaultMime = "image/jpeg"

// ImageGraphLoader serves images for vision requests. The payload always
// carries an image/* mime type.
type ImageGraphLoader struct {
	loader loader.GraphFileLoader
}

// NewImageGraphLoader wraps l, which supplies the raw bytes.
func NewImageGraphLoader(l loader.GraphFileLoader) *ImageGraphLoader {
	return &ImageGraphLoader{loader: l}
}

// GetFileText always fails: images are described by the vision model.
func (l *ImageGraphLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	return nil, loader.ErrNoText
}

// GetBase64 returns the image as base64, falling back to DefaultMime.
func (l *ImageGraphLoader) GetBase64(ctx context.Context, file loader.GraphFile) (loader.GraphBase64, error) {
	content, err := l.loader.GetFileText(ctx, file)
	if err != nil {
		return loader.GraphBase64{}, err
	}
	return loader.EncodeBase64(content, ImageMime(file.MimeType)), nil
}

// ImageMime returns mimeType when it names an image type and DefaultMime otherwise.
func ImageMime(mimeType string) string {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	if strings.HasPrefix(m, "image/") {
		return m
	}
	return DefaultMime
}

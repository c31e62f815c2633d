package doc

import (
	"context"

	"github.com/tagexplorer/backend/pkg/loader"
)

const docXMLMax = 50 << 20

// DocGraphLoader loads Word documents (.docx) and extracts their text content.
type DocGraphLoader struct {
	loader loader.GraphFileLoader
	cache  loader.Cache
}

// NewDocGraphLoader creates a document loader that extracts text directly from docx XML.
func NewDocGraphLoader(l loader.GraphFileLoader) *DocGraphLoader {
	return &DocGraphLoader{loader: l}
}

// GetFileText extracts text content from a Word document.
func (l *DocGraphLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	return l.cache.Load(loader.CacheKey(file), func() ([]byte, error) {
		content, err := l.loader.GetFileText(ctx, file)
		if err != nil {
			return nil, err
		}
		return parseDocx(content)
	})
}

// GetBase64 returns the raw document encoded as base64.
func (l *DocGraphLoader) GetBase64(ctx context.Context, file loader.GraphFile) (loader.GraphBase64, error) {
	content, err := l.loader.GetFileText(ctx, file)
	if err != nil {
		return loader.GraphBase64{}, err
	}
	return loader.EncodeBase64(content, loader.MimeDocx), nil
}

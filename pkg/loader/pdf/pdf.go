package pdf

import (
	"context"
	"time"

	"github.com/tagexplorer/backend/pkg/loader"
)

const parseTimeout = 30 * time.Second

// PDFGraphLoader loads PDF files through another loader and extracts their
// text with pdftotext.
type PDFGraphLoader struct {
	loader loader.GraphFileLoader
	cache  loader.Cache
}

// NewPDFGraphLoader creates a PDF loader reading raw bytes from l.
func NewPDFGraphLoader(l loader.GraphFileLoader) *PDFGraphLoader {
	return &PDFGraphLoader{loader: l}
}

// GetFileText extracts text from a PDF file. Results are cached per file.
func (l *PDFGraphLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	return l.cache.Load(loader.CacheKey(file), func() ([]byte, error) {
		content, err := l.loader.GetFileText(ctx, file)
		if err != nil {
			return nil, err
		}
		return parsePDF(ctx, content)
	})
}

// GetBase64 returns the PDF encoded as base64.
func (l *PDFGraphLoader) GetBase64(ctx context.Context, file loader.GraphFile) (loader.GraphBase64, error) {
	content, err := l.loader.GetFileText(ctx, file)
	if err != nil {
		return loader.GraphBase64{}, err
	}
	return loader.EncodeBase64(content, loader.MimePDF), nil
}

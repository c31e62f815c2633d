package io

import (
	"context"
	"os"

	"github.com/tagexplorer/backend/pkg/loader"
)

// IOGraphFileLoader loads files directly from the local filesystem with caching.
type IOGraphFileLoader struct {
	cache loader.Cache
}

// NewIOGraphFileLoader creates a new filesystem-based file loader.
func NewIOGraphFileLoader() *IOGraphFileLoader {
	return &IOGraphFileLoader{}
}

// GetFileText reads the file content from the filesystem. Results are cached.
func (l *IOGraphFileLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	return l.cache.Load(loader.CacheKey(file), func() ([]byte, error) {
		return os.ReadFile(file.FilePath)
	})
}

func (l *IOGraphFileLoader) Forget(file loader.GraphFile) {
	l.cache.Forget(loader.CacheKey(file))
}

// GetBase64 reads the file and returns it encoded as base64 with its mime type.
func (l *IOGraphFileLoader) GetBase64(ctx context.Context, file loader.GraphFile) (loader.GraphBase64, error) {
	f, err := l.GetFileText(ctx, file)
	if err != nil {
		return loader.GraphBase64{}, err
	}
	return loader.EncodeBase64(f, mimeOf(file)), nil
}

// BytesGraphFileLoader serves a single in-memory payload, e.g. an upload
// that is analysed before it is stored.
type BytesGraphFileLoader struct {
	data []byte
}

// NewBytesGraphFileLoader wraps data.
func NewBytesGraphFileLoader(data []byte) *BytesGraphFileLoader {
	return &BytesGraphFileLoader{data: data}
}

func (l *BytesGraphFileLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	return l.data, nil
}

func (l *BytesGraphFileLoader) GetBase64(ctx context.Context, file loader.GraphFile) (loader.GraphBase64, error) {
	return loader.EncodeBase64(l.data, mimeOf(file)), nil
}

func mimeOf(file loader.GraphFile) string {
	if file.MimeType != "" {
		return file.MimeType
	}
	return loader.MimeFromPath(file.FilePath)
}

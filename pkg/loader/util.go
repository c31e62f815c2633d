package loader

import (
	"encoding/base64"
	"fmt"
	"mime"
	"path"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

const (
	MimePDF  = "application/pdf"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeHTML = "text/html"

	defaultMime = "application/octet-stream"
)

// KindForMime maps a mime type to the GraphFileType used to pick an
// extraction path.
func KindForMime(mimeType string) GraphFileType {
	m := normalizeMime(mimeType)
	switch {
	case strings.HasPrefix(m, "image/"):
		return GraphFileTypeImage
	case m == MimePDF, m == MimeDocx:
		return GraphFileTypeDocument
	case strings.HasPrefix(m, "text/"):
		return GraphFileTypeText
	default:
		return GraphFileTypeFile
	}
}

// MimeFromPath guesses a mime type from the file extension.
func MimeFromPath(filePath string) string {
	ext := strings.ToLower(path.Ext(filePath))
	if ext == "" {
		return defaultMime
	}
	m := mime.TypeByExtension(ext)
	if m == "" {
		return defaultMime
	}
	return normalizeMime(m)
}

// Base64Prefix returns the data URL prefix for mimeType.
func Base64Prefix(mimeType string) string {
	m := normalizeMime(mimeType)
	if m == "" {
		m = defaultMime
	}
	return fmt.Sprintf("data:%s;base64,", m)
}

// EncodeBase64 encodes content with the data URL prefix of mimeType.
func EncodeBase64(content []byte, mimeType string) GraphBase64 {
	return GraphBase64{
		Base64:   base64.StdEncoding.EncodeToString(content),
		FileType: Base64Prefix(mimeType),
	}
}

func normalizeMime(m string) string {
	m, _, _ = strings.Cut(m, ";")
	return strings.ToLower(strings.TrimSpace(m))
}

// CacheKey generates a unique cache key for a GraphFile based on its ID and path.
func CacheKey(file GraphFile) string {
	return file.ID + ":" + file.FilePath
}

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// CleanText trims extracted text and collapses runs of blank lines.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	if text != "" {
		text += "\n"
	}
	return text
}

// Cache memoizes loader results per key. Concurrent loads of the same key
// share one call. Failed loads are not cached.
type Cache struct {
	mu    sync.RWMutex
	items map[string][]byte
	group singleflight.Group
}

// Load returns the cached value for key or calls fn to produce it.
func (c *Cache) Load(key string, fn func() ([]byte, error)) ([]byte, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.get(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.items == nil {
			c.items = make(map[string][]byte)
		}
		c.items[key] = v
		c.mu.Unlock()

		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Forget drops key from the cache.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *Cache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

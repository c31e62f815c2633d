package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoText is returned by loaders that cannot turn a file into text.
var ErrNoText = errors.New("file has no text representation")

type GraphFileType string

const (
	GraphFileTypeImage    GraphFileType = "image"
	GraphFileTypeDocument GraphFileType = "document"
	GraphFileTypeText     GraphFileType = "text"
	GraphFileTypeFile     GraphFileType = "file"
)

// GraphBase64 is a base64 payload together with its data URL prefix,
// e.g. "data:image/png;base64,".
type GraphBase64 struct {
	Base64   string `json:"base64"`
	FileType string `json:"file_type"`
}

// DataURL joins prefix and payload.
func (b GraphBase64) DataURL() string {
	return b.FileType + b.Base64
}

// MimeType returns the mime type encoded in the prefix.
func (b GraphBase64) MimeType() string {
	m := strings.TrimPrefix(b.FileType, "data:")
	m, _, _ = strings.Cut(m, ";")
	return m
}

// GraphFile represents a stored file that is read through a GraphFileLoader.
// MimeType is the type reported at upload time and may be empty.
type GraphFile struct {
	ID        string
	FilePath  string
	FileType  GraphFileType
	MimeType  string
	MaxTokens int
	Loader    GraphFileLoader
}

// NewGraphFileParams defines the input parameters for creating a new GraphFile.
type NewGraphFileParams struct {
	ID        string
	FilePath  string
	MimeType  string
	MaxTokens int
	Loader    GraphFileLoader
}

// NewGraphFile creates a GraphFile whose FileType is derived from the mime
// type, or from the path when no mime type is given.
func NewGraphFile(params NewGraphFileParams) GraphFile {
	mimeType := params.MimeType
	if mimeType == "" {
		mimeType = MimeFromPath(params.FilePath)
	}
	return GraphFile{
		ID:        params.ID,
		FilePath:  params.FilePath,
		FileType:  KindForMime(mimeType),
		MimeType:  mimeType,
		MaxTokens: params.MaxTokens,
		Loader:    params.Loader,
	}
}

// GetText retrieves the text content of the file using its Loader.
//
// Example:
//
//	text, err := file.GetText(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(string(text))
func (f *GraphFile) GetText(ctx context.Context) ([]byte, error) {
	if f.Loader == nil {
		return nil, fmt.Errorf("no loader for file %s", f.ID)
	}
	return f.Loader.GetFileText(ctx, *f)
}

// GetBase64 retrieves the base64-encoded content of the file using its Loader.
func (f *GraphFile) GetBase64(ctx context.Context) (GraphBase64, error) {
	if f.Loader == nil {
		return GraphBase64{}, fmt.Errorf("no loader for file %s", f.ID)
	}
	return f.Loader.GetBase64(ctx, *f)
}

// GraphFileLoader defines the interface for loading the contents of a GraphFile.
// Implementations may load files from memory, disk, object storage or the web.
type GraphFileLoader interface {
	GetFileText(ctx context.Context, file GraphFile) ([]byte, error)
	GetBase64(ctx context.Context, file GraphFile) (GraphBase64, error)
}

// Forgetter is implemented by caching loaders that can drop one file.
type Forgetter interface {
	Forget(file GraphFile)
}

package common

import (
	"strings"
	"time"
)

// File is an uploaded document or image. A non-nil DeletedAt marks the file
// as soft-deleted (in the trash).
type File struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Size       *int64     `json:"size,omitempty"`
	StorageKey string     `json:"storage_key"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the file is in the trash.
func (f File) Deleted() bool {
	return f.DeletedAt != nil
}

// Tag is a label attached to files. Name is always normalized and unique.
// ParentID is persisted but carries no hierarchy semantics.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     *string   `json:"color,omitempty"`
	ParentID  *string   `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FileTag links one file to one tag.
type FileTag struct {
	FileID string `json:"file_id"`
	TagID  string `json:"tag_id"`
}

// FileWithTags bundles a file with the tags linked to it.
type FileWithTags struct {
	File
	Tags []Tag `json:"tags"`
}

// NormalizeTagName trims and lowercases a tag name.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeTagNames normalizes every name, drops blanks and removes
// duplicates while keeping the first occurrence.
func NormalizeTagNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeTagName(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

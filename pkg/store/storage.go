package store

import (
	"context"
	"errors"

	"github.com/tagexplorer/backend/pkg/common"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrTagNameConflict = errors.New("tag name already exists")
	ErrInvalidTagName  = errors.New("invalid tag name")
	ErrInvalidFileName = errors.New("invalid file name")
)

// MaxTagNameLength bounds normalized tag names in runes.
const MaxTagNameLength = 64

// SimilarTag is a tag together with its cosine distance to a reference tag.
type SimilarTag struct {
	common.Tag
	Distance float64 `json:"distance"`
}

// Storage defines the persistence operations for files, tags and the
// file-tag links between them. Tag names are normalized (trimmed and
// lowercased) before they reach the database and are unique.
type Storage interface {
	// SaveFileWithTags inserts a file and links it to the named tags,
	// creating missing tags, in one transaction. The second result holds
	// the tags that did not exist before.
	SaveFileWithTags(ctx context.Context, file common.File, tagNames []string) (common.FileWithTags, []common.Tag, error)
	GetFile(ctx context.Context, id string) (common.FileWithTags, error)
	ListFiles(ctx context.Context, deleted bool) ([]common.File, error)
	RenameFile(ctx context.Context, id string, name string) (common.File, error)
	TrashFile(ctx context.Context, id string) error
	RestoreFile(ctx context.Context, id string) error
	// DeleteFile removes the record and its links and returns the storage
	// key of the blob, which the caller deletes.
	DeleteFile(ctx context.Context, id string) (string, error)
	// EmptyTrash removes every soft-deleted file and returns their storage keys.
	EmptyTrash(ctx context.Context) ([]string, error)

	CreateTag(ctx context.Context, name string, color *string) (common.Tag, bool, error)
	ListTags(ctx context.Context) ([]common.Tag, error)
	TagNames(ctx context.Context) ([]string, error)
	UpdateTag(ctx context.Context, id string, name *string, color *string) (common.Tag, error)
	MergeTags(ctx context.Context, sourceID string, targetID string) error
	DeleteTag(ctx context.Context, id string) error
	TagsWithoutEmbedding(ctx context.Context, limit int) ([]common.Tag, error)
	SetTagEmbedding(ctx context.Context, id string, embedding []float32) error
	SimilarTags(ctx context.Context, id string, limit int) ([]SimilarTag, error)

	LinkTag(ctx context.Context, fileID string, tagID string) error
	UnlinkTag(ctx context.Context, fileID string, tagID string) error
	FileTags(ctx context.Context, fileID string) ([]common.Tag, error)
	ListFileTags(ctx context.Context) ([]common.FileTag, error)
}

// ValidateTagName normalizes name and checks it can be stored.
func ValidateTagName(name string) (string, error) {
	n := common.NormalizeTagName(name)
	if n == "" || len([]rune(n)) > MaxTagNameLength {
		return "", ErrInvalidTagName
	}
	return n, nil
}

package pgx

import (
	"context"
	"fmt"

	"github.com/tagexplorer/backend/internal/util"
	"github.com/tagexplorer/backend/pkg/common"
	"github.com/tagexplorer/backend/pkg/logger"
	"github.com/tagexplorer/backend/pkg/store"
)

// SaveFileWithTags stores the file record and links every named tag to it.
// Names are normalized and deduplicated first; unknown tags are created.
func (s *DBStorage) SaveFileWithTags(
	ctx context.Context,
	file common.File,
	tagNames []string,
) (common.FileWithTags, []common.Tag, error) {
	file.Name = util.CleanFileName(file.Name)
	if file.Name == "" {
		return common.FileWithTags{}, nil, store.ErrInvalidFileName
	}
	if file.StorageKey == "" {
		return common.FileWithTags{}, nil, fmt.Errorf("storage key is empty")
	}

	names, err := store.ValidateTagNames(tagNames)
	if err != nil {
		return common.FileWithTags{}, nil, err
	}

	if file.ID == "" {
		id, err := s.newID()
		if err != nil {
			return common.FileWithTags{}, nil, err
		}
		file.ID = id
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return common.FileWithTags{}, nil, err
	}
	defer tx.Rollback(ctx)

	saved, err := scanFile(tx.QueryRow(ctx, `
		INSERT INTO files (id, name, type, size, storage_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+fileColumns,
		file.ID, file.Name, file.Type, file.Size, file.StorageKey,
	))
	if err != nil {
		return common.FileWithTags{}, nil, fmt.Errorf("insert file: %w", mapErr(err))
	}

	tags := make([]common.Tag, 0, len(names))
	created := make([]common.Tag, 0)
	for _, name := range names {
		tag, isNew, err := s.upsertTag(ctx, tx, name, nil)
		if err != nil {
			return common.FileWithTags{}, nil, fmt.Errorf("upsert tag %q: %w", name, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO file_tags (file_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			saved.ID, tag.ID,
		); err != nil {
			return common.FileWithTags{}, nil, fmt.Errorf("link tag %q: %w", name, mapErr(err))
		}
		tags = append(tags, tag)
		if isNew {
			created = append(created, tag)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return common.FileWithTags{}, nil, err
	}

	logger.Debug("Saved file", "file_id", saved.ID, "tags", len(tags), "new_tags", len(created))
	return common.FileWithTags{File: saved, Tags: tags}, created, nil
}

func (s *DBStorage) GetFile(ctx context.Context, id string) (common.FileWithTags, error) {
	f, err := scanFile(s.conn.QueryRow(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = $1`, id))
	if err != nil {
		return common.FileWithTags{}, mapErr(err)
	}
	tags, err := s.FileTags(ctx, id)
	if err != nil {
		return common.FileWithTags{}, err
	}
	return common.FileWithTags{File: f, Tags: tags}, nil
}

// ListFiles returns live files in creation order, or the trash (most recently
// trashed first) when deleted is set.
func (s *DBStorage) ListFiles(ctx context.Context, deleted bool) ([]common.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files
		WHERE deleted_at IS NULL
		ORDER BY created_at, id`
	if deleted {
		query = `SELECT ` + fileColumns + ` FROM files
		WHERE deleted_at IS NOT NULL
		ORDER BY deleted_at DESC, id`
	}
	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectFiles(rows)
}

func (s *DBStorage) RenameFile(ctx context.Context, id string, name string) (common.File, error) {
	name = util.CleanFileName(name)
	if name == "" {
		return common.File{}, store.ErrInvalidFileName
	}
	f, err := scanFile(s.conn.QueryRow(ctx, `
		UPDATE files SET name = $2 WHERE id = $1
		RETURNING `+fileColumns,
		id, name,
	))
	if err != nil {
		return common.File{}, mapErr(err)
	}
	return f, nil
}

// TrashFile soft-deletes a file. Trashing an already trashed file keeps the
// original deletion time.
func (s *DBStorage) TrashFile(ctx context.Context, id string) error {
	tag, err := s.conn.Exec(ctx,
		`UPDATE files SET deleted_at = COALESCE(deleted_at, now()) WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *DBStorage) RestoreFile(ctx context.Context, id string) error {
	tag, err := s.conn.Exec(ctx,
		`UPDATE files SET deleted_at = NULL WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *DBStorage) DeleteFile(ctx context.Context, id string) (string, error) {
	var key string
	err := s.conn.QueryRow(ctx,
		`DELETE FROM files WHERE id = $1 RETURNING storage_key`, id).Scan(&key)
	if err != nil {
		return "", mapErr(err)
	}
	return key, nil
}

func (s *DBStorage) EmptyTrash(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx,
		`DELETE FROM files WHERE deleted_at IS NOT NULL RETURNING storage_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return store.UniqueKeys(keys), nil
}

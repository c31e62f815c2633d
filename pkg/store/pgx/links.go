package pgx

import (
	"context"

	"github.com/tagexplorer/backend/pkg/common"
)

// LinkTag attaches a tag to a file. Linking twice is a no-op.
func (s *DBStorage) LinkTag(ctx context.Context, fileID string, tagID string) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO file_tags (file_id, tag_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		fileID, tagID,
	)
	return mapErr(err)
}

func (s *DBStorage) UnlinkTag(ctx context.Context, fileID string, tagID string) error {
	_, err := s.conn.Exec(ctx,
		`DELETE FROM file_tags WHERE file_id = $1 AND tag_id = $2`, fileID, tagID)
	return err
}

func (s *DBStorage) FileTags(ctx context.Context, fileID string) ([]common.Tag, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT t.id, t.name, t.color, t.parent_id, t.created_at
		FROM tags t
		JOIN file_tags ft ON ft.tag_id = t.id
		WHERE ft.file_id = $1
		ORDER BY t.name`, fileID)
	if err != nil {
		return nil, err
	}
	return collectTags(rows)
}

func (s *DBStorage) ListFileTags(ctx context.Context) ([]common.FileTag, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT file_id, tag_id FROM file_tags ORDER BY file_id, tag_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]common.FileTag, 0)
	for rows.Next() {
		var l common.FileTag
		if err := rows.Scan(&l.FileID, &l.TagID); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

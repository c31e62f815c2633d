package pgx

import (
	"context"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/tagexplorer/backend/pkg/common"
	"github.com/tagexplorer/backend/pkg/store"
)

const defaultSimilarLimit = 5

// upsertTag returns the tag with the given normalized name, creating it when
// missing. The existing color is kept on conflict.
func (s *DBStorage) upsertTag(
	ctx context.Context,
	conn pgxIConn,
	name string,
	color *string,
) (common.Tag, bool, error) {
	id, err := s.newID()
	if err != nil {
		return common.Tag{}, false, err
	}
	var inserted bool
	tag, err := scanTag(conn.QueryRow(ctx, `
		INSERT INTO tags (id, name, color) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING `+tagColumns+`, (xmax = 0) AS inserted`,
		id, name, color,
	), &inserted)
	if err != nil {
		return common.Tag{}, false, mapErr(err)
	}
	return tag, inserted, nil
}

// CreateTag is create-or-get: an existing tag with the same normalized name
// is returned with created set to false.
func (s *DBStorage) CreateTag(ctx context.Context, name string, color *string) (common.Tag, bool, error) {
	normalized, err := store.ValidateTagName(name)
	if err != nil {
		return common.Tag{}, false, err
	}
	if color != nil && *color == "" {
		color = nil
	}
	return s.upsertTag(ctx, s.conn, normalized, color)
}

func (s *DBStorage) ListTags(ctx context.Context) ([]common.Tag, error) {
	rows, err := s.conn.Query(ctx, `SELECT `+tagColumns+` FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collectTags(rows)
}

func (s *DBStorage) TagNames(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `SELECT name FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// UpdateTag renames and/or recolors a tag. A nil field is left unchanged and
// an empty color clears it. A rename drops the embedding so the tag is
// picked up again by TagsWithoutEmbedding.
func (s *DBStorage) UpdateTag(ctx context.Context, id string, name *string, color *string) (common.Tag, error) {
	var newName *string
	if name != nil {
		n, err := store.ValidateTagName(*name)
		if err != nil {
			return common.Tag{}, err
		}
		newName = &n
	}

	tag, err := scanTag(s.conn.QueryRow(ctx, `
		UPDATE tags SET
			name = COALESCE($2::text, name),
			embedding = CASE
				WHEN $2::text IS NOT NULL AND $2::text <> name THEN NULL
				ELSE embedding
			END,
			color = CASE
				WHEN $3::text IS NULL THEN color
				WHEN $3::text = '' THEN NULL
				ELSE $3::text
			END
		WHERE id = $1
		RETURNING `+tagColumns,
		id, newName, color,
	))
	if err != nil {
		return common.Tag{}, mapErr(err)
	}
	return tag, nil
}

// MergeTags moves every link of sourceID to targetID and deletes the source.
// Files linked to both keep a single link. Both tag rows are locked first so
// a link to the source committed meanwhile is either moved or rejected.
func (s *DBStorage) MergeTags(ctx context.Context, sourceID string, targetID string) error {
	if sourceID == targetID {
		return nil
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT id FROM tags WHERE id IN ($1, $2) ORDER BY id FOR UPDATE`, sourceID, targetID)
	if err != nil {
		return err
	}
	locked, err := pgxv5.CollectRows(rows, pgxv5.RowTo[string])
	if err != nil {
		return err
	}
	if len(locked) != 2 {
		return store.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO file_tags (file_id, tag_id)
		SELECT file_id, $2 FROM file_tags WHERE tag_id = $1
		ON CONFLICT DO NOTHING`,
		sourceID, targetID,
	); err != nil {
		return fmt.Errorf("move links: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM tags WHERE id = $1`, sourceID); err != nil {
		return fmt.Errorf("delete merged tag: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *DBStorage) DeleteTag(ctx context.Context, id string) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *DBStorage) TagsWithoutEmbedding(ctx context.Context, limit int) ([]common.Tag, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.conn.Query(ctx, `
		SELECT `+tagColumns+` FROM tags
		WHERE embedding IS NULL
		ORDER BY created_at, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectTags(rows)
}

func (s *DBStorage) SetTagEmbedding(ctx context.Context, id string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("embedding for tag %s is empty", id)
	}
	tag, err := s.conn.Exec(ctx,
		`UPDATE tags SET embedding = $2 WHERE id = $1`, id, pgvector.NewVector(embedding))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SimilarTags returns the tags closest to id by cosine distance. Tags without
// an embedding, or embedded with a different dimension, are skipped.
func (s *DBStorage) SimilarTags(ctx context.Context, id string, limit int) ([]store.SimilarTag, error) {
	if limit <= 0 {
		limit = defaultSimilarLimit
	}

	var exists bool
	if err := s.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tags WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, store.ErrNotFound
	}

	rows, err := s.conn.Query(ctx, `
		SELECT t.id, t.name, t.color, t.parent_id, t.created_at,
			t.embedding <=> ref.embedding AS distance
		FROM tags t, tags ref
		WHERE ref.id = $1
			AND t.id <> ref.id
			AND t.embedding IS NOT NULL
			AND ref.embedding IS NOT NULL
			AND vector_dims(t.embedding) = vector_dims(ref.embedding)
		ORDER BY distance, t.name
		LIMIT $2`,
		id, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]store.SimilarTag, 0)
	for rows.Next() {
		var distance float64
		tag, err := scanTag(rows, &distance)
		if err != nil {
			return nil, err
		}
		out = append(out, store.SimilarTag{Tag: tag, Distance: distance})
	}
	return out, rows.Err()
}

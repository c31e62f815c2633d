package pgx

import (
	"context"
	"errors"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tagexplorer/backend/internal/util"
	"github.com/tagexplorer/backend/pkg/common"
	"github.com/tagexplorer/backend/pkg/store"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// DBStorage implements store.Storage on PostgreSQL. Tag embeddings live in a
// pgvector column so similar tags can be looked up with cosine distance.
type DBStorage struct {
	conn  pgxIConn
	newID func() (string, error)
}

var _ store.Storage = (*DBStorage)(nil)

type DBStorageOption func(*DBStorage)

// WithIDGenerator replaces the generator for file and tag ids.
func WithIDGenerator(fn func() (string, error)) DBStorageOption {
	return func(s *DBStorage) {
		s.newID = fn
	}
}

// NewDBStorageWithConnection creates a DBStorage on an existing pool,
// connection or transaction.
func NewDBStorageWithConnection(
	ctx context.Context,
	conn pgxIConn,
	opts ...DBStorageOption,
) (*DBStorage, error) {
	if conn == nil {
		return nil, errors.New("database connection is nil")
	}
	s := &DBStorage{
		conn:  conn,
		newID: util.NewID,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

const (
	fileColumns = "id, name, type, size, storage_key, created_at, deleted_at"
	tagColumns  = "id, name, color, parent_id, created_at"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (common.File, error) {
	var f common.File
	err := row.Scan(&f.ID, &f.Name, &f.Type, &f.Size, &f.StorageKey, &f.CreatedAt, &f.DeletedAt)
	return f, err
}

func scanTag(row rowScanner, extra ...any) (common.Tag, error) {
	var t common.Tag
	dest := append([]any{&t.ID, &t.Name, &t.Color, &t.ParentID, &t.CreatedAt}, extra...)
	err := row.Scan(dest...)
	return t, err
}

func collectFiles(rows pgxv5.Rows) ([]common.File, error) {
	defer rows.Close()
	files := make([]common.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func collectTags(rows pgxv5.Rows) ([]common.Tag, error) {
	defer rows.Close()
	tags := make([]common.Tag, 0)
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// mapErr translates driver errors into the store sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgxv5.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			if pgErr.TableName == "tags" {
				return store.ErrTagNameConflict
			}
		case "23503":
			return store.ErrNotFound
		}
	}
	return err
}

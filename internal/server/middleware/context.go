package middleware

import (
	"context"
	"io"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/tagexplorer/backend/internal/queue"
	"github.com/tagexplorer/backend/internal/usage"
	"github.com/tagexplorer/backend/pkg/analyze"
	"github.com/tagexplorer/backend/pkg/loader"
	"github.com/tagexplorer/backend/pkg/store"
)

type AppUser struct {
	UserID      string
	Role        string
	Permissions []string
}

// BlobStore is the object storage used for file contents.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key, fileName string) (string, error)
}

type UsageStore interface {
	GetUsage(ctx context.Context) (usage.Summary, error)
	Reset(ctx context.Context) error
}

// App carries the shared dependencies of all handlers. Queue and KeyFunc
// are optional.
type App struct {
	Store    store.Storage
	Blobs    BlobStore
	Files    loader.GraphFileLoader
	Analyzer *analyze.Analyzer
	Usage    UsageStore
	Queue    queue.Publisher

	KeyFunc      jwt.Keyfunc
	MasterAPIKey string
}

// AuthEnabled reports whether requests must carry a bearer token. Without
// a JWKS endpoint or master key the server runs in single-user mode.
func (a *App) AuthEnabled() bool {
	return a.KeyFunc != nil || a.MasterAPIKey != ""
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}

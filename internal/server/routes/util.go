package routes

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/tagexplorer/backend/internal/queue"
	"github.com/tagexplorer/backend/internal/server/middleware"
	"github.com/tagexplorer/backend/pkg/common"
	"github.com/tagexplorer/backend/pkg/logger"
	"github.com/tagexplorer/backend/pkg/store"
)

type messageResponse struct {
	Message string `json:"message"`
}

func appOf(c echo.Context) *middleware.App {
	return c.(*middleware.AppContext).App
}

func invalidParams(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request params"})
}

func internalError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Internal server error"})
}

// storeError maps store sentinel errors to responses. Anything else is
// logged and reported as an internal error.
func storeError(c echo.Context, err error, action string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, messageResponse{Message: "Not found"})
	case errors.Is(err, store.ErrTagNameConflict):
		return c.JSON(http.StatusConflict, messageResponse{Message: "A tag with this name already exists"})
	case errors.Is(err, store.ErrInvalidTagName):
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid tag name"})
	case errors.Is(err, store.ErrInvalidFileName):
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid file name"})
	}
	logger.Error("Failed to "+action, "err", err)
	return internalError(c)
}

// publishEmbed asks the worker to embed new or renamed tags. Publishing is best
// effort; tags without embedding are picked up by the next job.
func publishEmbed(ctx context.Context, app *middleware.App, tags []common.Tag) {
	if app.Queue == nil || len(tags) == 0 {
		return
	}
	ids := make([]string, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	msg := queue.EmbedMsg{Message: "embed tags", TagIDs: ids}
	if err := app.Queue.Publish(ctx, queue.EmbedQueue, msg); err != nil {
		logger.Warn("Failed to publish embed job", "err", err)
	}
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return []string{}
	}
	return slices.Sorted(maps.Keys(m))
}

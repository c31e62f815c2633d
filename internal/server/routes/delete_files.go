package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tagexplorer/backend/internal/queue"
	"github.com/tagexplorer/backend/pkg/logger"
)

// TrashFileHandler moves a file to the trash.
func TrashFileHandler(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return invalidParams(c)
	}
	if err := appOf(c).Store.TrashFile(c.Request().Context(), id); err != nil {
		return storeError(c, err, "trash file")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "File moved to trash"})
}

func RestoreFileHandler(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return invalidParams(c)
	}
	if err := appOf(c).Store.RestoreFile(c.Request().Context(), id); err != nil {
		return storeError(c, err, "restore file")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "File restored"})
}

// DeleteFileHandler removes a file for good. The record goes first so a
// failing blob delete leaves an orphaned object, never a dangling record.
func DeleteFileHandler(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return invalidParams(c)
	}

	ctx := c.Request().Context()
	app := appOf(c)

	key, err := app.Store.DeleteFile(ctx, id)
	if err != nil {
		return storeError(c, err, "delete file")
	}
	if err := app.Blobs.Delete(ctx, key); err != nil {
		logger.Error("Failed to delete blob", "key", key, "err", err)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "File deleted"})
}

// EmptyTrashHandler deletes every trashed file. With async=true and a
// queue available the work is handed to the worker.
func EmptyTrashHandler(c echo.Context) error {
	type emptyTrashResponse struct {
		Deleted int  `json:"deleted"`
		Queued  bool `json:"queued,omitempty"`
	}

	async, _ := strconv.ParseBool(c.QueryParam("async"))

	ctx := c.Request().Context()
	app := appOf(c)

	if async && app.Queue != nil {
		msg := queue.TrashMsg{Message: "empty trash", RequestedAt: time.Now().UTC()}
		if err := app.Queue.Publish(ctx, queue.TrashQueue, msg); err != nil {
			logger.Error("Failed to publish trash job", "err", err)
			return internalError(c)
		}
		return c.JSON(http.StatusAccepted, emptyTrashResponse{Queued: true})
	}

	keys, err := app.Store.EmptyTrash(ctx)
	if err != nil {
		logger.Error("Failed to empty trash", "err", err)
		return internalError(c)
	}
	if err := app.Blobs.DeleteMany(ctx, keys); err != nil {
		logger.Error("Failed to delete blobs", "count", len(keys), "err", err)
	}

	return c.JSON(http.StatusOK, emptyTrashResponse{Deleted: len(keys)})
}

// UnlinkTagHandler detaches a tag from a file. Removing a missing link
// succeeds.
func UnlinkTagHandler(c echo.Context) error {
	fileID := c.Param("id")
	tagID := c.Param("tag_id")
	if fileID == "" || tagID == "" {
		return invalidParams(c)
	}
	if err := appOf(c).Store.UnlinkTag(c.Request().Context(), fileID, tagID); err != nil {
		return storeError(c, err, "unlink tag")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Tag unlinked"})
}

package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tagexplorer/backend/pkg/logger"
)

func ListFilesHandler(c echo.Context) error {
	files, err := appOf(c).Store.ListFiles(c.Request().Context(), false)
	if err != nil {
		logger.Error("Failed to list files", "err", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, files)
}

// ListTrashHandler lists soft-deleted files.
func ListTrashHandler(c echo.Context) error {
	files, err := appOf(c).Store.ListFiles(c.Request().Context(), true)
	if err != nil {
		logger.Error("Failed to list trash", "err", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, files)
}

func GetFileHandler(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return invalidParams(c)
	}

	file, err := appOf(c).Store.GetFile(c.Request().Context(), id)
	if err != nil {
		return storeError(c, err, "get file")
	}
	return c.JSON(http.StatusOK, file)
}

// GetFileURLHandler returns a short-lived download link for the file's blob.
func GetFileURLHandler(c echo.Context) error {
	type fileURLResponse struct {
		URL string `json:"url"`
	}

	id := c.Param("id")
	if id == "" {
		return invalidParams(c)
	}

	ctx := c.Request().Context()
	app := appOf(c)

	file, err := app.Store.GetFile(ctx, id)
	if err != nil {
		return storeError(c, err, "get file")
	}

	url, err := app.Blobs.PresignDownload(ctx, file.StorageKey, file.Name)
	if err != nil {
		logger.Error("Failed to presign download", "err", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, fileURLResponse{URL: url})
}

package routes

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tagexplorer/backend/pkg/export"
	"github.com/tagexplorer/backend/pkg/logger"
)

// ExportHandler streams the library as a JSON or CSV attachment.
func ExportHandler(c echo.Context) error {
	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return invalidParams(c)
	}

	lib, err := loadLibrary(c.Request().Context(), appOf(c).Store)
	if err != nil {
		logger.Error("Failed to load export data", "err", err)
		return internalError(c)
	}

	now := time.Now()
	var buf bytes.Buffer
	if err := export.Write(&buf, format, export.New(lib.files, lib.tags, lib.links, now)); err != nil {
		logger.Error("Failed to write export", "err", err)
		return internalError(c)
	}

	c.Response().Header().Set(
		echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", export.FileName(format, now)),
	)
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

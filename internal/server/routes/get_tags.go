package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tagexplorer/backend/pkg/logger"
)

const (
	defaultSimilarLimit = 5
	maxSimilarLimit     = 50
)

func ListTagsHandler(c echo.Context) error {
	tags, err := appOf(c).Store.ListTags(c.Request().Context())
	if err != nil {
		logger.Error("Failed to list tags", "err", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, tags)
}

// SimilarTagsHandler returns the tags closest to :id by embedding, as merge
// candidates. Tags without an embedding have no neighbours.
func SimilarTagsHandler(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return invalidParams(c)
	}

	limit := defaultSimilarLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return invalidParams(c)
		}
		limit = min(n, maxSimilarLimit)
	}

	tags, err := appOf(c).Store.SimilarTags(c.Request().Context(), id, limit)
	if err != nil {
		return storeError(c, err, "find similar tags")
	}
	return c.JSON(http.StatusOK, tags)
}

// ListFileTagsHandler returns every file-tag link.
func ListFileTagsHandler(c echo.Context) error {
	links, err := appOf(c).Store.ListFileTags(c.Request().Context())
	if err != nil {
		logger.Error("Failed to list file tags", "err", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, links)
}

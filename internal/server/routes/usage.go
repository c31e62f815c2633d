package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tagexplorer/backend/pkg/logger"
)

// GetConfigHandler tells the client whether AI analysis is available.
func GetConfigHandler(c echo.Context) error {
	type configResponse struct {
		AIConfigured bool `json:"ai_configured"`
	}
	return c.JSON(http.StatusOK, configResponse{
		AIConfigured: appOf(c).Analyzer.Configured(),
	})
}

// GetUsageHandler reports the analyses recorded since the last reset and
// their estimated cost.
func GetUsageHandler(c echo.Context) error {
	summary, err := appOf(c).Usage.GetUsage(c.Request().Context())
	if err != nil {
		logger.Error("Failed to get AI usage", "err", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, summary)
}

func ResetUsageHandler(c echo.Context) error {
	if err := appOf(c).Usage.Reset(c.Request().Context()); err != nil {
		logger.Error("Failed to reset AI usage", "err", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Usage reset"})
}

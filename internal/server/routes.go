package server

import (
	"github.com/tagexplorer/backend/internal/server/middleware"
	"github.com/tagexplorer/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	apiRoutes.GET("/config", routes.GetConfigHandler)

	// File routes
	apiRoutes.POST("/files/upload-url", routes.CreateUploadURLHandler, middleware.RequirePermission(middleware.PermFileWrite))
	apiRoutes.POST("/files/upload", routes.UploadFileHandler, middleware.RequirePermission(middleware.PermFileWrite))
	apiRoutes.POST("/files/analyze", routes.AnalyzeFileHandler, middleware.RequirePermission(middleware.PermFileWrite))
	apiRoutes.POST("/files", routes.SaveFileHandler, middleware.RequirePermission(middleware.PermFileWrite))
	apiRoutes.GET("/files", routes.ListFilesHandler)
	apiRoutes.GET("/files/trash", routes.ListTrashHandler)
	apiRoutes.DELETE("/files/trash", routes.EmptyTrashHandler, middleware.RequirePermission(middleware.PermFileDelete))
	apiRoutes.GET("/files/:id", routes.GetFileHandler)
	apiRoutes.GET("/files/:id/url", routes.GetFileURLHandler)
	apiRoutes.PATCH("/files/:id", routes.RenameFileHandler, middleware.RequirePermission(middleware.PermFileWrite))
	apiRoutes.POST("/files/:id/trash", routes.TrashFileHandler, middleware.RequirePermission(middleware.PermFileDelete))
	apiRoutes.POST("/files/:id/restore", routes.RestoreFileHandler, middleware.RequirePermission(middleware.PermFileDelete))
	apiRoutes.DELETE("/files/:id", routes.DeleteFileHandler, middleware.RequirePermission(middleware.PermFileDelete))

	// File tag routes
	apiRoutes.POST("/files/:id/tags", routes.LinkTagHandler, middleware.RequirePermission(middleware.PermFileWrite))
	apiRoutes.DELETE("/files/:id/tags/:tag_id", routes.UnlinkTagHandler, middleware.RequirePermission(middleware.PermFileWrite))
	apiRoutes.GET("/file-tags", routes.ListFileTagsHandler)

	// Tag routes
	apiRoutes.GET("/tags", routes.ListTagsHandler)
	apiRoutes.POST("/tags", routes.CreateTagHandler, middleware.RequirePermission(middleware.PermTagWrite))
	apiRoutes.PATCH("/tags/:id", routes.UpdateTagHandler, middleware.RequirePermission(middleware.PermTagWrite))
	apiRoutes.POST("/tags/:id/merge", routes.MergeTagsHandler, middleware.RequirePermission(middleware.PermTagDelete))
	apiRoutes.DELETE("/tags/:id", routes.DeleteTagHandler, middleware.RequirePermission(middleware.PermTagDelete))
	apiRoutes.GET("/tags/:id/similar", routes.SimilarTagsHandler)

	// Graph routes
	apiRoutes.GET("/graph", routes.GraphHandler)
	apiRoutes.GET("/graph/highlight", routes.HighlightHandler)
	apiRoutes.GET("/graph/search", routes.SearchHandler)
	apiRoutes.GET("/graph/navigate", routes.NavigateHandler)

	apiRoutes.GET("/export", routes.ExportHandler)

	// AI usage routes
	apiRoutes.GET("/ai/usage", routes.GetUsageHandler)
	apiRoutes.DELETE("/ai/usage", routes.ResetUsageHandler, middleware.RequirePermission(middleware.PermUsageReset))
}

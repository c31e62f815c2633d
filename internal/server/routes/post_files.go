package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tagexplorer/backend/internal/util"
	"github.com/tagexplorer/backend/pkg/analyze"
	"github.com/tagexplorer/backend/pkg/common"
	"github.com/tagexplorer/backend/pkg/loader"
	"github.com/tagexplorer/backend/pkg/logger"
)

// CreateUploadURLHandler hands out a presigned PUT URL for a new object.
func CreateUploadURLHandler(c echo.Context) error {
	type uploadURLBody struct {
		FileName    string `json:"file_name" validate:"required"`
		ContentType string `json:"content_type"`
	}

	type uploadURLResponse struct {
		UploadURL  string `json:"upload_url"`
		StorageKey string `json:"storage_key"`
	}

	data := new(uploadURLBody)
	if err := c.Bind(data); err != nil {
		return invalidParams(c)
	}
	if err := c.Validate(data); err != nil {
		return invalidParams(c)
	}

	key, err := util.NewStorageKey(data.FileName)
	if err != nil {
		logger.Error("Failed to create storage key", "err", err)
		return internalError(c)
	}

	app := appOf(c)
	url, err := app.Blobs.PresignUpload(c.Request().Context(), key, data.ContentType)
	if err != nil {
		logger.Error("Failed to presign upload", "err", err)
		return internalError(c)
	}

	return c.JSON(http.StatusOK, uploadURLResponse{
		UploadURL:  url,
		StorageKey: key,
	})
}

// UploadFileHandler stores a multipart upload through the server.
func UploadFileHandler(c echo.Context) error {
	type uploadResponse struct {
		StorageKey string `json:"storage_key"`
		Name       string `json:"name"`
		Type       string `json:"type"`
		Size       int64  `json:"size"`
	}

	header, err := c.FormFile("file")
	if err != nil {
		return invalidParams(c)
	}
	src, err := header.Open()
	if err != nil {
		return invalidParams(c)
	}
	defer src.Close()

	key, err := util.NewStorageKey(header.Filename)
	if err != nil {
		logger.Error("Failed to create storage key", "err", err)
		return internalError(c)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if guessed := loader.MimeFromPath(header.Filename); guessed != "" {
			contentType = guessed
		}
	}

	app := appOf(c)
	if err := app.Blobs.Put(c.Request().Context(), key, contentType, src); err != nil {
		logger.Error("Failed to upload file", "err", err)
		return internalError(c)
	}

	return c.JSON(http.StatusOK, uploadResponse{
		StorageKey: key,
		Name:       header.Filename,
		Type:       contentType,
		Size:       header.Size,
	})
}

// AnalyzeFileHandler asks the AI for tags and a file name. It answers 200
// even when the AI is unavailable; the fallback flag tells the client.
func AnalyzeFileHandler(c echo.Context) error {
	type analyzeBody struct {
		StorageKey string `json:"storage_key" validate:"required"`
		FileType   string `json:"file_type"`
		FileName   string `json:"file_name" validate:"required"`
	}

	type analyzeResponse struct {
		ExistingTags  []string `json:"existingTags"`
		NewTags       []string `json:"newTags"`
		SuggestedName *string  `json:"suggestedName"`
		Fallback      bool     `json:"fallback"`
	}

	data := new(analyzeBody)
	if err := c.Bind(data); err != nil {
		return invalidParams(c)
	}
	if err := c.Validate(data); err != nil {
		return invalidParams(c)
	}

	ctx := c.Request().Context()
	app := appOf(c)

	known, err := app.Store.TagNames(ctx)
	if err != nil {
		logger.Warn("Failed to load tag names, analysing without them", "err", err)
		known = nil
	}

	file := loader.NewGraphFile(loader.NewGraphFileParams{
		ID:       data.StorageKey,
		FilePath: data.StorageKey,
		MimeType: strings.TrimSpace(data.FileType),
		Loader:   app.Files,
	})
	if f, ok := app.Files.(loader.Forgetter); ok {
		defer f.Forget(file)
	}

	res := app.Analyzer.Analyze(ctx, analyze.Input{
		File:         file,
		FileName:     data.FileName,
		ExistingTags: known,
	})

	return c.JSON(http.StatusOK, analyzeResponse{
		ExistingTags:  res.ExistingTags,
		NewTags:       res.NewTags,
		SuggestedName: res.SuggestedName,
		Fallback:      res.Fallback,
	})
}

// SaveFileHandler records an uploaded file and links the confirmed tags.
func SaveFileHandler(c echo.Context) error {
	type saveFileBody struct {
		StorageKey string   `json:"storage_key" validate:"required"`
		Name       string   `json:"name" validate:"required"`
		Type       string   `json:"type" validate:"required"`
		Size       *int64   `json:"size" validate:"omitempty,min=0"`
		Tags       []string `json:"tags"`
	}

	data := new(saveFileBody)
	if err := c.Bind(data); err != nil {
		return invalidParams(c)
	}
	if err := c.Validate(data); err != nil {
		return invalidParams(c)
	}

	ctx := c.Request().Context()
	app := appOf(c)

	saved, created, err := app.Store.SaveFileWithTags(ctx, common.File{
		Name:       data.Name,
		Type:       data.Type,
		Size:       data.Size,
		StorageKey: data.StorageKey,
	}, data.Tags)
	if err != nil {
		return storeError(c, err, "save file")
	}

	publishEmbed(ctx, app, created)

	return c.JSON(http.StatusCreated, saved)
}

// LinkTagHandler attaches an existing tag to a file.
func LinkTagHandler(c echo.Context) error {
	type linkTagBody struct {
		FileID string `param:"id" validate:"required"`
		TagID  string `json:"tag_id" validate:"required"`
	}

	data := new(linkTagBody)
	if err := c.Bind(data); err != nil {
		return invalidParams(c)
	}
	if err := c.Validate(data); err != nil {
		return invalidParams(c)
	}

	app := appOf(c)
	if err := app.Store.LinkTag(c.Request().Context(), data.FileID, data.TagID); err != nil {
		return storeError(c, err, "link tag")
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Tag linked"})
}

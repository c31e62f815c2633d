package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tagexplorer/backend/pkg/common"
)

// CreateTagHandler creates a tag or returns the one with the same
// normalized name. 201 means the tag is new.
func CreateTagHandler(c echo.Context) error {
	type createTagBody struct {
		Name  string  `json:"name" validate:"required"`
		Color *string `json:"color" validate:"omitempty,hexcolor"`
	}

	data := new(createTagBody)
	if err := c.Bind(data); err != nil {
		return invalidParams(c)
	}
	if err := c.Validate(data); err != nil {
		return invalidParams(c)
	}

	ctx := c.Request().Context()
	app := appOf(c)

	tag, created, err := app.Store.CreateTag(ctx, data.Name, data.Color)
	if err != nil {
		return storeError(c, err, "create tag")
	}
	if !created {
		return c.JSON(http.StatusOK, tag)
	}

	publishEmbed(ctx, app, []common.Tag{tag})
	return c.JSON(http.StatusCreated, tag)
}

// MergeTagsHandler moves every link of :id to target_id and deletes :id.
func MergeTagsHandler(c echo.Context) error {
	type mergeTagsBody struct {
		SourceID string `param:"id" validate:"required"`
		TargetID string `json:"target_id" validate:"required"`
	}

	data := new(mergeTagsBody)
	if err := c.Bind(data); err != nil {
		return invalidParams(c)
	}
	if err := c.Validate(data); err != nil {
		return invalidParams(c)
	}

	if err := appOf(c).Store.MergeTags(c.Request().Context(), data.SourceID, data.TargetID); err != nil {
		return storeError(c, err, "merge tags")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Tags merged"})
}

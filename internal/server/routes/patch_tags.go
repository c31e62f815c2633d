package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tagexplorer/backend/pkg/common"
)

// UpdateTagHandler renames and/or recolors a tag. An empty color removes it.
// A rename queues the tag for a fresh embedding.
func UpdateTagHandler(c echo.Context) error {
	type updateTagBody struct {
		ID    string  `param:"id" validate:"required"`
		Name  *string `json:"name"`
		Color *string `json:"color" validate:"omitempty,hexcolor"`
	}

	data := new(updateTagBody)
	if err := c.Bind(data); err != nil {
		return invalidParams(c)
	}
	if err := c.Validate(data); err != nil {
		return invalidParams(c)
	}
	if data.Name == nil && data.Color == nil {
		return invalidParams(c)
	}

	ctx := c.Request().Context()
	app := appOf(c)

	tag, err := app.Store.UpdateTag(ctx, data.ID, data.Name, data.Color)
	if err != nil {
		return storeError(c, err, "update tag")
	}
	if data.Name != nil {
		publishEmbed(ctx, app, []common.Tag{tag})
	}
	return c.JSON(http.StatusOK, tag)
}

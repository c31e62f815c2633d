package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RenameFileHandler updates a file's display name.
func RenameFileHandler(c echo.Context) error {
	type renameFileBody struct {
		ID   string `param:"id" validate:"required"`
		Name string `json:"name" validate:"required"`
	}

	data := new(renameFileBody)
	if err := c.Bind(data); err != nil {
		return invalidParams(c)
	}
	if err := c.Validate(data); err != nil {
		return invalidParams(c)
	}

	file, err := appOf(c).Store.RenameFile(c.Request().Context(), data.ID, data.Name)
	if err != nil {
		return storeError(c, err, "rename file")
	}
	return c.JSON(http.StatusOK, file)
}

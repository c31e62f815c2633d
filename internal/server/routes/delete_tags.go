package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// DeleteTagHandler removes a tag together with its file links.
func DeleteTagHandler(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return invalidParams(c)
	}
	if err := appOf(c).Store.DeleteTag(c.Request().Context(), id); err != nil {
		return storeError(c, err, "delete tag")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Tag deleted"})
}

package routes

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/internal/server/middleware"
)

func ExportGraphHandler(c echo.Context) error {
	type exportParams struct {
		CaseID string `param:"id" validate:"required"`
	}

	params := new(exportParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	sess := caseSession(c, params.CaseID)
	data, filename, err := sess.ExportJSON()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Export failed"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/json", data)
}

package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/pkg/graph"
)

// GetSchemaHandler serves the JSON schema of the graph export format.
// Public so integrators can fetch it without credentials.
func GetSchemaHandler(c echo.Context) error {
	data, err := graph.ExportSchema()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.Blob(http.StatusOK, "application/json", data)
}

package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/internal/server/middleware"
)

func DeleteEdgeHandler(c echo.Context) error {
	type deleteEdgeParams struct {
		CaseID string `param:"id" validate:"required"`
		EdgeID string `param:"edge_id" validate:"required"`
	}

	params := new(deleteEdgeParams)
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
	if err := sess.DeleteEdge(c.Request().Context(), params.EdgeID); err != nil {
		return c.JSON(editErrorStatus(err), map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Edge deleted"})
}

package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/internal/server/middleware"
)

func DeleteNodeHandler(c echo.Context) error {
	type deleteNodeParams struct {
		CaseID string `param:"id" validate:"required"`
		NodeID string `param:"node_id" validate:"required"`
	}

	params := new(deleteNodeParams)
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
	if err := sess.DeleteNode(c.Request().Context(), params.NodeID); err != nil {
		return c.JSON(editErrorStatus(err), map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Node deleted"})
}

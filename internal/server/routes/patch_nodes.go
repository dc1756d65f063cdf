package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/internal/server/middleware"
	"github.com/repolens/backend/pkg/common"
	"github.com/repolens/backend/pkg/workbench"
)

func EditNodeHandler(c echo.Context) error {
	type editNodeData struct {
		CaseID string  `param:"id" validate:"required"`
		NodeID string  `param:"node_id" validate:"required"`
		Label  *string `json:"label"`
		Kind   *string `json:"kind"`
		Note   *string `json:"note"`
	}

	type editNodeResponse struct {
		Message string       `json:"message"`
		Node    *common.Node `json:"node,omitempty"`
	}

	data := new(editNodeData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, editNodeResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, editNodeResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	sess := caseSession(c, data.CaseID)
	node, err := sess.UpdateNode(c.Request().Context(), data.NodeID, workbench.NodeUpdate{
		Label: data.Label,
		Type:  data.Kind,
		Note:  data.Note,
	})
	if err != nil {
		return c.JSON(editErrorStatus(err), editNodeResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, editNodeResponse{
		Message: "Node updated",
		Node:    node,
	})
}

package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/internal/server/middleware"
	"github.com/repolens/backend/pkg/common"
)

func CreateNodeHandler(c echo.Context) error {
	type createNodeData struct {
		CaseID string `param:"id" validate:"required"`
		Label  string `json:"label" validate:"required"`
		Kind   string `json:"kind"`
		Note   string `json:"note"`
	}

	type createNodeResponse struct {
		Message string       `json:"message"`
		Node    *common.Node `json:"node,omitempty"`
	}

	data := new(createNodeData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createNodeResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createNodeResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	sess := caseSession(c, data.CaseID)
	node, err := sess.AddNode(c.Request().Context(), data.Label, data.Kind, data.Note)
	if err != nil {
		return c.JSON(editErrorStatus(err), createNodeResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, createNodeResponse{
		Message: "Node created",
		Node:    node,
	})
}

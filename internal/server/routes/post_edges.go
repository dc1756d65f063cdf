package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/internal/server/middleware"
	"github.com/repolens/backend/pkg/common"
)

func CreateEdgeHandler(c echo.Context) error {
	type createEdgeData struct {
		CaseID   string `param:"id" validate:"required"`
		Source   string `json:"source" validate:"required"`
		Target   string `json:"target" validate:"required"`
		Relation string `json:"relation"`
	}

	type createEdgeResponse struct {
		Message string       `json:"message"`
		Edge    *common.Edge `json:"edge,omitempty"`
	}

	data := new(createEdgeData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createEdgeResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createEdgeResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	sess := caseSession(c, data.CaseID)
	edge, err := sess.AddEdge(c.Request().Context(), data.Source, data.Target, data.Relation)
	if err != nil {
		return c.JSON(editErrorStatus(err), createEdgeResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, createEdgeResponse{
		Message: "Edge created",
		Edge:    edge,
	})
}

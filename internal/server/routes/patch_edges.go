package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/internal/server/middleware"
	"github.com/repolens/backend/pkg/common"
	"github.com/repolens/backend/pkg/workbench"
)

func EditEdgeHandler(c echo.Context) error {
	type editEdgeData struct {
		CaseID   string  `param:"id" validate:"required"`
		EdgeID   string  `param:"edge_id" validate:"required"`
		Relation *string `json:"relation"`
		Weight   *int    `json:"weight"`
	}

	type editEdgeResponse struct {
		Message string       `json:"message"`
		Edge    *common.Edge `json:"edge,omitempty"`
	}

	data := new(editEdgeData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, editEdgeResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, editEdgeResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	sess := caseSession(c, data.CaseID)
	edge, err := sess.UpdateEdge(c.Request().Context(), data.EdgeID, workbench.EdgeUpdate{
		Relation: data.Relation,
		Weight:   data.Weight,
	})
	if err != nil {
		return c.JSON(editErrorStatus(err), editEdgeResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, editEdgeResponse{
		Message: "Edge updated",
		Edge:    edge,
	})
}

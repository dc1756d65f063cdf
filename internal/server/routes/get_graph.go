package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/internal/server/middleware"
	"github.com/repolens/backend/pkg/common"
	"github.com/repolens/backend/pkg/workbench"
)

func GetGraphHandler(c echo.Context) error {
	type getGraphParams struct {
		CaseID string `param:"id" validate:"required"`
	}

	type getGraphResponse struct {
		Graph       *common.Graph       `json:"graph"`
		Analysis    *common.Analysis    `json:"analysis,omitempty"`
		View        workbench.Viewport  `json:"view"`
		Selection   workbench.Selection `json:"selection"`
		Interaction string              `json:"interaction"`
	}

	params := new(getGraphParams)
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

	return c.JSON(http.StatusOK, getGraphResponse{
		Graph:       sess.Graph(),
		Analysis:    sess.Analysis(),
		View:        sess.View(),
		Selection:   sess.Selected(),
		Interaction: sess.InteractionState(),
	})
}

package routes

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/internal/server/middleware"
)

// LoadAssetHandler replaces the editable graph with a backend-supplied
// asset bundle (graph plus optional analysis annotation).
func LoadAssetHandler(c echo.Context) error {
	type loadAssetResponse struct {
		Message       string `json:"message"`
		NodesAccepted int    `json:"nodes_accepted,omitempty"`
		EdgesAccepted int    `json:"edges_accepted,omitempty"`
	}

	caseID := c.Param("id")
	if caseID == "" {
		return c.JSON(http.StatusBadRequest, loadAssetResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, loadAssetResponse{Message: "Invalid request body"})
	}

	sess := caseSession(c, caseID)
	result, err := sess.LoadAsset(c.Request().Context(), raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, loadAssetResponse{Message: "Backend asset unavailable"})
	}

	return c.JSON(http.StatusOK, loadAssetResponse{
		Message:       "Asset loaded",
		NodesAccepted: result.NodesAccepted,
		EdgesAccepted: result.EdgesAccepted,
	})
}

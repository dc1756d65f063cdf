package routes

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/internal/server/middleware"
)

func ImportGraphHandler(c echo.Context) error {
	type importResponse struct {
		Message       string `json:"message"`
		NodesAccepted int    `json:"nodes_accepted,omitempty"`
		NodesDropped  int    `json:"nodes_dropped,omitempty"`
		EdgesAccepted int    `json:"edges_accepted,omitempty"`
		EdgesDropped  int    `json:"edges_dropped,omitempty"`
	}

	caseID := c.Param("id")
	if caseID == "" {
		return c.JSON(http.StatusBadRequest, importResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, importResponse{Message: "Invalid request body"})
	}

	sess := caseSession(c, caseID)
	result, err := sess.ImportJSON(c.Request().Context(), raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, importResponse{Message: "Import failed: invalid shape"})
	}

	return c.JSON(http.StatusOK, importResponse{
		Message:       "Import succeeded",
		NodesAccepted: result.NodesAccepted,
		NodesDropped:  result.NodesDropped,
		EdgesAccepted: result.EdgesAccepted,
		EdgesDropped:  result.EdgesDropped,
	})
}

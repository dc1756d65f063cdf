package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/internal/queue"
	"github.com/repolens/backend/internal/server/middleware"
	"github.com/repolens/backend/pkg/workbench"
)

func ExtractGraphHandler(c echo.Context) error {
	type extractData struct {
		CaseID       string   `param:"id" validate:"required"`
		Text         string   `json:"text"`
		DocumentURLs []string `json:"document_urls"`
	}

	type extractResponse struct {
		Message string `json:"message"`
		Nodes   int    `json:"nodes,omitempty"`
		Edges   int    `json:"edges,omitempty"`
	}

	data := new(extractData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, extractResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, extractResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	app := c.(*middleware.AppContext).App

	// Echo only binds query params on GET/DELETE, read async directly.
	async := c.QueryParam("async") == "true"

	if async {
		if app.Queue == nil {
			return c.JSON(http.StatusServiceUnavailable, extractResponse{Message: "Queue is not available"})
		}
		err := queue.PublishExtract(app.Queue, queue.ExtractJob{
			CaseID:       data.CaseID,
			Text:         data.Text,
			DocumentURLs: data.DocumentURLs,
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, extractResponse{Message: "Failed to queue extraction"})
		}
		// Drop the in-memory session so the next read picks up the
		// worker's snapshot.
		app.Sessions.Drop(data.CaseID)
		return c.JSON(http.StatusAccepted, extractResponse{Message: "Extraction queued"})
	}

	sess := caseSession(c, data.CaseID)
	if err := sess.ExtractFromText(c.Request().Context(), data.Text); err != nil {
		if errors.Is(err, workbench.ErrNoContent) {
			return c.JSON(http.StatusUnprocessableEntity, extractResponse{Message: "No documentation content available"})
		}
		return c.JSON(http.StatusInternalServerError, extractResponse{Message: "Extraction failed"})
	}

	g := sess.Graph()
	return c.JSON(http.StatusOK, extractResponse{
		Message: "Extraction finished",
		Nodes:   len(g.Nodes),
		Edges:   len(g.Edges),
	})
}

package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/internal/server/middleware"
	"github.com/repolens/backend/pkg/store"
	"github.com/repolens/backend/pkg/viewer"
)

// GetViewHandler serves the read-only exploration view over the last
// published snapshot of a case.
func GetViewHandler(c echo.Context) error {
	type viewParams struct {
		CaseID      string  `param:"id" validate:"required"`
		Search      string  `query:"search"`
		Kind        string  `query:"kind"`
		Relation    string  `query:"relation"`
		Ego         string  `query:"ego"`
		ForceLabels bool    `query:"labels"`
		Zoom        float64 `query:"zoom"`
	}

	params := new(viewParams)
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

	ctx := c.Request().Context()
	graphStore := c.(*middleware.AppContext).App.Store

	g, _, err := graphStore.LoadPublished(ctx, params.CaseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "No published graph for case"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	zoom := params.Zoom
	if zoom == 0 {
		zoom = 1
	}

	view := viewer.Build(g, viewer.Options{
		Search:      params.Search,
		Kind:        params.Kind,
		Relation:    params.Relation,
		EgoNodeID:   params.Ego,
		ForceLabels: params.ForceLabels,
		Zoom:        zoom,
	})

	return c.JSON(http.StatusOK, view)
}
